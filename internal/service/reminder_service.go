package service

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/queue"
	"github.com/Freeeeeet/tutoring_bot/internal/timewindow"
	"go.uber.org/zap"
)

// ReminderService находит подтверждённые занятия, которые скоро начнутся,
// и публикует по одному напоминанию на каждое
type ReminderService struct {
	store     SlotStore
	publisher EventPublisher
	sessions  *SessionTracker
	logger    *zap.Logger
	now       func() time.Time

	mu   sync.Mutex
	sent map[int64]time.Time // slot_id -> начало, для которого напоминание уже ушло
}

func NewReminderService(store SlotStore, publisher EventPublisher, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		sent:      make(map[int64]time.Time),
	}
}

// WithClock подменяет часы
func (s *ReminderService) WithClock(now func() time.Time) *ReminderService {
	s.now = now
	return s
}

// WithSessions подключает трекер: каждый проход заодно чистит брошенные звонки
func (s *ReminderService) WithSessions(sessions *SessionTracker) *ReminderService {
	s.sessions = sessions
	return s
}

// SendDue публикует напоминания и возвращает их количество
func (s *ReminderService) SendDue(ctx context.Context) (int, error) {
	now := s.now()

	if s.sessions != nil {
		s.sessions.Prune(now)
	}

	slots, err := s.store.List(ctx, model.SlotFilter{
		Statuses: []model.SlotStatus{model.SlotStatusConfirmed},
		From:     now,
		To:       now.Add(StartsSoonWindow),
	})
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sent := 0
	for _, slot := range slots {
		if slot.StudentID == nil {
			continue
		}
		// Перенесённое занятие получает новое напоминание
		if start, ok := s.sent[slot.ID]; ok && start.Equal(slot.ScheduledStart) {
			continue
		}

		reminder := queue.SessionReminder{
			SlotID:         slot.ID,
			TutorID:        slot.TutorID,
			StudentID:      *slot.StudentID,
			ScheduledStart: slot.ScheduledStart,
			StartsIn:       timewindow.FormatTimeRemaining(slot.ScheduledStart.Sub(now)),
			CallLink:       CallLink(slot.ID),
		}

		if err := s.publisher.PublishReminder(ctx, reminder); err != nil {
			s.logger.Warn("Failed to publish reminder", zap.Int64("slot_id", slot.ID), zap.Error(err))
			continue
		}

		s.sent[slot.ID] = slot.ScheduledStart
		sent++
	}

	// Забываем прошедшие занятия
	for id, start := range s.sent {
		if start.Before(now) {
			delete(s.sent, id)
		}
	}

	return sent, nil
}
