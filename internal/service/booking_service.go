package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/queue"
	"go.uber.org/zap"
)

// SubjectLookup проверяет предмет при записи на занятие
type SubjectLookup interface {
	GetByID(ctx context.Context, id int64) (*model.Subject, error)
}

// BookingService - переходы статуса слота по таблице model.CanTransition
type BookingService struct {
	store     SlotStore
	reader    *SlotReader
	subjects  SubjectLookup
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewBookingService(
	store SlotStore,
	reader *SlotReader,
	subjects SubjectLookup,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		store:     store,
		reader:    reader,
		subjects:  subjects,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock подменяет часы
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// Claim - студент записывается на свободный слот (open -> pending)
func (s *BookingService) Claim(ctx context.Context, student model.Identity, slotID, subjectID int64) (*model.Slot, error) {
	if subjectID <= 0 {
		return nil, &model.ValidationError{Field: "subject_id", Message: "subject is required"}
	}

	if s.subjects != nil {
		subject, err := s.subjects.GetByID(ctx, subjectID)
		if err != nil {
			return nil, fmt.Errorf("get subject: %w", err)
		}
		if subject == nil || !subject.IsActive {
			return nil, &model.ValidationError{Field: "subject_id", Message: "subject is not available"}
		}
	}

	studentID := student.ID
	return s.Transition(ctx, &student, slotID, model.SlotStatusOpen, model.SlotStatusPending, model.TransitionExtra{
		StudentID: &studentID,
		SubjectID: &subjectID,
	})
}

// Accept - репетитор подтверждает заявку (pending -> confirmed)
func (s *BookingService) Accept(ctx context.Context, tutor model.Identity, slotID int64) (*model.Slot, error) {
	return s.Transition(ctx, &tutor, slotID, model.SlotStatusPending, model.SlotStatusConfirmed, model.TransitionExtra{})
}

// Decline - репетитор отклоняет заявку, слот снова свободен (pending -> open)
func (s *BookingService) Decline(ctx context.Context, tutor model.Identity, slotID int64) (*model.Slot, error) {
	return s.Transition(ctx, &tutor, slotID, model.SlotStatusPending, model.SlotStatusOpen, model.TransitionExtra{})
}

// Cancel - любая из сторон отменяет заявку или занятие.
// observed - статус, который видел пользователь (pending или confirmed).
func (s *BookingService) Cancel(ctx context.Context, actor model.Identity, slotID int64, observed model.SlotStatus, reason string) (*model.Slot, error) {
	reason = strings.TrimSpace(reason)
	if actor.Role == model.RoleStudent && reason == "" {
		return nil, &model.ValidationError{Field: "cancellation_reason", Message: "cancellation reason is required"}
	}

	actorID := actor.ID
	return s.Transition(ctx, &actor, slotID, observed, model.SlotStatusCancelled, model.TransitionExtra{
		CancellationReason: reason,
		CancelledBy:        &actorID,
	})
}

// Complete отмечает занятие состоявшимся (confirmed -> completed).
// Вызывается трекером сессий, а не пользователем.
func (s *BookingService) Complete(ctx context.Context, slotID int64) (*model.Slot, error) {
	return s.Transition(ctx, nil, slotID, model.SlotStatusConfirmed, model.SlotStatusCompleted, model.TransitionExtra{})
}

// Transition выполняет переход expected -> to. actor == nil - системный переход.
// Переход применяется только если слот всё ещё в статусе expected.
func (s *BookingService) Transition(ctx context.Context, actor *model.Identity, slotID int64, expected, to model.SlotStatus, extra model.TransitionExtra) (*model.Slot, error) {
	if !model.CanTransition(expected, to) {
		return nil, &model.InvalidTransitionError{SlotID: slotID, From: expected, To: to}
	}

	current, err := s.store.Get(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}

	if current.Status != expected {
		s.logger.Warn("Stale slot status",
			zap.Int64("slot_id", slotID),
			zap.String("expected", string(expected)),
			zap.String("actual", string(current.Status)),
		)
		return nil, &model.InvalidTransitionError{SlotID: slotID, From: expected, To: to, Stale: true}
	}

	if err := s.authorize(actor, current, to); err != nil {
		return nil, err
	}

	slot, err := s.store.Transition(ctx, slotID, expected, to, extra)
	if err != nil {
		err = storeError(err, slotID, expected, to)
		s.logger.Error("Slot transition failed",
			zap.Int64("slot_id", slotID),
			zap.String("from", string(expected)),
			zap.String("to", string(to)),
			zap.Error(err),
		)
		return nil, err
	}

	// Старое состояние тоже сбрасываем: при отклонении студент уже снят со слота
	s.reader.Invalidate(ctx, current, slot)

	var actorID int64
	if actor != nil {
		actorID = actor.ID
	}

	s.logger.Info("Slot status changed",
		zap.Int64("slot_id", slotID),
		zap.Int64("actor_id", actorID),
		zap.String("from", string(expected)),
		zap.String("to", string(to)),
	)

	s.publish(ctx, current, slot, actorID)

	return slot, nil
}

// authorize проверяет что переход выполняет подходящая сторона
func (s *BookingService) authorize(actor *model.Identity, slot *model.Slot, to model.SlotStatus) error {
	if actor == nil {
		if to == model.SlotStatusCompleted {
			return nil
		}
		return model.ErrNotParty
	}

	switch to {
	case model.SlotStatusPending:
		if actor.Role != model.RoleStudent || actor.ID == slot.TutorID {
			return model.ErrNotParty
		}
		if !slot.ScheduledStart.After(s.now()) {
			return &model.ValidationError{Field: "slot_id", Message: "slot is in the past"}
		}
	case model.SlotStatusConfirmed, model.SlotStatusOpen:
		if actor.Role != model.RoleTutor || actor.ID != slot.TutorID {
			return model.ErrNotParty
		}
	case model.SlotStatusCancelled:
		if _, err := model.ResolveViewpoint(*actor, slot); err != nil {
			return err
		}
	case model.SlotStatusCompleted:
		// Завершение фиксирует только трекер сессий
		return model.ErrNotParty
	}

	return nil
}

func (s *BookingService) publish(ctx context.Context, before, after *model.Slot, actorID int64) {
	studentID := after.StudentID
	if studentID == nil {
		studentID = before.StudentID
	}

	event := queue.SlotEvent{
		SlotID:             after.ID,
		TutorID:            after.TutorID,
		StudentID:          studentID,
		From:               string(before.Status),
		To:                 string(after.Status),
		ActorID:            actorID,
		CancellationReason: after.CancellationReason,
		ScheduledStart:     after.ScheduledStart,
		ScheduledEnd:       after.ScheduledEnd,
		At:                 after.UpdatedAt,
	}

	if err := s.publisher.PublishSlotEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish slot event",
			zap.Int64("slot_id", after.ID),
			zap.Error(err))
	}
}

// GetSlot получает слот по ID (через кэш)
func (s *BookingService) GetSlot(ctx context.Context, slotID int64) (*model.Slot, error) {
	return s.reader.Get(ctx, slotID)
}

// ListOpenSlots возвращает будущие свободные слоты всех репетиторов
func (s *BookingService) ListOpenSlots(ctx context.Context, from, to time.Time) ([]*model.Slot, error) {
	return s.reader.List(ctx, model.SlotFilter{
		Statuses: []model.SlotStatus{model.SlotStatusOpen},
		From:     from,
		To:       to,
	})
}

// ListStudentSlots возвращает слоты студента в диапазоне
func (s *BookingService) ListStudentSlots(ctx context.Context, studentID int64, from, to time.Time) ([]*model.Slot, error) {
	return s.reader.List(ctx, model.SlotFilter{StudentID: studentID, From: from, To: to})
}
