package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"go.uber.org/zap"
)

// MinSessionDuration - звонок короче этого не считается состоявшимся занятием
const MinSessionDuration = 10 * time.Second

// SessionTracker получает сигналы о начале и конце звонка и по итогам
// переводит занятие в completed
type SessionTracker struct {
	booking *BookingService
	logger  *zap.Logger

	mu      sync.Mutex
	started map[int64]session
}

type session struct {
	startedAt time.Time
	closes    time.Time // после этого момента в звонок уже не войти
}

func NewSessionTracker(booking *BookingService, logger *zap.Logger) *SessionTracker {
	return &SessionTracker{
		booking: booking,
		logger:  logger,
		started: make(map[int64]session),
	}
}

// Started фиксирует начало звонка. Повторный сигнал не сдвигает время начала.
func (t *SessionTracker) Started(slot *model.Slot, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.started[slot.ID]; !ok {
		t.started[slot.ID] = session{
			startedAt: at,
			closes:    slot.ScheduledEnd.Add(AccessMargin),
		}
		t.logger.Info("Session started", zap.Int64("slot_id", slot.ID), zap.Time("at", at))
	}
}

// Ended фиксирует конец звонка. Возвращает слот, если занятие завершено,
// и nil, если звонок был слишком коротким.
func (t *SessionTracker) Ended(ctx context.Context, slotID int64, at time.Time) (*model.Slot, error) {
	t.mu.Lock()
	started, ok := t.started[slotID]
	delete(t.started, slotID)
	t.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("session for slot %d was not started", slotID)
	}

	duration := at.Sub(started.startedAt)
	if duration < MinSessionDuration {
		t.logger.Info("Session too short to complete",
			zap.Int64("slot_id", slotID),
			zap.Duration("duration", duration))
		return nil, nil
	}

	slot, err := t.booking.Complete(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}

	t.logger.Info("Session completed",
		zap.Int64("slot_id", slotID),
		zap.Duration("duration", duration))

	return slot, nil
}

// Active проверяет что по слоту идёт звонок
func (t *SessionTracker) Active(slotID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.started[slotID]
	return ok
}

// Prune забывает звонки, которые так и не закончились, а окно доступа к ним
// уже закрылось. Возвращает количество удалённых.
func (t *SessionTracker) Prune(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	pruned := 0
	for id, s := range t.started {
		if now.After(s.closes) {
			delete(t.started, id)
			pruned++
		}
	}

	if pruned > 0 {
		t.logger.Info("Abandoned sessions dropped", zap.Int("count", pruned))
	}
	return pruned
}
