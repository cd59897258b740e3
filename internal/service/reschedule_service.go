package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/timewindow"
	"go.uber.org/zap"
)

// RescheduleService переносит подтверждённое занятие на другое время.
// ID и статус слота при переносе не меняются.
type RescheduleService struct {
	store  SlotStore
	reader *SlotReader
	loc    *time.Location
	logger *zap.Logger
}

func NewRescheduleService(store SlotStore, reader *SlotReader, loc *time.Location, logger *zap.Logger) *RescheduleService {
	return &RescheduleService{
		store:  store,
		reader: reader,
		loc:    loc,
		logger: logger,
	}
}

// Reschedule переписывает начало и конец занятия. Повторный вызов с теми же
// параметрами даёт то же состояние.
func (s *RescheduleService) Reschedule(ctx context.Context, actor model.Identity, slotID int64, date, startTime, endTime string) (*model.Slot, error) {
	payload, err := timewindow.MakeReschedulePayload(date, startTime, endTime, s.loc)
	if err != nil {
		return nil, err
	}

	current, err := s.store.Get(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}

	if _, err := model.ResolveViewpoint(actor, current); err != nil {
		return nil, err
	}

	if current.Status != model.SlotStatusConfirmed {
		return nil, &model.InvalidTransitionError{SlotID: slotID, From: current.Status, To: current.Status}
	}

	slot, err := s.store.Update(ctx, slotID, model.SlotUpdate{
		Start:         &payload.Start,
		End:           &payload.End,
		RequireStatus: model.SlotStatusConfirmed,
	})
	if err != nil {
		return nil, storeError(err, slotID, model.SlotStatusConfirmed, model.SlotStatusConfirmed)
	}

	s.reader.Invalidate(ctx, current, slot)

	s.logger.Info("Session rescheduled",
		zap.Int64("slot_id", slotID),
		zap.Int64("actor_id", actor.ID),
		zap.Time("old_start", current.ScheduledStart),
		zap.Time("new_start", slot.ScheduledStart),
		zap.Time("new_end", slot.ScheduledEnd),
	)

	return slot, nil
}
