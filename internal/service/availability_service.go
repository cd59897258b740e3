package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/repository"
	"github.com/Freeeeeet/tutoring_bot/internal/timewindow"
	"go.uber.org/zap"
)

// AvailabilityService - свободные слоты репетитора: создание, изменение, удаление
type AvailabilityService struct {
	store  SlotStore
	reader *SlotReader
	loc    *time.Location
	logger *zap.Logger
}

func NewAvailabilityService(store SlotStore, reader *SlotReader, loc *time.Location, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		store:  store,
		reader: reader,
		loc:    loc,
		logger: logger,
	}
}

// Create создаёт свободный слот из локальных даты и времени
func (s *AvailabilityService) Create(ctx context.Context, tutor model.Identity, date, startTime, endTime, notes string) (*model.Slot, error) {
	if err := requireTutor(tutor); err != nil {
		return nil, err
	}

	payload, err := timewindow.MakeAvailabilityPayload(date, startTime, endTime, notes, s.loc)
	if err != nil {
		return nil, err
	}

	slot := &model.Slot{
		TutorID:        tutor.ID,
		ScheduledStart: payload.Start,
		ScheduledEnd:   payload.End,
		Status:         model.SlotStatusOpen,
		TutorNotes:     payload.Notes,
	}

	if err := s.store.Create(ctx, slot); err != nil {
		s.logger.Error("Failed to create slot",
			zap.Int64("tutor_id", tutor.ID),
			zap.Time("start", payload.Start),
			zap.Error(err))
		return nil, fmt.Errorf("create slot: %w", err)
	}

	s.reader.Invalidate(ctx, slot)

	s.logger.Info("Slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("tutor_id", tutor.ID),
		zap.Time("start", slot.ScheduledStart),
		zap.Time("end", slot.ScheduledEnd),
	)

	return slot, nil
}

// Edit переписывает время и заметки свободного слота. ID и статус не меняются.
func (s *AvailabilityService) Edit(ctx context.Context, tutor model.Identity, slotID int64, date, startTime, endTime, notes string) (*model.Slot, error) {
	if err := requireTutor(tutor); err != nil {
		return nil, err
	}

	payload, err := timewindow.MakeAvailabilityPayload(date, startTime, endTime, notes, s.loc)
	if err != nil {
		return nil, err
	}

	existing, err := s.ownedSlot(ctx, tutor, slotID)
	if err != nil {
		return nil, err
	}

	slot, err := s.store.Update(ctx, slotID, model.SlotUpdate{
		Start:         &payload.Start,
		End:           &payload.End,
		Notes:         &payload.Notes,
		RequireStatus: model.SlotStatusOpen,
	})
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, &model.InvalidTransitionError{SlotID: slotID, From: model.SlotStatusOpen, To: model.SlotStatusOpen, Stale: true}
		}
		return nil, fmt.Errorf("update slot: %w", err)
	}

	s.reader.Invalidate(ctx, existing, slot)

	s.logger.Info("Slot edited",
		zap.Int64("slot_id", slotID),
		zap.Int64("tutor_id", tutor.ID),
		zap.Time("start", slot.ScheduledStart),
		zap.Time("end", slot.ScheduledEnd),
	)

	return slot, nil
}

// Delete удаляет свободный слот навсегда
func (s *AvailabilityService) Delete(ctx context.Context, tutor model.Identity, slotID int64) error {
	if err := requireTutor(tutor); err != nil {
		return err
	}

	existing, err := s.ownedSlot(ctx, tutor, slotID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, slotID); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return &model.InvalidTransitionError{SlotID: slotID, From: model.SlotStatusOpen, To: model.SlotStatusOpen, Stale: true}
		}
		return fmt.Errorf("delete slot: %w", err)
	}

	s.reader.Invalidate(ctx, existing)

	s.logger.Info("Slot deleted",
		zap.Int64("slot_id", slotID),
		zap.Int64("tutor_id", tutor.ID),
	)

	return nil
}

// ListOpen возвращает будущие свободные слоты репетитора
func (s *AvailabilityService) ListOpen(ctx context.Context, tutorID int64, from time.Time) ([]*model.Slot, error) {
	return s.reader.List(ctx, model.SlotFilter{
		TutorID:  tutorID,
		Statuses: []model.SlotStatus{model.SlotStatusOpen},
		From:     from,
	})
}

// ListTutorSlots возвращает все слоты репетитора в диапазоне
func (s *AvailabilityService) ListTutorSlots(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Slot, error) {
	return s.reader.List(ctx, model.SlotFilter{TutorID: tutorID, From: from, To: to})
}

// ownedSlot получает слот и проверяет что он принадлежит репетитору
func (s *AvailabilityService) ownedSlot(ctx context.Context, tutor model.Identity, slotID int64) (*model.Slot, error) {
	slot, err := s.store.Get(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}

	if slot.TutorID != tutor.ID {
		return nil, model.ErrNotParty
	}

	return slot, nil
}

func requireTutor(actor model.Identity) error {
	if actor.Role != model.RoleTutor {
		return &model.ValidationError{Field: "role", Message: "only tutors can manage availability"}
	}
	return nil
}
