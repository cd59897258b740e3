package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(at("2025-03-09 10:00"))

	tests := []struct {
		name             string
		date, start, end string
		field            string
	}{
		{name: "missing date", date: "", start: "14:00", end: "15:00", field: "date"},
		{name: "missing start", date: "2025-03-10", start: "", end: "15:00", field: "start_time"},
		{name: "missing end", date: "2025-03-10", start: "14:00", end: "", field: "end_time"},
		{name: "end before start", date: "2025-03-10", start: "15:00", end: "14:00", field: "end_time"},
		{name: "zero length", date: "2025-03-10", start: "14:00", end: "14:00", field: "end_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.availability.Create(ctx, tutor, tt.date, tt.start, tt.end, "")
			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	_, err := f.availability.Create(ctx, student, "2025-03-10", "14:00", "15:00", "")
	assert.True(t, model.IsValidationError(err), "students cannot publish availability")

	slots, err := f.store.List(ctx, model.SlotFilter{})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAvailabilityEdit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(at("2025-03-09 10:00"))

	slot, err := f.availability.Create(ctx, tutor, "2025-03-10", "14:00", "15:00", "bring notebook")
	require.NoError(t, err)
	assert.Equal(t, "bring notebook", slot.TutorNotes)

	edited, err := f.availability.Edit(ctx, tutor, slot.ID, "2025-03-11", "09:30", "11:00", "  ")
	require.NoError(t, err)
	assert.Equal(t, slot.ID, edited.ID)
	assert.Equal(t, model.SlotStatusOpen, edited.Status)
	assert.Equal(t, at("2025-03-11 09:30"), edited.ScheduledStart)
	assert.Equal(t, at("2025-03-11 11:00"), edited.ScheduledEnd)
	assert.Empty(t, edited.TutorNotes)

	_, err = f.availability.Edit(ctx, rival, slot.ID, "2025-03-11", "09:30", "11:00", "")
	assert.ErrorIs(t, err, model.ErrNotParty)

	_, err = f.booking.Claim(ctx, student, slot.ID, 7)
	require.NoError(t, err)

	_, err = f.availability.Edit(ctx, tutor, slot.ID, "2025-03-11", "10:00", "11:00", "")
	assert.True(t, model.IsInvalidTransition(err), "claimed slot is not editable")
}

func TestAvailabilityDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(at("2025-03-09 10:00"))
	f.seed(&model.Slot{ID: 1, TutorID: tutor.ID, ScheduledStart: at("2025-03-10 14:00"), ScheduledEnd: at("2025-03-10 15:00"), Status: model.SlotStatusOpen})
	f.seed(&model.Slot{ID: 2, TutorID: tutor.ID, StudentID: id(student.ID),
		ScheduledStart: at("2025-03-10 16:00"), ScheduledEnd: at("2025-03-10 17:00"), Status: model.SlotStatusConfirmed})

	open, err := f.availability.ListOpen(ctx, tutor.ID, f.now)
	require.NoError(t, err)
	require.Len(t, open, 1)

	assert.ErrorIs(t, f.availability.Delete(ctx, rival, 1), model.ErrNotParty)
	require.NoError(t, f.availability.Delete(ctx, tutor, 1))

	_, err = f.store.Get(ctx, 1)
	assert.ErrorIs(t, err, model.ErrSlotNotFound)

	open, err = f.availability.ListOpen(ctx, tutor.ID, f.now)
	require.NoError(t, err)
	assert.Empty(t, open)

	err = f.availability.Delete(ctx, tutor, 2)
	assert.True(t, model.IsInvalidTransition(err), "booked slot cannot be deleted")

	all, err := f.availability.ListTutorSlots(ctx, tutor.ID, f.now, at("2025-03-11 00:00"))
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(2), all[0].ID)
}
