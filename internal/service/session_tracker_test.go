package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionTracker(t *testing.T) {
	ctx := context.Background()
	f := newFixture(at("2025-03-10 14:00"))
	f.seed(&model.Slot{ID: 1, TutorID: tutor.ID, StudentID: id(student.ID),
		ScheduledStart: at("2025-03-10 14:00"), ScheduledEnd: at("2025-03-10 15:00"), Status: model.SlotStatusConfirmed})

	tracker := NewSessionTracker(f.booking, zap.NewNop())
	seeded, err := f.store.Get(ctx, 1)
	require.NoError(t, err)

	_, err = tracker.Ended(ctx, 1, at("2025-03-10 14:05"))
	assert.Error(t, err, "session that never started cannot end")

	start := at("2025-03-10 14:01")
	tracker.Started(seeded, start)
	tracker.Started(seeded, start.Add(time.Minute))
	assert.True(t, tracker.Active(1))

	slot, err := tracker.Ended(ctx, 1, start.Add(5*time.Second))
	require.NoError(t, err)
	assert.Nil(t, slot, "short call does not complete the session")
	assert.False(t, tracker.Active(1))

	stored, err := f.store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusConfirmed, stored.Status)

	tracker.Started(seeded, start)
	slot, err = tracker.Ended(ctx, 1, start.Add(MinSessionDuration))
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, model.SlotStatusCompleted, slot.Status)

	tracker.Started(seeded, start)
	_, err = tracker.Ended(ctx, 1, start.Add(time.Hour))
	assert.True(t, model.IsInvalidTransition(err), "completed session cannot complete twice")
}

func TestSessionTrackerPrunesAbandonedCalls(t *testing.T) {
	f := newFixture(at("2025-03-10 14:00"))
	tracker := NewSessionTracker(f.booking, zap.NewNop())

	early := &model.Slot{ID: 1, ScheduledStart: at("2025-03-10 14:00"), ScheduledEnd: at("2025-03-10 15:00")}
	late := &model.Slot{ID: 2, ScheduledStart: at("2025-03-10 16:00"), ScheduledEnd: at("2025-03-10 17:00")}
	tracker.Started(early, at("2025-03-10 14:01"))
	tracker.Started(late, at("2025-03-10 16:01"))

	assert.Zero(t, tracker.Prune(at("2025-03-10 15:15")), "call is still joinable at the closing bound")
	assert.Equal(t, 1, tracker.Prune(at("2025-03-10 15:16")))
	assert.False(t, tracker.Active(1))
	assert.True(t, tracker.Active(2))
}
