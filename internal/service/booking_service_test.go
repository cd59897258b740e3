package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndClaim(t *testing.T) {
	ctx := context.Background()
	f := newFixture(at("2025-03-09 10:00"))

	slot, err := f.availability.Create(ctx, tutor, "2025-03-10", "14:00", "15:00", "")
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusOpen, slot.Status)
	assert.Equal(t, at("2025-03-10 14:00"), slot.ScheduledStart)
	assert.Equal(t, at("2025-03-10 15:00"), slot.ScheduledEnd)
	assert.Nil(t, slot.StudentID)

	open, err := f.availability.ListOpen(ctx, tutor.ID, f.now)
	require.NoError(t, err)
	require.Len(t, open, 1)

	claimed, err := f.booking.Claim(ctx, student, slot.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusPending, claimed.Status)
	require.NotNil(t, claimed.StudentID)
	assert.Equal(t, student.ID, *claimed.StudentID)
	require.NotNil(t, claimed.SubjectID)
	assert.Equal(t, int64(7), *claimed.SubjectID)

	// Кэш свободных слотов сброшен
	open, err = f.availability.ListOpen(ctx, tutor.ID, f.now)
	require.NoError(t, err)
	assert.Empty(t, open)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "open", f.publisher.events[0].From)
	assert.Equal(t, "pending", f.publisher.events[0].To)
	assert.Equal(t, student.ID, f.publisher.events[0].ActorID)
}

func TestClaimValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(at("2025-03-09 10:00"))
	f.seed(&model.Slot{ID: 1, TutorID: tutor.ID, ScheduledStart: at("2025-03-10 14:00"), ScheduledEnd: at("2025-03-10 15:00"), Status: model.SlotStatusOpen})
	f.seed(&model.Slot{ID: 2, TutorID: tutor.ID, ScheduledStart: at("2025-03-08 14:00"), ScheduledEnd: at("2025-03-08 15:00"), Status: model.SlotStatusOpen})

	_, err := f.booking.Claim(ctx, student, 1, 0)
	assert.True(t, model.IsValidationError(err))

	_, err = f.booking.Claim(ctx, tutor, 1, 7)
	assert.ErrorIs(t, err, model.ErrNotParty)

	_, err = f.booking.Claim(ctx, student, 2, 7)
	assert.True(t, model.IsValidationError(err), "past slot cannot be claimed")

	_, err = f.booking.Claim(ctx, student, 99, 7)
	assert.ErrorIs(t, err, model.ErrSlotNotFound)
}

type stubSubjects map[int64]*model.Subject

func (s stubSubjects) GetByID(_ context.Context, id int64) (*model.Subject, error) {
	return s[id], nil
}

func TestClaimChecksSubject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(at("2025-03-09 10:00"))
	f.booking.subjects = stubSubjects{
		7: {ID: 7, Name: "Math", IsActive: true},
		8: {ID: 8, Name: "Latin", IsActive: false},
	}
	f.seed(&model.Slot{ID: 1, TutorID: tutor.ID, ScheduledStart: at("2025-03-10 14:00"), ScheduledEnd: at("2025-03-10 15:00"), Status: model.SlotStatusOpen})

	_, err := f.booking.Claim(ctx, student, 1, 8)
	assert.True(t, model.IsValidationError(err))

	_, err = f.booking.Claim(ctx, student, 1, 9)
	assert.True(t, model.IsValidationError(err))

	_, err = f.booking.Claim(ctx, student, 1, 7)
	assert.NoError(t, err)
}

func TestAcceptThenJoin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(at("2025-03-09 10:00"))
	f.seed(&model.Slot{ID: 1, TutorID: tutor.ID, StudentID: id(student.ID), SubjectID: id(7),
		ScheduledStart: at("2025-03-10 14:00"), ScheduledEnd: at("2025-03-10 15:00"), Status: model.SlotStatusPending})

	_, err := f.booking.Accept(ctx, rival, 1)
	assert.ErrorIs(t, err, model.ErrNotParty)

	_, err = f.booking.Accept(ctx, student, 1)
	assert.ErrorIs(t, err, model.ErrNotParty)

	slot, err := f.booking.Accept(ctx, tutor, 1)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusConfirmed, slot.Status)

	early := CanAccess(slot, &student, at("2025-03-10 13:40"))
	assert.False(t, early.CanAccess)
	assert.Equal(t, "join in 5 minutes", early.Reason)
	assert.Equal(t, "/student/dashboard", early.DashboardLink)

	inside := CanAccess(slot, &student, at("2025-03-10 13:46"))
	assert.True(t, inside.CanAccess)
	assert.Empty(t, inside.Reason)
}

func TestDeclineRecyclesSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(at("2025-03-09 10:00"))
	f.seed(&model.Slot{ID: 1, TutorID: tutor.ID, StudentID: id(student.ID), SubjectID: id(7),
		ScheduledStart: at("2025-03-10 14:00"), ScheduledEnd: at("2025-03-10 15:00"), Status: model.SlotStatusPending})

	// Студент успел прочитать свой список до отказа
	before, err := f.booking.ListStudentSlots(ctx, student.ID, f.now, at("2025-03-11 00:00"))
	require.NoError(t, err)
	require.Len(t, before, 1)

	slot, err := f.booking.Decline(ctx, tutor, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), slot.ID)
	assert.Equal(t, model.SlotStatusOpen, slot.Status)
	assert.Nil(t, slot.StudentID)
	assert.Nil(t, slot.SubjectID)
	require.NotNil(t, slot.LastStudentID)
	assert.Equal(t, student.ID, *slot.LastStudentID)

	after, err := f.booking.ListStudentSlots(ctx, student.ID, f.now, at("2025-03-11 00:00"))
	require.NoError(t, err)
	assert.Empty(t, after)

	reclaimed, err := f.booking.Claim(ctx, other, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusPending, reclaimed.Status)
	assert.Equal(t, other.ID, *reclaimed.StudentID)
	assert.Equal(t, int64(3), *reclaimed.SubjectID)
}

func TestLateCancellation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(at("2025-03-10 13:30"))
	f.seed(&model.Slot{ID: 1, TutorID: tutor.ID, StudentID: id(student.ID), SubjectID: id(7),
		ScheduledStart: at("2025-03-10 14:00"), ScheduledEnd: at("2025-03-10 15:00"), Status: model.SlotStatusConfirmed})

	_, err := f.booking.Cancel(ctx, student, 1, model.SlotStatusConfirmed, "  ")
	assert.True(t, model.IsValidationError(err))

	_, err = f.booking.Cancel(ctx, other, 1, model.SlotStatusConfirmed, "conflict")
	assert.ErrorIs(t, err, model.ErrNotParty)

	slot, err := f.booking.Cancel(ctx, student, 1, model.SlotStatusConfirmed, "conflict")
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusCancelled, slot.Status)
	assert.Equal(t, "conflict", slot.CancellationReason)
	require.NotNil(t, slot.CancelledBy)
	assert.Equal(t, student.ID, *slot.CancelledBy)
	assert.True(t, slot.Status.Terminal())

	decision := CanAccess(slot, &student, at("2025-03-10 14:10"))
	assert.False(t, decision.CanAccess)
	assert.Equal(t, "session is cancelled", decision.Reason)
}

func TestTutorCancelsPendingWithoutReason(t *testing.T) {
	ctx := context.Background()
	f := newFixture(at("2025-03-09 10:00"))
	f.seed(&model.Slot{ID: 1, TutorID: tutor.ID, StudentID: id(student.ID),
		ScheduledStart: at("2025-03-10 14:00"), ScheduledEnd: at("2025-03-10 15:00"), Status: model.SlotStatusPending})

	slot, err := f.booking.Cancel(ctx, tutor, 1, model.SlotStatusPending, "")
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusCancelled, slot.Status)
	assert.Empty(t, slot.CancellationReason)
}

func TestOffTableTransitionRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(at("2025-03-11 10:00"))
	f.seed(&model.Slot{ID: 1, TutorID: tutor.ID, StudentID: id(student.ID),
		ScheduledStart: at("2025-03-10 14:00"), ScheduledEnd: at("2025-03-10 15:00"), Status: model.SlotStatusCompleted})

	_, err := f.booking.Transition(ctx, &tutor, 1, model.SlotStatusCompleted, model.SlotStatusConfirmed, model.TransitionExtra{})
	var terr *model.InvalidTransitionError
	require.True(t, errors.As(err, &terr))
	assert.False(t, terr.Stale)
	assert.Equal(t, model.SlotStatusCompleted, terr.From)
	assert.Equal(t, model.SlotStatusConfirmed, terr.To)

	slot, err := f.store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusCompleted, slot.Status)
	assert.Empty(t, f.publisher.events)
}

func TestStaleStatusRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(at("2025-03-09 10:00"))
	f.seed(&model.Slot{ID: 1, TutorID: tutor.ID, StudentID: id(student.ID),
		ScheduledStart: at("2025-03-10 14:00"), ScheduledEnd: at("2025-03-10 15:00"), Status: model.SlotStatusConfirmed})

	// Репетитор видел заявку в pending, но она уже подтверждена
	_, err := f.booking.Decline(ctx, tutor, 1)
	var terr *model.InvalidTransitionError
	require.True(t, errors.As(err, &terr))
	assert.True(t, terr.Stale)
}

func TestCompleteOnlyBySystem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(at("2025-03-10 15:00"))
	f.seed(&model.Slot{ID: 1, TutorID: tutor.ID, StudentID: id(student.ID),
		ScheduledStart: at("2025-03-10 14:00"), ScheduledEnd: at("2025-03-10 15:00"), Status: model.SlotStatusConfirmed})

	_, err := f.booking.Transition(ctx, &tutor, 1, model.SlotStatusConfirmed, model.SlotStatusCompleted, model.TransitionExtra{})
	assert.ErrorIs(t, err, model.ErrNotParty)

	slot, err := f.booking.Complete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusCompleted, slot.Status)
}

func TestConcurrentTransitionsOneWins(t *testing.T) {
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		f := newFixture(at("2025-03-09 10:00"))
		f.seed(&model.Slot{ID: 1, TutorID: tutor.ID, StudentID: id(student.ID),
			ScheduledStart: at("2025-03-10 14:00"), ScheduledEnd: at("2025-03-10 15:00"), Status: model.SlotStatusPending})

		var (
			wg   sync.WaitGroup
			errs = make([]error, 2)
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = f.booking.Accept(ctx, tutor, 1)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = f.booking.Cancel(ctx, student, 1, model.SlotStatusPending, "changed plans")
		}()
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			var terr *model.InvalidTransitionError
			require.True(t, errors.As(err, &terr), "loser must get a transition error, got %v", err)
			assert.True(t, terr.Stale)
		}
		assert.Equal(t, 1, wins)

		slot, err := f.store.Get(ctx, 1)
		require.NoError(t, err)
		if errs[0] == nil {
			assert.Equal(t, model.SlotStatusConfirmed, slot.Status)
		} else {
			assert.Equal(t, model.SlotStatusCancelled, slot.Status)
		}
	}
}
