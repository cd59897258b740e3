package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryInvalidateByTag(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	tutorFilter := model.SlotFilter{TutorID: 1, Statuses: []model.SlotStatus{model.SlotStatusOpen}}
	studentFilter := model.SlotFilter{StudentID: 2}

	require.NoError(t, c.Set(ctx, FilterKey(tutorFilter), []*model.Slot{{ID: 10, TutorID: 1}}, FilterTags(tutorFilter)...))
	require.NoError(t, c.Set(ctx, FilterKey(studentFilter), []*model.Slot{{ID: 11, TutorID: 3}}, FilterTags(studentFilter)...))
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Invalidate(ctx, TutorTag(1)))

	_, ok, err := c.Get(ctx, FilterKey(tutorFilter))
	require.NoError(t, err)
	assert.False(t, ok, "tutor listing should be dropped")

	slots, ok, err := c.Get(ctx, FilterKey(studentFilter))
	require.NoError(t, err)
	assert.True(t, ok, "student listing should survive")
	assert.Equal(t, int64(11), slots[0].ID)
}

func TestMemoryExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	c := NewMemory(time.Minute)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []*model.Slot{{ID: 1}}, AllTag))

	now = now.Add(2 * time.Minute)
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	require.NoError(t, c.Set(ctx, "k", []*model.Slot{{ID: 1, TutorNotes: "a"}}, AllTag))

	first, _, _ := c.Get(ctx, "k")
	first[0].TutorNotes = "changed"

	second, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "a", second[0].TutorNotes)
}

func TestFilterKeyIgnoresStatusOrder(t *testing.T) {
	a := model.SlotFilter{TutorID: 1, Statuses: []model.SlotStatus{model.SlotStatusPending, model.SlotStatusConfirmed}}
	b := model.SlotFilter{TutorID: 1, Statuses: []model.SlotStatus{model.SlotStatusConfirmed, model.SlotStatusPending}}
	assert.Equal(t, FilterKey(a), FilterKey(b))
}

func TestSlotTags(t *testing.T) {
	student := int64(5)
	last := int64(6)
	slot := &model.Slot{ID: 42, TutorID: 1, StudentID: &student, LastStudentID: &last}

	assert.ElementsMatch(t,
		[]string{"slot:42", "tutor:1", AllTag, "student:5", "student:6"},
		SlotTags(slot),
	)
}

func TestMemoryStaysBoundedAsClockAdvances(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	c := NewMemory(time.Second)
	c.now = func() time.Time { return now }

	for i := 0; i < 1000; i++ {
		f := model.SlotFilter{TutorID: int64(i%7 + 1), From: now}
		require.NoError(t, c.Set(ctx, FilterKey(f), []*model.Slot{{ID: int64(i)}}, FilterTags(f)...))
		now = now.Add(time.Second)
	}

	assert.LessOrEqual(t, c.Len(), 3)
	for tag, keys := range c.tags {
		for key := range keys {
			_, ok := c.entries[key]
			assert.True(t, ok, "tag %s points at dropped key %s", tag, key)
		}
	}
}

func TestMemoryInvalidateCleansOtherTags(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	require.NoError(t, c.Set(ctx, "k", []*model.Slot{{ID: 1}}, TutorTag(1), StudentTag(2)))
	require.NoError(t, c.Invalidate(ctx, TutorTag(1)))

	assert.Zero(t, c.Len())
	assert.Empty(t, c.tags)
}

func TestWidenSharesKeyWithinStep(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	a := model.SlotFilter{TutorID: 1, From: base.Add(5 * time.Minute), To: base.Add(2*time.Hour + time.Minute)}
	b := model.SlotFilter{TutorID: 1, From: base.Add(59 * time.Minute), To: base.Add(2*time.Hour + 30*time.Minute)}

	assert.Equal(t, FilterKey(Widen(a)), FilterKey(Widen(b)))

	wide := Widen(a)
	assert.Equal(t, base, wide.From)
	assert.Equal(t, base.Add(3*time.Hour), wide.To)

	exact := model.SlotFilter{To: base}
	assert.Equal(t, base, Widen(exact).To, "bound on the step stays put")
}

func TestNarrowAppliesExactBounds(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	slots := []*model.Slot{
		{ID: 1, TutorID: 1, ScheduledStart: base},
		{ID: 2, TutorID: 1, ScheduledStart: base.Add(30 * time.Minute)},
		{ID: 3, TutorID: 1, ScheduledStart: base.Add(90 * time.Minute)},
	}

	got := Narrow(model.SlotFilter{TutorID: 1, From: base.Add(10 * time.Minute), To: base.Add(90 * time.Minute)}, slots)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}
