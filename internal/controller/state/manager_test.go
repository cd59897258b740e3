package state

import (
	"testing"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerDraftFlow(t *testing.T) {
	sm := NewManager()
	const user = int64(100)

	assert.Equal(t, StateNone, sm.GetState(user))
	assert.False(t, sm.UpdateDraft(user, StateSlotStart, func(d *Draft) { d.Date = "2025-03-10" }))

	sm.Begin(user, StateSlotDate, Draft{Purpose: PurposeCreate})
	require.True(t, sm.UpdateDraft(user, StateSlotStart, func(d *Draft) { d.Date = "2025-03-10" }))
	require.True(t, sm.UpdateDraft(user, StateSlotEnd, func(d *Draft) { d.Start = "14:00" }))

	draft, ok := sm.Draft(user)
	require.True(t, ok)
	assert.Equal(t, StateSlotEnd, sm.GetState(user))
	assert.Equal(t, Draft{Purpose: PurposeCreate, Date: "2025-03-10", Start: "14:00"}, draft)

	sm.SetState(user, StateSlotNotes)
	draft, _ = sm.Draft(user)
	assert.Equal(t, "14:00", draft.Start, "changing state keeps the draft")

	sm.ClearState(user)
	_, ok = sm.Draft(user)
	assert.False(t, ok)
}

func TestManagerRole(t *testing.T) {
	sm := NewManager()

	_, ok := sm.Role(1)
	assert.False(t, ok)

	sm.SetRole(1, model.RoleTutor)
	sm.ClearState(1)

	role, ok := sm.Role(1)
	require.True(t, ok)
	assert.Equal(t, model.RoleTutor, role, "role survives the end of a dialog")
}
