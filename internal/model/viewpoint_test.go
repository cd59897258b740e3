package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveViewpoint(t *testing.T) {
	studentID := int64(2)
	slot := &Slot{
		ID:        1,
		TutorID:   1,
		StudentID: &studentID,
		Tutor:     &User{ID: 1, FirstName: "Anna"},
		Student:   &User{ID: 2, FirstName: "Boris"},
	}

	view, err := ResolveViewpoint(Identity{ID: 1, Role: RoleTutor}, slot)
	require.NoError(t, err)
	tutorView, ok := view.(TutorView)
	require.True(t, ok)
	require.NotNil(t, tutorView.Student)
	assert.Equal(t, "Boris", tutorView.Student.FirstName)

	view, err = ResolveViewpoint(Identity{ID: 2, Role: RoleStudent}, slot)
	require.NoError(t, err)
	other, ok := view.Counterpart()
	require.True(t, ok)
	assert.Equal(t, "Anna", other.FirstName)
	assert.Equal(t, RoleStudent, view.Role())

	// Тот же пользователь, но не в той роли
	_, err = ResolveViewpoint(Identity{ID: 2, Role: RoleTutor}, slot)
	assert.ErrorIs(t, err, ErrNotParty)

	_, err = ResolveViewpoint(Identity{ID: 3, Role: RoleStudent}, slot)
	assert.ErrorIs(t, err, ErrNotParty)

	_, err = ResolveViewpoint(Identity{ID: 1}, slot)
	assert.ErrorIs(t, err, ErrNotParty)
}

func TestTutorViewOfOpenSlot(t *testing.T) {
	view, err := ResolveViewpoint(Identity{ID: 1, Role: RoleTutor}, &Slot{ID: 1, TutorID: 1, Status: SlotStatusOpen})
	require.NoError(t, err)

	_, ok := view.Counterpart()
	assert.False(t, ok)
}

func TestReadStateKeyPerRole(t *testing.T) {
	u := &User{ID: 5, IsTutor: true}
	assert.Equal(t, "5:tutor", u.Identity(RoleTutor).ReadStateKey())
	assert.Equal(t, "5:student", u.Identity(RoleStudent).ReadStateKey())
	assert.Equal(t, RoleTutor, u.DefaultRole())
}
