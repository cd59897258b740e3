package handlers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestErrorText(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		text  string
		known bool
	}{
		{
			name:  "validation",
			err:   &model.ValidationError{Field: "end_time", Message: "end time must be after start time"},
			text:  "❌ end_time: end time must be after start time",
			known: true,
		},
		{
			name:  "stale wrapped",
			err:   fmt.Errorf("accept: %w", &model.InvalidTransitionError{SlotID: 4, Stale: true}),
			text:  "⚠️ Занятие #4 уже изменилось. Обновите список и попробуйте снова.",
			known: true,
		},
		{
			name:  "off table",
			err:   &model.InvalidTransitionError{SlotID: 4, From: model.SlotStatusCompleted, To: model.SlotStatusConfirmed},
			text:  "❌ Это действие недоступно для занятия #4.",
			known: true,
		},
		{name: "not found", err: fmt.Errorf("get slot: %w", model.ErrSlotNotFound), text: "❌ Занятие не найдено.", known: true},
		{name: "not party", err: model.ErrNotParty, text: "❌ Вы не участник этого занятия.", known: true},
		{name: "internal", err: errors.New("connection reset"), text: "❌ Произошла ошибка. Попробуйте позже.", known: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, known := errorText(tt.err)
			assert.Equal(t, tt.text, text)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestIdentityRole(t *testing.T) {
	h := &Handlers{stateManager: state.NewManager()}
	tutor := &model.User{ID: 1, TelegramID: 10, IsTutor: true}
	student := &model.User{ID: 2, TelegramID: 20}

	assert.Equal(t, model.RoleTutor, h.identity(tutor).Role)
	assert.Equal(t, model.RoleStudent, h.identity(student).Role)

	h.stateManager.SetRole(10, model.RoleStudent)
	assert.Equal(t, model.RoleStudent, h.identity(tutor).Role)

	h.stateManager.SetRole(20, model.RoleTutor)
	assert.Equal(t, model.RoleStudent, h.identity(student).Role, "non-tutors never act as tutors")
}
