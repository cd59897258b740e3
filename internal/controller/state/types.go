package state

import "github.com/Freeeeeet/tutoring_bot/internal/model"

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Мастер выбора времени: дата -> начало -> конец -> заметки
	StateSlotDate  UserState = "slot_date"
	StateSlotStart UserState = "slot_start"
	StateSlotEnd   UserState = "slot_end"
	StateSlotNotes UserState = "slot_notes"

	// Ожидаем причину отмены
	StateCancelReason UserState = "cancel_reason"
)

// Purpose - для чего собирается время в мастере
type Purpose string

const (
	PurposeCreate     Purpose = "create"
	PurposeEdit       Purpose = "edit"
	PurposeReschedule Purpose = "reschedule"
)

// Draft - данные, накопленные за диалог
type Draft struct {
	Purpose  Purpose
	SlotID   int64
	Date     string // "2006-01-02"
	Start    string // "15:04"
	End      string // "15:04"
	Observed model.SlotStatus
}

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State UserState
	Draft Draft
}
