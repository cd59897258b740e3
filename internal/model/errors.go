package model

import (
	"errors"
	"fmt"
)

// ErrSlotNotFound возвращается если слота нет
var ErrSlotNotFound = errors.New("slot not found")

// ValidationError - не заполнено или неверно поле; проверяется до обращения к хранилищу
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InvalidTransitionError - переход не из таблицы, либо статус слота уже изменился.
// Stale=true означает что слот успели изменить после того, как его прочитал пользователь.
type InvalidTransitionError struct {
	SlotID int64
	From   SlotStatus
	To     SlotStatus
	Stale  bool
}

func (e *InvalidTransitionError) Error() string {
	if e.Stale {
		return fmt.Sprintf("slot %d is no longer %s", e.SlotID, e.From)
	}
	return fmt.Sprintf("slot %d: transition %s -> %s is not allowed", e.SlotID, e.From, e.To)
}

// IsValidationError проверяет что в цепочке есть ValidationError
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsInvalidTransition проверяет что в цепочке есть InvalidTransitionError
func IsInvalidTransition(err error) bool {
	var t *InvalidTransitionError
	return errors.As(err, &t)
}
