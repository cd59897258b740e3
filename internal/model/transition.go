package model

// transitions - таблица допустимых переходов статуса слота
var transitions = map[SlotStatus][]SlotStatus{
	SlotStatusOpen:      {SlotStatusPending},
	SlotStatusPending:   {SlotStatusConfirmed, SlotStatusOpen, SlotStatusCancelled},
	SlotStatusConfirmed: {SlotStatusCancelled, SlotStatusCompleted},
}

// CanTransition проверяет что переход from -> to есть в таблице
func CanTransition(from, to SlotStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses возвращает статусы, в которые можно перейти из from
func NextStatuses(from SlotStatus) []SlotStatus {
	next := transitions[from]
	out := make([]SlotStatus, len(next))
	copy(out, next)
	return out
}

// TransitionExtra - данные, которые сопровождают переход
type TransitionExtra struct {
	StudentID          *int64 // при записи (open -> pending)
	SubjectID          *int64 // при записи (open -> pending)
	CancellationReason string // при отмене
	CancelledBy        *int64 // при отмене
}
