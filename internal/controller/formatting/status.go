package formatting

import "github.com/Freeeeeet/tutoring_bot/internal/model"

// SlotStatusDisplay представляет отображение статуса слота
type SlotStatusDisplay struct {
	Emoji string
	Text  string
}

// GetSlotStatusDisplay возвращает emoji и текст для статуса слота
func GetSlotStatusDisplay(status model.SlotStatus) SlotStatusDisplay {
	displays := map[model.SlotStatus]SlotStatusDisplay{
		model.SlotStatusOpen:      {"🟢", "Свободен"},
		model.SlotStatusPending:   {"⏳", "Ожидает подтверждения"},
		model.SlotStatusConfirmed: {"✅", "Подтверждён"},
		model.SlotStatusCancelled: {"❌", "Отменён"},
		model.SlotStatusCompleted: {"✔️", "Проведён"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return SlotStatusDisplay{"❓", "Неизвестно"}
}
