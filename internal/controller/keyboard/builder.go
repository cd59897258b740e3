package keyboard

import (
	"iter"

	"github.com/Freeeeeet/tutoring_bot/internal/timewindow"
	"github.com/go-telegram/bot/models"
)

// Builder упрощает создание inline клавиатур
type Builder struct {
	rows [][]models.InlineKeyboardButton
}

// NewBuilder создаёт новый builder клавиатуры
func NewBuilder() *Builder {
	return &Builder{
		rows: make([][]models.InlineKeyboardButton, 0),
	}
}

// Row добавляет новый ряд кнопок
func (b *Builder) Row(buttons ...models.InlineKeyboardButton) *Builder {
	if len(buttons) > 0 {
		b.rows = append(b.rows, buttons)
	}
	return b
}

// Grid раскладывает кнопки рядами по perRow штук
func (b *Builder) Grid(perRow int, buttons ...models.InlineKeyboardButton) *Builder {
	if perRow <= 0 {
		perRow = 1
	}
	for len(buttons) > 0 {
		n := min(perRow, len(buttons))
		b.Row(buttons[:n]...)
		buttons = buttons[n:]
	}
	return b
}

// Button создаёт кнопку
func Button(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// Build создаёт финальную клавиатуру
func (b *Builder) Build() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: b.rows,
	}
}

// Len - количество рядов
func (b *Builder) Len() int {
	return len(b.rows)
}

// Dates строит клавиатуру выбора даты, первые limit дней.
// Данные кнопки: prefix + "2006-01-02".
func Dates(options iter.Seq[timewindow.DateOption], prefix string, limit int) *models.InlineKeyboardMarkup {
	var buttons []models.InlineKeyboardButton
	for opt := range options {
		if len(buttons) == limit {
			break
		}
		buttons = append(buttons, Button(opt.Label, prefix+opt.Value))
	}
	return NewBuilder().Grid(2, buttons...).Build()
}

// Times строит клавиатуру выбора времени. Данные кнопки: prefix + "15:04".
func Times(options []timewindow.TimeOption, prefix string) *models.InlineKeyboardMarkup {
	buttons := make([]models.InlineKeyboardButton, len(options))
	for i, opt := range options {
		buttons[i] = Button(opt.Label, prefix+opt.Value)
	}
	return NewBuilder().Grid(4, buttons...).Build()
}
