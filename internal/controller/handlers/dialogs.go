package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/formatting"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/timewindow"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Callback data мастера выбора времени
const (
	CallbackSlotDate  = "slot_date:"  // slot_date:2025-03-10
	CallbackSlotStart = "slot_start:" // slot_start:14:00
	CallbackSlotEnd   = "slot_end:"   // slot_end:15:00
	CallbackSkipNotes = "slot_notes:skip"
)

// dateChoices - сколько дней показываем на клавиатуре выбора даты
const dateChoices = 14

// startTimeWizard начинает диалог выбора даты и времени
func (h *Handlers) startTimeWizard(ctx context.Context, b *bot.Bot, telegramID, chatID int64, draft state.Draft, title string) {
	h.stateManager.Begin(telegramID, state.StateSlotDate, draft)

	dates := timewindow.GenerateDateOptions(h.now(), h.loc)
	h.sendWithKeyboard(ctx, b, chatID, title, keyboard.Dates(dates, CallbackSlotDate, dateChoices))
}

// HandleCallbackQuery обрабатывает нажатия на inline кнопки мастера
func (h *Handlers) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: callback.ID}); err != nil {
		h.logger.Warn("Failed to answer callback", zap.Error(err))
	}

	if callback.Message.Message == nil {
		return
	}
	chatID := callback.Message.Message.Chat.ID
	telegramID := callback.From.ID
	data := callback.Data

	switch {
	case strings.HasPrefix(data, CallbackSlotDate):
		if !h.advance(telegramID, state.StateSlotDate, state.StateSlotStart, func(d *state.Draft) {
			d.Date = strings.TrimPrefix(data, CallbackSlotDate)
		}) {
			h.sendError(ctx, b, chatID, "⚠️ Диалог устарел. Начните заново.")
			return
		}
		h.sendWithKeyboard(ctx, b, chatID, "🕐 Время начала:",
			keyboard.Times(timewindow.GenerateTimeSlots(), CallbackSlotStart))

	case strings.HasPrefix(data, CallbackSlotStart):
		start := strings.TrimPrefix(data, CallbackSlotStart)
		if !h.advance(telegramID, state.StateSlotStart, state.StateSlotEnd, func(d *state.Draft) { d.Start = start }) {
			h.sendError(ctx, b, chatID, "⚠️ Диалог устарел. Начните заново.")
			return
		}
		h.sendWithKeyboard(ctx, b, chatID, "🕐 Время окончания:",
			keyboard.Times(timewindow.GetAvailableEndTimes(start), CallbackSlotEnd))

	case strings.HasPrefix(data, CallbackSlotEnd):
		end := strings.TrimPrefix(data, CallbackSlotEnd)
		draft, ok := h.stateManager.Draft(telegramID)
		if !ok || h.stateManager.GetState(telegramID) != state.StateSlotEnd {
			h.sendError(ctx, b, chatID, "⚠️ Диалог устарел. Начните заново.")
			return
		}
		draft.End = end

		if draft.Purpose == state.PurposeReschedule {
			h.finishDraft(ctx, b, telegramID, chatID, draft, "")
			return
		}

		h.stateManager.UpdateDraft(telegramID, state.StateSlotNotes, func(d *state.Draft) { d.End = end })
		h.sendWithKeyboard(ctx, b, chatID,
			fmt.Sprintf("%s\n\n📝 Добавьте заметку для студента или пропустите:", draftSummary(draft)),
			keyboard.NewBuilder().Row(keyboard.Button("Пропустить", CallbackSkipNotes)).Build())

	case data == CallbackSkipNotes:
		draft, ok := h.stateManager.Draft(telegramID)
		if !ok || h.stateManager.GetState(telegramID) != state.StateSlotNotes {
			return
		}
		h.finishDraft(ctx, b, telegramID, chatID, draft, "")
	}
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	// Игнорируем команды (они обрабатываются другими handlers)
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	draft, ok := h.stateManager.Draft(telegramID)
	if !ok {
		return
	}

	switch h.stateManager.GetState(telegramID) {
	case state.StateSlotNotes:
		h.finishDraft(ctx, b, telegramID, chatID, draft, update.Message.Text)

	case state.StateCancelReason:
		user, ok := h.loadUser(ctx, b, telegramID, chatID)
		if !ok {
			return
		}
		h.stateManager.ClearState(telegramID)
		h.cancelSlot(ctx, b, h.identity(user), chatID, draft.SlotID, draft.Observed, update.Message.Text)
	}
}

// advance проверяет шаг мастера и переходит к следующему
func (h *Handlers) advance(telegramID int64, expected, next state.UserState, fn func(*state.Draft)) bool {
	if h.stateManager.GetState(telegramID) != expected {
		return false
	}
	return h.stateManager.UpdateDraft(telegramID, next, fn)
}

// finishDraft применяет собранные дату и время
func (h *Handlers) finishDraft(ctx context.Context, b *bot.Bot, telegramID, chatID int64, draft state.Draft, notes string) {
	h.stateManager.ClearState(telegramID)

	user, ok := h.loadUser(ctx, b, telegramID, chatID)
	if !ok {
		return
	}
	me := h.identity(user)

	var (
		slot *model.Slot
		err  error
		done string
	)
	switch draft.Purpose {
	case state.PurposeCreate:
		slot, err = h.availabilityService.Create(ctx, me, draft.Date, draft.Start, draft.End, notes)
		done = "✅ Слот создан"
	case state.PurposeEdit:
		slot, err = h.availabilityService.Edit(ctx, me, draft.SlotID, draft.Date, draft.Start, draft.End, notes)
		done = "✅ Слот изменён"
	case state.PurposeReschedule:
		slot, err = h.rescheduleService.Reschedule(ctx, me, draft.SlotID, draft.Date, draft.Start, draft.End)
		done = "🔁 Занятие перенесено"
	default:
		return
	}
	if err != nil {
		h.replyError(ctx, b, chatID, err)
		return
	}

	h.sendMessage(ctx, b, chatID, done+"\n\n"+formatting.SlotLine(slot, h.loc))
}

// draftSummary - выбранные дата и время с длительностью
func draftSummary(d state.Draft) string {
	summary := fmt.Sprintf("📅 %s, %s–%s", d.Date, d.Start, d.End)
	if minutes, err := timewindow.CalculateDuration(d.Start, d.End); err == nil && minutes > 0 {
		summary += fmt.Sprintf(" (%d мин)", minutes)
	}
	return summary
}
