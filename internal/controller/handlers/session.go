package handlers

import (
	"context"

	"github.com/Freeeeeet/tutoring_bot/internal/service"
	"github.com/Freeeeeet/tutoring_bot/internal/timewindow"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleJoin обрабатывает команду /join <слот> - проверяет доступ к звонку
func (h *Handlers) HandleJoin(ctx context.Context, b *bot.Bot, update *models.Update) {
	me, ok := h.requireIdentity(ctx, b, update)
	if !ok {
		return
	}

	slotID, err := slotIDArg(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Укажите номер занятия: /join 42")
		return
	}

	slot, err := h.bookingService.GetSlot(ctx, slotID)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	now := h.now()
	decision := service.CanAccess(slot, &me, now)
	if !decision.CanAccess {
		h.sendError(ctx, b, update.Message.Chat.ID,
			"⛔️ Войти пока нельзя: "+decision.Reason+"\n\nВернуться: "+decision.DashboardLink)
		return
	}

	h.sessions.Started(slot, now)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"🎥 Звонок открыт: "+service.CallLink(slot.ID)+"\n"+
			timewindow.FormatTimeRange(slot.ScheduledStart, slot.ScheduledEnd, h.loc)+
			"\n\nПо окончании: /leave "+formatID(slot.ID))
}

// HandleLeave обрабатывает команду /leave <слот> - звонок закончен
func (h *Handlers) HandleLeave(ctx context.Context, b *bot.Bot, update *models.Update) {
	me, ok := h.requireIdentity(ctx, b, update)
	if !ok {
		return
	}

	slotID, err := slotIDArg(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Укажите номер занятия: /leave 42")
		return
	}

	slot, err := h.bookingService.GetSlot(ctx, slotID)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}
	if !slot.IsParty(me.ID) {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Вы не участник этого занятия.")
		return
	}

	if !h.sessions.Active(slotID) {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Звонок по этому занятию не начат.")
		return
	}

	completed, err := h.sessions.Ended(ctx, slotID, h.now())
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	if completed == nil {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "👋 Звонок завершён. Он был слишком коротким, занятие не засчитано.")
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, "✔️ Занятие проведено. Спасибо!")
}
