package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/formatting"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	// listHorizon - на сколько дней вперёд показываем занятия
	listHorizon = 30
	// listWindowBack - недавно прошедшие занятия тоже показываем
	listWindowBack = 24 * time.Hour
)

// HandleNewSlot обрабатывает команду /newslot - запускает мастер выбора времени
func (h *Handlers) HandleNewSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireTutor(ctx, b, update); !ok {
		return
	}

	h.startTimeWizard(ctx, b, update.Message.From.ID, update.Message.Chat.ID, state.Draft{Purpose: state.PurposeCreate},
		"🗓 Новый свободный слот\n\nВыберите дату:")
}

// HandleEditSlot обрабатывает команду /editslot <слот>
func (h *Handlers) HandleEditSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireTutor(ctx, b, update); !ok {
		return
	}

	slotID, err := slotIDArg(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Укажите номер слота: /editslot 42")
		return
	}

	h.startTimeWizard(ctx, b, update.Message.From.ID, update.Message.Chat.ID, state.Draft{Purpose: state.PurposeEdit, SlotID: slotID},
		"✏️ Изменение слота\n\nВыберите новую дату:")
}

// HandleDeleteSlot обрабатывает команду /deleteslot <слот>
func (h *Handlers) HandleDeleteSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	me, ok := h.requireTutor(ctx, b, update)
	if !ok {
		return
	}

	slotID, err := slotIDArg(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Укажите номер слота: /deleteslot 42")
		return
	}

	if err := h.availabilityService.Delete(ctx, me, slotID); err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, "🗑 Слот удалён.")
}

// HandleMySlots обрабатывает команду /myslots - занятия пользователя в текущей роли
func (h *Handlers) HandleMySlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	me, ok := h.requireIdentity(ctx, b, update)
	if !ok {
		return
	}

	// Округляем до минуты, чтобы повторные запросы попадали в кэш
	now := h.now().Truncate(time.Minute)
	from, to := now.Add(-listWindowBack), now.AddDate(0, 0, listHorizon)

	var (
		slots []*model.Slot
		err   error
	)
	if me.Role == model.RoleTutor {
		slots, err = h.availabilityService.ListTutorSlots(ctx, me.ID, from, to)
	} else {
		slots, err = h.bookingService.ListStudentSlots(ctx, me.ID, from, to)
	}
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	lines := make([]string, len(slots))
	for i, s := range slots {
		lines[i] = formatting.SlotLine(s, h.loc)
	}

	if len(lines) == 0 {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "📭 У вас пока нет занятий.\n\nПодробнее: /help")
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"📅 Ваши занятия ("+roleName(me.Role)+"):\n\n"+strings.Join(lines, "\n")+"\n\nКарточка занятия: /slot <номер>")
}
