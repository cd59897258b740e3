package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/formatting"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// maxOpenListed - сколько свободных слотов показываем в одном сообщении
const maxOpenListed = 30

// HandleOpen обрабатывает команду /open - свободные слоты всех репетиторов
func (h *Handlers) HandleOpen(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireIdentity(ctx, b, update); !ok {
		return
	}

	now := h.now().Truncate(time.Minute)
	slots, err := h.bookingService.ListOpenSlots(ctx, now, now.AddDate(0, 0, listHorizon))
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	if len(slots) == 0 {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "📭 Свободных слотов пока нет.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🟢 Свободные слоты:\n\n")
	for i, s := range slots {
		if i == maxOpenListed {
			fmt.Fprintf(&sb, "\n…и ещё %d", len(slots)-maxOpenListed)
			break
		}
		sb.WriteString(formatting.SlotLine(s, h.loc))
		if s.Tutor != nil {
			sb.WriteString(" · " + formatting.FullName(s.Tutor.FirstName, s.Tutor.LastName))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nЗаписаться: /book <слот> <предмет>")

	h.sendMessage(ctx, b, update.Message.Chat.ID, sb.String())
}

// HandleBook обрабатывает команду /book <слот> <предмет>
func (h *Handlers) HandleBook(ctx context.Context, b *bot.Bot, update *models.Update) {
	me, ok := h.requireIdentity(ctx, b, update)
	if !ok {
		return
	}

	if me.Role != model.RoleStudent {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Записываться на занятия можно в роли студента: /role student")
		return
	}

	args := commandArgs(update.Message.Text)
	if len(args) < 2 {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Использование: /book <слот> <предмет>")
		return
	}

	slotID, err := parseID(args[0])
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Неверный номер слота.")
		return
	}
	subjectID, err := parseID(args[1])
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Неверный номер предмета.")
		return
	}

	slot, err := h.bookingService.Claim(ctx, me, slotID, subjectID)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"⏳ Заявка отправлена репетитору.\n\n"+formatting.SlotLine(slot, h.loc))
}

// HandleAccept обрабатывает команду /accept <слот>
func (h *Handlers) HandleAccept(ctx context.Context, b *bot.Bot, update *models.Update) {
	me, ok := h.requireTutor(ctx, b, update)
	if !ok {
		return
	}

	slotID, err := slotIDArg(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Укажите номер слота: /accept 42")
		return
	}

	slot, err := h.bookingService.Accept(ctx, me, slotID)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Заявка подтверждена.\n\n"+formatting.SlotLine(slot, h.loc))
}

// HandleDecline обрабатывает команду /decline <слот> - слот снова свободен
func (h *Handlers) HandleDecline(ctx context.Context, b *bot.Bot, update *models.Update) {
	me, ok := h.requireTutor(ctx, b, update)
	if !ok {
		return
	}

	slotID, err := slotIDArg(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Укажите номер слота: /decline 42")
		return
	}

	slot, err := h.bookingService.Decline(ctx, me, slotID)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, "🚫 Заявка отклонена, слот снова свободен.\n\n"+formatting.SlotLine(slot, h.loc))
}

// HandleCancelSlot обрабатывает команду /cancelslot <слот> [причина].
// Студент обязан указать причину; если её нет, спрашиваем отдельным сообщением.
func (h *Handlers) HandleCancelSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	me, ok := h.requireIdentity(ctx, b, update)
	if !ok {
		return
	}

	slotID, err := slotIDArg(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Укажите номер слота: /cancelslot 42 причина")
		return
	}

	slot, err := h.bookingService.GetSlot(ctx, slotID)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	reason := commandRest(update.Message.Text, 1)
	if reason == "" && me.Role == model.RoleStudent {
		h.stateManager.Begin(update.Message.From.ID, state.StateCancelReason, state.Draft{
			SlotID:   slotID,
			Observed: slot.Status,
		})
		h.sendMessage(ctx, b, update.Message.Chat.ID, "💬 Напишите причину отмены (или /cancel, чтобы передумать):")
		return
	}

	h.cancelSlot(ctx, b, me, update.Message.Chat.ID, slotID, slot.Status, reason)
}

func (h *Handlers) cancelSlot(ctx context.Context, b *bot.Bot, me model.Identity, chatID, slotID int64, observed model.SlotStatus, reason string) {
	slot, err := h.bookingService.Cancel(ctx, me, slotID, observed, reason)
	if err != nil {
		h.replyError(ctx, b, chatID, err)
		return
	}

	h.logger.Debug("Slot cancelled from bot", zap.Int64("slot_id", slotID), zap.Int64("actor_id", me.ID))
	h.sendMessage(ctx, b, chatID, "❌ Занятие отменено.\n\n"+formatting.SlotLine(slot, h.loc))
}

// HandleReschedule обрабатывает команду /reschedule <слот>
func (h *Handlers) HandleReschedule(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireIdentity(ctx, b, update); !ok {
		return
	}

	slotID, err := slotIDArg(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Укажите номер занятия: /reschedule 42")
		return
	}

	h.startTimeWizard(ctx, b, update.Message.From.ID, update.Message.Chat.ID,
		state.Draft{Purpose: state.PurposeReschedule, SlotID: slotID},
		"🔁 Перенос занятия\n\nВыберите новую дату:")
}

// HandleSlot обрабатывает команду /slot <слот> - карточка занятия
func (h *Handlers) HandleSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	me, ok := h.requireIdentity(ctx, b, update)
	if !ok {
		return
	}

	slotID, err := slotIDArg(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Укажите номер занятия: /slot 42")
		return
	}

	slot, err := h.bookingService.GetSlot(ctx, slotID)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	view, err := model.ResolveViewpoint(me, slot)
	if err != nil && slot.Status != model.SlotStatusOpen {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	text := formatting.SlotDetails(slot, view, h.loc)
	if actions := slotActions(slot, view); actions != "" {
		text += "\n\n" + actions
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, text)
}

// slotActions подсказывает команды, доступные пользователю для слота
func slotActions(slot *model.Slot, view model.Viewpoint) string {
	id := slot.ID
	if view == nil {
		if slot.Status == model.SlotStatusOpen {
			return fmt.Sprintf("Записаться: /book %d <предмет>", id)
		}
		return ""
	}

	var actions []string
	switch {
	case view.Role() == model.RoleTutor && slot.Status == model.SlotStatusOpen:
		actions = append(actions, fmt.Sprintf("/editslot %d", id), fmt.Sprintf("/deleteslot %d", id))
	case view.Role() == model.RoleTutor && slot.Status == model.SlotStatusPending:
		actions = append(actions, fmt.Sprintf("/accept %d", id), fmt.Sprintf("/decline %d", id), fmt.Sprintf("/cancelslot %d", id))
	case slot.Status == model.SlotStatusPending:
		actions = append(actions, fmt.Sprintf("/cancelslot %d <причина>", id))
	case slot.Status == model.SlotStatusConfirmed:
		actions = append(actions, fmt.Sprintf("/join %d", id), fmt.Sprintf("/reschedule %d", id), fmt.Sprintf("/cancelslot %d", id))
	}
	return strings.Join(actions, "\n")
}

// HandleSubjects обрабатывает команду /subjects - справочник предметов для /book
func (h *Handlers) HandleSubjects(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	if h.subjects == nil {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "📚 Справочник предметов недоступен. Укажите номер предмета, который назвал репетитор.")
		return
	}

	subjects, err := h.subjects.GetActive(ctx)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	if len(subjects) == 0 {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "📚 Предметов пока нет.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📚 Предметы:\n\n")
	for _, s := range subjects {
		fmt.Fprintf(&sb, "%d. %s\n", s.ID, s.Name)
	}
	sb.WriteString("\nЗаписаться: /book <слот> <предмет>")

	h.sendMessage(ctx, b, update.Message.Chat.ID, sb.String())
}
