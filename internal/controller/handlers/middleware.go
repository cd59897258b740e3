package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// requireUser проверяет что пользователь существует
// Возвращает user и true если OK, nil и false если нет
func (h *Handlers) requireUser(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	if update.Message == nil || update.Message.From == nil {
		return nil, false
	}

	return h.loadUser(ctx, b, update.Message.From.ID, update.Message.Chat.ID)
}

func (h *Handlers) loadUser(ctx context.Context, b *bot.Bot, telegramID, chatID int64) (*model.User, bool) {
	user, err := h.userService.GetByTelegramID(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to get user", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return nil, false
	}

	if user == nil {
		h.sendError(ctx, b, chatID, "❌ Пользователь не найден. Используйте /start для регистрации.")
		return nil, false
	}

	return user, true
}

// identity - пользователь в выбранной роли (по умолчанию репетитор для репетиторов)
func (h *Handlers) identity(user *model.User) model.Identity {
	role, ok := h.stateManager.Role(user.TelegramID)
	if !ok || (role == model.RoleTutor && !user.IsTutor) {
		role = user.DefaultRole()
	}
	return user.Identity(role)
}

// requireIdentity загружает пользователя и его текущую роль
func (h *Handlers) requireIdentity(ctx context.Context, b *bot.Bot, update *models.Update) (model.Identity, bool) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return model.Identity{}, false
	}
	return h.identity(user), true
}

// requireTutor проверяет что пользователь работает в роли репетитора
func (h *Handlers) requireTutor(ctx context.Context, b *bot.Bot, update *models.Update) (model.Identity, bool) {
	me, ok := h.requireIdentity(ctx, b, update)
	if !ok {
		return model.Identity{}, false
	}

	if me.Role != model.RoleTutor {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Эта команда доступна только репетиторам.\n\nСтать репетитором: /becometutor\nСменить роль: /role tutor")
		return model.Identity{}, false
	}

	return me, true
}

// replyError отправляет пользователю понятное описание ошибки сервиса
func (h *Handlers) replyError(ctx context.Context, b *bot.Bot, chatID int64, err error) {
	text, known := errorText(err)
	if !known {
		h.logger.Error("Request failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	h.sendError(ctx, b, chatID, text)
}

// errorText переводит ошибку в сообщение для пользователя; known=false для внутренних ошибок
func errorText(err error) (text string, known bool) {
	var (
		verr *model.ValidationError
		terr *model.InvalidTransitionError
	)

	switch {
	case errors.As(err, &verr):
		return "❌ " + verr.Error(), true
	case errors.As(err, &terr):
		if terr.Stale {
			return fmt.Sprintf("⚠️ Занятие #%d уже изменилось. Обновите список и попробуйте снова.", terr.SlotID), true
		}
		return fmt.Sprintf("❌ Это действие недоступно для занятия #%d.", terr.SlotID), true
	case errors.Is(err, model.ErrSlotNotFound):
		return "❌ Занятие не найдено.", true
	case errors.Is(err, model.ErrNotParty):
		return "❌ Вы не участник этого занятия.", true
	}
	return "❌ Произошла ошибка. Попробуйте позже.", false
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	h.sendWithKeyboard(ctx, b, chatID, text, nil)
}

// sendWithKeyboard отправляет сообщение с inline клавиатурой
func (h *Handlers) sendWithKeyboard(ctx context.Context, b *bot.Bot, chatID int64, text string, kb *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
