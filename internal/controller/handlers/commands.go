package handlers

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 Справка по командам:\n\n" +
	"Для студентов:\n" +
	"/open - Свободные слоты репетиторов\n" +
	"/subjects - Список предметов\n" +
	"/book <слот> <предмет> - Записаться на занятие\n" +
	"/myslots - Мои занятия\n" +
	"/cancelslot <слот> <причина> - Отменить запись\n" +
	"/reschedule <слот> - Перенести занятие\n" +
	"/join <слот> - Войти в звонок\n\n" +
	"Для репетиторов:\n" +
	"/becometutor - Стать репетитором\n" +
	"/newslot - Добавить свободное время\n" +
	"/editslot <слот> - Изменить свободный слот\n" +
	"/deleteslot <слот> - Удалить свободный слот\n" +
	"/accept <слот> - Подтвердить заявку\n" +
	"/decline <слот> - Отклонить заявку\n\n" +
	"Общие:\n" +
	"/slot <слот> - Карточка занятия\n" +
	"/leave <слот> - Завершить звонок\n" +
	"/notices - Уведомления\n" +
	"/read <id|all> - Отметить прочитанным\n" +
	"/role tutor|student - Сменить роль\n" +
	"/cancel - Прервать текущий диалог"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	user := update.Message.From

	registeredUser, err := h.userService.RegisterUser(
		ctx,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.LanguageCode,
	)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	me := h.identity(registeredUser)
	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Это бот для записи на занятия к репетиторам.\n"+
			"Ваша текущая роль: %s\n\n%s",
		registeredUser.FirstName,
		roleName(me.Role),
		helpText,
	)

	h.sendMessage(ctx, b, update.Message.Chat.ID, welcomeText)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleBecomeTutor обрабатывает команду /becometutor
func (h *Handlers) HandleBecomeTutor(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	if _, err := h.userService.MakeTutor(ctx, user.TelegramID); err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	h.stateManager.SetRole(user.TelegramID, model.RoleTutor)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"🎓 Теперь вы репетитор!\n\nДобавьте свободное время: /newslot\nВернуться к роли студента: /role student")
}

// HandleRole обрабатывает команду /role tutor|student
func (h *Handlers) HandleRole(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	args := commandArgs(update.Message.Text)
	if len(args) == 0 {
		h.sendMessage(ctx, b, update.Message.Chat.ID,
			fmt.Sprintf("Текущая роль: %s\n\nСменить: /role tutor или /role student", roleName(h.identity(user).Role)))
		return
	}

	role, ok := parseRole(args[0])
	if !ok {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Неизвестная роль. Используйте /role tutor или /role student")
		return
	}

	me, err := h.userService.Identity(user, role)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	h.stateManager.SetRole(user.TelegramID, me.Role)
	h.stateManager.ClearState(user.TelegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Роль изменена: "+roleName(me.Role))
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.")
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.")
}

func roleName(role model.Role) string {
	if role == model.RoleTutor {
		return "репетитор"
	}
	return "студент"
}
