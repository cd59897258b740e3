package controller

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/handlers"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	services handlers.Services,
	loc *time.Location,
	logger *zap.Logger,
) *BotController {
	// Создаём менеджер состояний
	stateManager := state.NewManager()

	return &BotController{
		bot:      botInstance,
		handlers: handlers.NewHandlers(services, stateManager, loc, logger),
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	h := c.handlers

	commands := map[string]bot.HandlerFunc{
		"/start":       h.HandleStart,
		"/help":        h.HandleHelp,
		"/cancel":      h.HandleCancel,
		"/role":        h.HandleRole,
		"/becometutor": h.HandleBecomeTutor,

		// Свободное время репетитора
		"/newslot":    h.HandleNewSlot,
		"/editslot":   h.HandleEditSlot,
		"/deleteslot": h.HandleDeleteSlot,
		"/myslots":    h.HandleMySlots,

		// Запись и жизненный цикл занятия
		"/open":       h.HandleOpen,
		"/book":       h.HandleBook,
		"/accept":     h.HandleAccept,
		"/decline":    h.HandleDecline,
		"/cancelslot": h.HandleCancelSlot,
		"/reschedule": h.HandleReschedule,
		"/slot":       h.HandleSlot,
		"/subjects":   h.HandleSubjects,

		// Звонок
		"/join":  h.HandleJoin,
		"/leave": h.HandleLeave,

		// Уведомления
		"/notices": h.HandleNotices,
		"/read":    h.HandleRead,
	}

	for command, handler := range commands {
		c.bot.RegisterHandlerMatchFunc(commandMatcher(command), handler)
	}

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, h.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, h.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// commandMatcher совпадает с "/cmd" и "/cmd аргументы", но не с "/cmdother"
func commandMatcher(command string) bot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		return matchesCommand(update.Message.Text, command)
	}
}

func matchesCommand(text, command string) bool {
	if len(text) < len(command) || text[:len(command)] != command {
		return false
	}
	rest := text[len(command):]
	return rest == "" || rest[0] == ' ' || rest[0] == '@'
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "open", Description: "🟢 Свободные слоты"},
		{Command: "myslots", Description: "📅 Мои занятия"},
		{Command: "notices", Description: "🔔 Уведомления"},
		{Command: "newslot", Description: "➕ Добавить свободное время (репетитор)"},
		{Command: "role", Description: "🔄 Сменить роль"},
		{Command: "becometutor", Description: "🎓 Стать репетитором"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
