package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/formatting"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleNotices обрабатывает команду /notices
func (h *Handlers) HandleNotices(ctx context.Context, b *bot.Bot, update *models.Update) {
	me, ok := h.requireIdentity(ctx, b, update)
	if !ok {
		return
	}

	notices, err := h.noticeService.List(ctx, me)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	if len(notices) == 0 {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "🔕 Уведомлений нет.")
		return
	}

	unread := 0
	blocks := make([]string, len(notices))
	for i, n := range notices {
		if !n.Read {
			unread++
		}
		blocks[i] = formatting.NoticeLine(n, h.loc)
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		fmt.Sprintf("🔔 Уведомления (непрочитанных: %d)\n\n%s\n\nОтметить: /read <id> или /read all",
			unread, strings.Join(blocks, "\n\n")))
}

// HandleRead обрабатывает команду /read <id|all>
func (h *Handlers) HandleRead(ctx context.Context, b *bot.Bot, update *models.Update) {
	me, ok := h.requireIdentity(ctx, b, update)
	if !ok {
		return
	}

	args := commandArgs(update.Message.Text)
	if len(args) == 0 {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Использование: /read <id> или /read all")
		return
	}

	if strings.EqualFold(args[0], "all") {
		if err := h.noticeService.MarkAllRead(ctx, me); err != nil {
			h.replyError(ctx, b, update.Message.Chat.ID, err)
			return
		}
		h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Все уведомления прочитаны.")
		return
	}

	id, err := parseNoticeID(args[0])
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Неверный ID уведомления.")
		return
	}

	if err := h.noticeService.MarkRead(ctx, me, id); err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Прочитано.")
}
