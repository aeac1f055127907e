package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/service"
	"github.com/pinodelabs/pinode/internal/telegram"
)

func (h *Handler) handleBalance(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answer(ctx, b, update)
	user := h.currentUser(ctx, b, update)
	if user == nil {
		return
	}
	chatID := chatOf(update)

	user, err := h.fresh(ctx, user)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "load balance")
		return
	}
	h.reply(ctx, b, chatID, telegram.BalanceText(user), nil)
}

func (h *Handler) handleStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answer(ctx, b, update)
	user := h.currentUser(ctx, b, update)
	if user == nil {
		return
	}
	chatID := chatOf(update)

	user, err := h.fresh(ctx, user)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "load stats")
		return
	}
	stats, err := h.referralService.Stats(ctx, user.ID)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "load referral stats")
		return
	}
	h.reply(ctx, b, chatID, telegram.StatsText(user, stats), nil)
}

func (h *Handler) handleLink(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	fields := strings.Fields(update.Message.Text)
	if len(fields) < 2 {
		h.reply(ctx, b, chatID, telegram.LinkUsageText, nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(fields[1]))
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		h.reply(ctx, b, chatID, "❌ Invalid email format. Please try again.", nil)
		return
	}

	from := update.Message.From
	_, err := h.userService.LinkTelegram(ctx, email, service.TelegramProfile{
		ID:        from.ID,
		Username:  from.Username,
		FirstName: from.FirstName,
	})
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		h.reply(ctx, b, chatID, telegram.AccountNotFoundText(h.cfg.AppURL), nil)
	case errors.Is(err, domain.ErrTelegramAlreadyLinked):
		h.reply(ctx, b, chatID, "❌ This Telegram account is already linked to another email address.", nil)
	case errors.Is(err, domain.ErrTelegramAccountInUse):
		h.reply(ctx, b, chatID, "❌ This Telegram account already has its own referrals or transactions and cannot be linked to another email address.", nil)
	case err != nil:
		h.replyError(ctx, b, chatID, err, "link telegram")
	default:
		h.reply(ctx, b, chatID, telegram.LinkedText(email), nil)
	}
}
