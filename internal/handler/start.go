package handler

import (
	"context"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/middleware"
	"github.com/pinodelabs/pinode/internal/telegram"
)

// startParam is what the web app receives: the user's referral code, or
// the Telegram id when no account is loaded.
func startParam(user *domain.User, telegramID int64) string {
	if user != nil && user.ReferralCode != "" {
		return user.ReferralCode
	}
	return strconv.FormatInt(telegramID, 10)
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	user := middleware.GetUser(ctx)
	keyboard := telegram.MainMenu(h.cfg.WebAppURL(startParam(user, update.Message.From.ID)))

	text := telegram.WelcomeText()
	if code := middleware.StartPayload(update.Message.Text); code != "" &&
		user != nil && user.ReferredByID != nil && middleware.IsNewUser(ctx) {
		text = telegram.ReferredWelcomeText(code)
	}
	h.reply(ctx, b, chatID, text, keyboard)
}

func (h *Handler) handleWebApp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	url := h.cfg.WebAppURL(startParam(middleware.GetUser(ctx), update.Message.From.ID))
	h.reply(ctx, b, update.Message.Chat.ID, telegram.WebAppText(url), telegram.WebAppMenu(url))
}

func (h *Handler) handleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	url := h.cfg.WebAppURL(startParam(middleware.GetUser(ctx), update.Message.From.ID))
	h.reply(ctx, b, update.Message.Chat.ID, telegram.HelpText(url, h.cfg.AppURL),
		telegram.InlineKeyboard(telegram.ButtonRow(telegram.WebAppButton("📱 Open Web App", url))))
}
