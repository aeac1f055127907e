package handler

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pinodelabs/pinode/internal/telegram"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "start", bot.MatchTypeCommandStartOnly, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "app", bot.MatchTypeCommandStartOnly, h.handleWebApp)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "webapp", bot.MatchTypeCommandStartOnly, h.handleWebApp)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "help", bot.MatchTypeCommandStartOnly, h.handleHelp)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "referral", bot.MatchTypeCommandStartOnly, h.handleReferral)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "balance", bot.MatchTypeCommandStartOnly, h.handleBalance)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "stats", bot.MatchTypeCommandStartOnly, h.handleStats)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "link", bot.MatchTypeCommandStartOnly, h.handleLink)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "claim", bot.MatchTypeCommandStartOnly, h.handleClaim)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "missions", bot.MatchTypeCommandStartOnly, h.handleMissions)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "exchange", bot.MatchTypeCommandStartOnly, h.handleExchange)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "withdraw", bot.MatchTypeCommandStartOnly, h.handleWithdraw)

	// Admin commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "platform", bot.MatchTypeCommandStartOnly, h.handlePlatformStats)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "pending", bot.MatchTypeCommandStartOnly, h.handlePending)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "approve", bot.MatchTypeCommandStartOnly, h.handleApprove)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "reject", bot.MatchTypeCommandStartOnly, h.handleReject)

	// Callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.CallbackStats, bot.MatchTypeExact, h.handleStats)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.CallbackBalance, bot.MatchTypeExact, h.handleBalance)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.CallbackReferralLink, bot.MatchTypeExact, h.handleReferral)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.CallbackMissionClaim, bot.MatchTypePrefix, h.handleMissionClaim)
}

// HandleDefault answers updates no registered handler matched.
func (h *Handler) HandleDefault(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.From.IsBot {
		return
	}
	if update.Message.Chat.Type != models.ChatTypePrivate {
		return
	}

	text := telegram.DefaultReplyText
	if strings.HasPrefix(update.Message.Text, "/") {
		text = telegram.UnknownCommandText
	}
	h.reply(ctx, b, update.Message.Chat.ID, text, nil)
}
