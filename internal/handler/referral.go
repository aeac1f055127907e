package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pinodelabs/pinode/internal/telegram"
)

func (h *Handler) handleReferral(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answer(ctx, b, update)
	user := h.currentUser(ctx, b, update)
	if user == nil {
		return
	}
	chatID := chatOf(update)

	stats, err := h.referralService.Stats(ctx, user.ID)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "load referral stats")
		return
	}
	h.reply(ctx, b, chatID, telegram.ReferralText(h.cfg.ReferralLink(user.ReferralCode), stats), nil)
}

func (h *Handler) handleClaim(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := h.currentUser(ctx, b, update)
	if user == nil {
		return
	}
	chatID := chatOf(update)

	result, err := h.referralService.ClaimBonus(ctx, user.ID)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "claim referral bonus")
		return
	}
	h.reply(ctx, b, chatID, telegram.ReferralClaimText(result), nil)
}
