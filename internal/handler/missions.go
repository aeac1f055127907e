package handler

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pinodelabs/pinode/internal/telegram"
)

func (h *Handler) handleMissions(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := h.currentUser(ctx, b, update)
	if user == nil {
		return
	}
	chatID := chatOf(update)

	views, err := h.missionService.List(ctx, user.ID)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "list missions")
		return
	}

	text := telegram.MissionsText(views)
	if kb := telegram.MissionsKeyboard(views); kb != nil {
		h.reply(ctx, b, chatID, text, kb)
		return
	}
	h.reply(ctx, b, chatID, text, nil)
}

func (h *Handler) handleMissionClaim(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	user := h.currentUser(ctx, b, update)
	if user == nil {
		h.answer(ctx, b, update)
		return
	}
	chatID := chatOf(update)
	missionID := strings.TrimPrefix(update.CallbackQuery.Data, telegram.CallbackMissionClaim)

	claim, err := h.missionService.Claim(ctx, user.ID, missionID)
	if err != nil {
		h.answer(ctx, b, update)
		h.replyError(ctx, b, chatID, err, "claim mission")
		return
	}

	toast := "✅ +" + claim.Reward.String() + " PiNode"
	if claim.AlreadyClaimed {
		toast = "Already claimed"
	}
	telegram.AnswerCallback(ctx, b, update.CallbackQuery, toast)
	h.reply(ctx, b, chatID, telegram.MissionClaimText(claim), nil)
}
