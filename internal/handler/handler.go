package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pinodelabs/pinode/internal/config"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/middleware"
	"github.com/pinodelabs/pinode/internal/service"
	"github.com/pinodelabs/pinode/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot             *bot.Bot
	cfg             *config.Config
	userService     *service.UserService
	referralService *service.ReferralService
	missionService  *service.MissionService
	exchangeService *service.ExchangeService
	withdrawService *service.WithdrawService
	ledgerService   *service.LedgerService
	approvalService *service.ApprovalService
	statsService    *service.StatsService
	tgLogger        *telegram.TelegramLogger
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot             *bot.Bot
	Cfg             *config.Config
	UserService     *service.UserService
	ReferralService *service.ReferralService
	MissionService  *service.MissionService
	ExchangeService *service.ExchangeService
	WithdrawService *service.WithdrawService
	LedgerService   *service.LedgerService
	ApprovalService *service.ApprovalService
	StatsService    *service.StatsService
	TgLogger        *telegram.TelegramLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:             deps.Bot,
		cfg:             deps.Cfg,
		userService:     deps.UserService,
		referralService: deps.ReferralService,
		missionService:  deps.MissionService,
		exchangeService: deps.ExchangeService,
		withdrawService: deps.WithdrawService,
		ledgerService:   deps.LedgerService,
		approvalService: deps.ApprovalService,
		statsService:    deps.StatsService,
		tgLogger:        deps.TgLogger,
	}
}

// chatOf returns the chat an update should be answered in. Callback
// answers go to the private chat of the user who pressed the button.
func chatOf(update *models.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID
	default:
		return 0
	}
}

func (h *Handler) reply(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) {
	if err := telegram.SendHTML(ctx, b, chatID, text, markup); err != nil {
		slog.Error("send reply", "error", err, "chat_id", chatID)
	}
}

// replyError answers with a description of err. Internal errors are logged
// and mirrored to the log channel instead of being shown.
func (h *Handler) replyError(ctx context.Context, b *bot.Bot, chatID int64, err error, op string) {
	if domain.KindOf(err) == domain.KindInternal {
		slog.Error(op, "error", err, "chat_id", chatID)
		if h.tgLogger != nil {
			h.tgLogger.LogError(err, op)
		}
	}
	h.reply(ctx, b, chatID, telegram.ErrorText(err), nil)
}

// currentUser returns the user loaded by middleware, answering the update
// with an error when it is missing.
func (h *Handler) currentUser(ctx context.Context, b *bot.Bot, update *models.Update) *domain.User {
	user := middleware.GetUser(ctx)
	if user == nil {
		h.reply(ctx, b, chatOf(update), telegram.InternalErrorText, nil)
	}
	return user
}

// fresh reloads the user so balances reflect the latest committed state.
func (h *Handler) fresh(ctx context.Context, user *domain.User) (*domain.User, error) {
	return h.userService.GetByID(ctx, user.ID)
}

func (h *Handler) answer(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		telegram.AnswerCallback(ctx, b, update.CallbackQuery, "")
	}
}
