package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/middleware"
	"github.com/pinodelabs/pinode/internal/service"
	"github.com/pinodelabs/pinode/internal/telegram"
)

const pendingListLimit = 20

// adminChat returns the chat of an admin message, or false when the sender
// is not an admin. Non-admins get the default reply so the commands stay hidden.
func (h *Handler) adminChat(ctx context.Context, b *bot.Bot, update *models.Update) (int64, bool) {
	if update.Message == nil {
		return 0, false
	}
	user := middleware.GetUser(ctx)
	if user == nil || !user.IsAdmin {
		h.reply(ctx, b, update.Message.Chat.ID, telegram.UnknownCommandText, nil)
		return 0, false
	}
	return update.Message.Chat.ID, true
}

// parseTxTargets reads "<id>" or "all" from an /approve or /reject
// command. An empty slice means every pending entry.
func parseTxTargets(text string) ([]uuid.UUID, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return nil, errUsage
	}
	if strings.EqualFold(fields[1], "all") {
		return nil, nil
	}
	id, err := uuid.Parse(fields[1])
	if err != nil {
		return nil, errUsage
	}
	return []uuid.UUID{id}, nil
}

func platformStatsText(st service.PlatformStats) string {
	return fmt.Sprintf("📈 <b>Platform</b>\n\n"+
		"Users: %d\nReferrals: %d\nPending transactions: %d\n"+
		"Total exchanged: %s PiNode\nTotal claimed: %s PiNode",
		st.Users, st.Referrals, st.PendingTransactions,
		st.TotalExchanged.String(), st.TotalClaimed.String())
}

func pendingText(txs []domain.Transaction) string {
	if len(txs) == 0 {
		return "✅ No pending transactions."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "⏳ <b>Pending transactions</b> (%d)\n", len(txs))
	for i, tx := range txs {
		if i == pendingListLimit {
			fmt.Fprintf(&sb, "\n… and %d more", len(txs)-pendingListLimit)
			break
		}
		fmt.Fprintf(&sb, "\n<code>%s</code> %s %s %s", tx.ID, tx.Type, tx.Amount.String(), tx.Currency)
		if network := tx.Network(); network != "" {
			fmt.Fprintf(&sb, " (%s)", telegram.Escape(network))
		}
	}
	return sb.String()
}

func (h *Handler) handlePlatformStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, ok := h.adminChat(ctx, b, update)
	if !ok {
		return
	}

	st, err := h.statsService.Platform(ctx)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "platform stats")
		return
	}
	h.reply(ctx, b, chatID, platformStatsText(st), nil)
}

func (h *Handler) handlePending(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, ok := h.adminChat(ctx, b, update)
	if !ok {
		return
	}

	txs, err := h.ledgerService.ListPending(ctx)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "list pending")
		return
	}
	h.reply(ctx, b, chatID, pendingText(txs), nil)
}

func (h *Handler) handleApprove(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.decide(ctx, b, update, "/approve", h.approvalService.ApproveAll)
}

func (h *Handler) handleReject(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.decide(ctx, b, update, "/reject", h.approvalService.RejectAll)
}

func (h *Handler) decide(ctx context.Context, b *bot.Bot, update *models.Update, command string,
	apply func(context.Context, ...uuid.UUID) (service.BulkResult, error)) {
	chatID, ok := h.adminChat(ctx, b, update)
	if !ok {
		return
	}

	ids, err := parseTxTargets(update.Message.Text)
	if err != nil {
		h.reply(ctx, b, chatID, fmt.Sprintf("❌ Usage: %s &lt;transaction id|all&gt;", command), nil)
		return
	}

	result, err := apply(ctx, ids...)
	if err != nil {
		h.replyError(ctx, b, chatID, err, command)
		return
	}
	h.reply(ctx, b, chatID, telegram.Escape(result.Summary()), nil)
}
