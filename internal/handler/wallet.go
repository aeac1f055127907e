package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pinodelabs/pinode/internal/service"
	"github.com/pinodelabs/pinode/internal/telegram"
	"github.com/shopspring/decimal"
)

var errUsage = errors.New("usage")

// parseExchangeArgs reads "/exchange <amount>".
func parseExchangeArgs(text string) (decimal.Decimal, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return decimal.Zero, errUsage
	}
	amount, err := decimal.NewFromString(fields[1])
	if err != nil {
		return decimal.Zero, errUsage
	}
	return amount, nil
}

// parseWithdrawArgs reads "/withdraw <amount> <address> [network]".
func parseWithdrawArgs(text string) (amount decimal.Decimal, address, network string, err error) {
	fields := strings.Fields(text)
	if len(fields) < 3 || len(fields) > 4 {
		return decimal.Zero, "", "", errUsage
	}
	amount, err = decimal.NewFromString(fields[1])
	if err != nil {
		return decimal.Zero, "", "", errUsage
	}
	if len(fields) == 4 {
		network = fields[3]
	}
	return amount, fields[2], network, nil
}

func (h *Handler) handleExchange(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := h.currentUser(ctx, b, update)
	if user == nil {
		return
	}
	chatID := chatOf(update)

	amount, err := parseExchangeArgs(update.Message.Text)
	if err != nil {
		h.reply(ctx, b, chatID, telegram.ExchangeUsageText, nil)
		return
	}

	tx, err := h.exchangeService.Exchange(ctx, user.ID, amount)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "exchange")
		return
	}
	h.reply(ctx, b, chatID, telegram.ExchangeText(tx), nil)
}

func (h *Handler) handleWithdraw(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := h.currentUser(ctx, b, update)
	if user == nil {
		return
	}
	chatID := chatOf(update)

	amount, address, network, err := parseWithdrawArgs(update.Message.Text)
	if err != nil {
		h.reply(ctx, b, chatID, telegram.WithdrawUsageText, nil)
		return
	}

	tx, err := h.withdrawService.RequestWithdraw(ctx, service.WithdrawRequest{
		UserID:  user.ID,
		Amount:  amount,
		Address: address,
		Network: network,
	})
	if err != nil {
		h.replyError(ctx, b, chatID, err, "request withdraw")
		return
	}
	h.reply(ctx, b, chatID, telegram.WithdrawRequestedText(tx), nil)
}
