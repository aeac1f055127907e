package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pinodelabs/pinode/internal/config"
	"github.com/pinodelabs/pinode/internal/domain"
)

// TelegramLogger mirrors platform events into topic threads of an admin
// chat. Nothing is sent when LOG_TELEGRAM_CHAT_ID or the topic is unset.
type TelegramLogger struct {
	bot *bot.Bot
	cfg *config.Config
}

func NewTelegramLogger(b *bot.Bot, cfg *config.Config) *TelegramLogger {
	return &TelegramLogger{bot: b, cfg: cfg}
}

func (l *TelegramLogger) Bind(b *bot.Bot) { l.bot = b }

type LogType string

const (
	LogTypeError        LogType = "error"
	LogTypeRegistration LogType = "registration"
	LogTypeWithdrawal   LogType = "withdrawal"
	LogTypeDeposit      LogType = "deposit"
	LogTypeApproval     LogType = "approval"
)

func (l *TelegramLogger) Log(logType LogType, message string) {
	if l.bot == nil || l.cfg.LogTelegramChatID == 0 {
		return
	}

	topicID := l.getTopicID(logType)
	if topicID == 0 {
		return
	}

	if len([]rune(message)) > config.MaxTelegramMessageLen {
		message = string([]rune(message)[:config.MaxTelegramMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.NotifyTimeout)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		ParseMode:       models.ParseModeHTML,
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *TelegramLogger) LogError(err error, context string) {
	l.Log(LogTypeError, FormatErrorLog(err, context, time.Now()))
}

func (l *TelegramLogger) LogRegistration(u *domain.User, referredBy string) {
	l.Log(LogTypeRegistration, FormatRegistrationLog(u, referredBy))
}

func (l *TelegramLogger) LogDepositRequest(u *domain.User, tx *domain.Transaction) {
	l.Log(LogTypeDeposit, FormatRequestLog("💳 <b>Deposit Request</b>", u, tx))
}

func (l *TelegramLogger) LogWithdrawRequest(u *domain.User, tx *domain.Transaction) {
	l.Log(LogTypeWithdrawal, FormatRequestLog("🏧 <b>Withdrawal Request</b>", u, tx))
}

func (l *TelegramLogger) LogDecision(tx *domain.Transaction) {
	l.Log(LogTypeApproval, FormatDecisionLog(tx))
}

func (l *TelegramLogger) getTopicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeRegistration:
		return l.cfg.LogTopicRegistration
	case LogTypeWithdrawal:
		return l.cfg.LogTopicWithdrawal
	case LogTypeDeposit:
		return l.cfg.LogTopicDeposit
	case LogTypeApproval:
		return l.cfg.LogTopicApproval
	default:
		return 0
	}
}

func FormatErrorLog(err error, context string, at time.Time) string {
	return fmt.Sprintf("❌ <b>Error</b>\n\n<b>Context:</b> %s\n<b>Error:</b> <code>%s</code>\n<b>Time:</b> %s",
		Escape(context), Escape(err.Error()), at.Format("2006-01-02 15:04:05"))
}

func FormatRegistrationLog(u *domain.User, referredBy string) string {
	msg := fmt.Sprintf("👤 <b>New Registration</b>\n\n<b>ID:</b> <code>%s</code>\n<b>Name:</b> %s",
		u.ID, Escape(u.DisplayName()))
	if u.TelegramID != nil {
		msg += fmt.Sprintf("\n<b>Telegram:</b> <code>%d</code>", *u.TelegramID)
	}
	if referredBy != "" {
		msg += fmt.Sprintf("\n<b>Referred by:</b> <code>%s</code>", Escape(referredBy))
	}
	return msg
}

func FormatRequestLog(title string, u *domain.User, tx *domain.Transaction) string {
	msg := fmt.Sprintf("%s\n\n<b>User:</b> %s (<code>%s</code>)\n<b>Amount:</b> %s %s\n<b>Network:</b> %s\n<b>Tx:</b> <code>%s</code>",
		title, Escape(u.DisplayName()), u.ID, amount(tx.Amount, tx.Currency), tx.Currency, Escape(tx.Network()), tx.ID)
	if addr := withdrawAddress(tx); addr != "" {
		msg += fmt.Sprintf("\n<b>Address:</b> <code>%s</code>", Escape(addr))
	}
	return msg
}

func FormatDecisionLog(tx *domain.Transaction) string {
	icon := "✅"
	if tx.Status == domain.TxStatusFailed {
		icon = "🚫"
	}
	return fmt.Sprintf("%s <b>%s %s</b>\n\n<b>Amount:</b> %s %s\n<b>User:</b> <code>%s</code>\n<b>Tx:</b> <code>%s</code>",
		icon, capitalize(string(tx.Type)), tx.Status, amount(tx.Amount, tx.Currency), tx.Currency, tx.UserID, tx.ID)
}
