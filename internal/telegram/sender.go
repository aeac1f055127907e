package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pinodelabs/pinode/internal/config"
)

// SendHTML sends a possibly long HTML message, splitting it into parts.
// The keyboard is attached to the last part. A part Telegram refuses to
// parse is resent as plain text.
func SendHTML(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) error {
	parts := SplitMessage(text, config.MaxTelegramMessageLen)

	for i, part := range parts {
		params := &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      part,
			ParseMode: models.ParseModeHTML,
		}
		if i == len(parts)-1 && markup != nil {
			params.ReplyMarkup = markup
		}

		_, err := b.SendMessage(ctx, params)
		if err != nil {
			slog.Warn("html send failed, falling back to plain text", "error", err, "chat_id", chatID)
			params.ParseMode = ""
			params.Text = PlainText(part)
			if _, err = b.SendMessage(ctx, params); err != nil {
				return fmt.Errorf("send message: %w", err)
			}
		}
	}
	return nil
}

// Sender adapts a bot to the notification dispatcher.
type Sender struct {
	bot *bot.Bot
}

func NewSender(b *bot.Bot) *Sender {
	return &Sender{bot: b}
}

// Bind attaches the bot when it is created after the sender.
func (s *Sender) Bind(b *bot.Bot) { s.bot = b }

func (s *Sender) Send(ctx context.Context, chatID int64, text string) bool {
	if s.bot == nil {
		return false
	}
	if err := SendHTML(ctx, s.bot, chatID, text, nil); err != nil {
		slog.Error("send notification", "error", err, "chat_id", chatID)
		return false
	}
	return true
}

// AnswerCallback acknowledges a callback query so the client stops its spinner.
func AnswerCallback(ctx context.Context, b *bot.Bot, q *models.CallbackQuery, text string) {
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: q.ID,
		Text:            text,
	}); err != nil {
		slog.Warn("answer callback query", "error", err)
	}
}
