package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pinodelabs/pinode/internal/telegram"
)

// Counter counts hits per chat in the current window.
type Counter interface {
	Hit(ctx context.Context, chatID int64) (int64, error)
}

// RateLimit returns middleware that drops messages from a chat once it
// exceeds limit per window. A failing counter lets the update through.
func RateLimit(counter Counter, limit int) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			// Only rate limit messages (not callbacks or other updates)
			if update.Message == nil || limit <= 0 {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID

			count, err := counter.Hit(ctx, chatID)
			if err != nil {
				slog.Error("rate limit check failed", "error", err, "chat_id", chatID)
				next(ctx, b, update)
				return
			}

			if count > int64(limit) {
				slog.Debug("rate limited", "chat_id", chatID, "count", count, "limit", limit)
				// Tell the user once per window.
				if count == int64(limit)+1 {
					b.SendMessage(ctx, &bot.SendMessageParams{
						ChatID: chatID,
						Text:   telegram.RateLimitedText,
					})
				}
				return
			}

			next(ctx, b, update)
		}
	}
}
