package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pinodelabs/pinode/internal/metrics"
)

const slowUpdate = 3 * time.Second

type updateInfo struct {
	kind    string
	chatID  int64
	userID  int64
	command string
}

// describe extracts what is worth logging about an update.
func describe(update *models.Update) updateInfo {
	switch {
	case update.Message != nil:
		info := updateInfo{kind: "message", chatID: update.Message.Chat.ID}
		if update.Message.From != nil {
			info.userID = update.Message.From.ID
		}
		if fields := strings.Fields(update.Message.Text); len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
			// Drop the @botname suffix used in groups.
			info.command, _, _ = strings.Cut(fields[0], "@")
		}
		return info
	case update.CallbackQuery != nil:
		info := updateInfo{kind: "callback_query", userID: update.CallbackQuery.From.ID, command: update.CallbackQuery.Data}
		if update.CallbackQuery.Message.Message != nil {
			info.chatID = update.CallbackQuery.Message.Message.Chat.ID
		}
		return info
	default:
		return updateInfo{kind: "other"}
	}
}

// Logging returns middleware that counts updates and logs their handling time.
func Logging() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			info := describe(update)
			metrics.BotUpdates.WithLabelValues(info.kind).Inc()

			start := time.Now()
			next(ctx, b, update)
			elapsed := time.Since(start)

			level := slog.LevelDebug
			if elapsed > slowUpdate {
				level = slog.LevelWarn
			}
			slog.Log(ctx, level, "update processed",
				"type", info.kind,
				"command", info.command,
				"chat_id", info.chatID,
				"user_id", info.userID,
				"duration", elapsed,
			)
		}
	}
}
