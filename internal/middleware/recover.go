package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ErrorReporter receives recovered panics, e.g. the Telegram log channel.
type ErrorReporter interface {
	LogError(err error, context string)
}

// Recover returns middleware that recovers from handler panics and
// reports them when reporter is not nil.
func Recover(reporter ErrorReporter) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("panic recovered in handler",
						"panic", r,
						"update_id", update.ID,
						"stack", string(debug.Stack()),
					)
					if reporter != nil {
						reporter.LogError(fmt.Errorf("panic: %v", r), fmt.Sprintf("update %d", update.ID))
					}
				}
			}()
			next(ctx, b, update)
		}
	}
}
