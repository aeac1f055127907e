package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/service"
)

type ctxKey string

const (
	UserKey    ctxKey = "user"
	CreatedKey ctxKey = "user_created"
)

// GetUser extracts user from context.
func GetUser(ctx context.Context) *domain.User {
	u, ok := ctx.Value(UserKey).(*domain.User)
	if !ok {
		return nil
	}
	return u
}

// IsNewUser reports whether the user was created by this update.
func IsNewUser(ctx context.Context) bool {
	created, _ := ctx.Value(CreatedKey).(bool)
	return created
}

// UserProvisioner finds or creates the account behind a Telegram user.
type UserProvisioner interface {
	FindOrCreateByTelegram(ctx context.Context, p service.TelegramProfile, referralCode string, isAdmin bool) (*domain.User, bool, error)
}

// StartPayload returns the deep-link parameter of a /start message.
func StartPayload(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 || !strings.HasPrefix(fields[0], "/start") {
		return ""
	}
	return fields[1]
}

// UserLoader returns middleware that loads the user into context. A
// first-time user is created, attributed to the referral code of a
// /start deep link if present.
func UserLoader(users UserProvisioner, cfg interface{ IsAdmin(int64) bool }) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var (
				from    *models.User
				payload string
			)
			if update.Message != nil {
				from = update.Message.From
				payload = StartPayload(update.Message.Text)
			} else if update.CallbackQuery != nil {
				from = &update.CallbackQuery.From
			}

			if from == nil || from.IsBot {
				next(ctx, b, update)
				return
			}

			user, created, err := users.FindOrCreateByTelegram(ctx, service.TelegramProfile{
				ID:        from.ID,
				Username:  from.Username,
				FirstName: from.FirstName,
			}, payload, cfg.IsAdmin(from.ID))
			if err != nil {
				slog.Error("load user", "error", err, "telegram_id", from.ID)
			} else {
				ctx = context.WithValue(ctx, UserKey, user)
				ctx = context.WithValue(ctx, CreatedKey, created)
			}

			next(ctx, b, update)
		}
	}
}
