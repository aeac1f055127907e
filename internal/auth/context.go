package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ContextKeyUserID contextKey = "user_id"

// WithUserID adds the authenticated user id to the context
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, id)
}

// UserIDFromContext retrieves the authenticated user id from the context
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return id, ok
}
