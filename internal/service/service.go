package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pinodelabs/pinode/internal/config"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/repository"
)

// Notifier accepts a notification for delivery. Implementations must not block.
type Notifier interface {
	Notify(n domain.Notification)
}

// EventLog mirrors notable events into an operator channel.
type EventLog interface {
	LogRegistration(u *domain.User, referredBy string)
	LogDepositRequest(u *domain.User, tx *domain.Transaction)
	LogWithdrawRequest(u *domain.User, tx *domain.Transaction)
	LogDecision(tx *domain.Transaction)
}

type nopNotifier struct{}

func (nopNotifier) Notify(domain.Notification) {}

type nopEventLog struct{}

func (nopEventLog) LogRegistration(*domain.User, string)                 {}
func (nopEventLog) LogDepositRequest(*domain.User, *domain.Transaction)  {}
func (nopEventLog) LogWithdrawRequest(*domain.User, *domain.Transaction) {}
func (nopEventLog) LogDecision(*domain.Transaction)                      {}

func orNopNotifier(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

func orNopEventLog(l EventLog) EventLog {
	if l == nil {
		return nopEventLog{}
	}
	return l
}

// lockUser reads the user row under FOR UPDATE.
func lockUser(ctx context.Context, q repository.Querier, id uuid.UUID) (repository.User, error) {
	u, err := q.GetUserForUpdate(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, domain.ErrUserNotFound
	}
	if err != nil {
		return u, fmt.Errorf("lock user: %w", err)
	}
	return u, nil
}

func clampLimit(limit int) int32 {
	switch {
	case limit <= 0:
		return config.DefaultListLimit
	case limit > config.MaxListLimit:
		return config.MaxListLimit
	default:
		return int32(limit)
	}
}

type clock func() time.Time
