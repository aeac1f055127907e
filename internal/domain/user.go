package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID               uuid.UUID
	Email            *string
	Username         string
	TelegramID       *int64
	TelegramUsername string
	MinedBalance     decimal.Decimal
	NetworkBalance   decimal.Decimal
	ReferralCode     string
	ReferredByID     *uuid.UUID
	IsAdmin          bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Balance returns the balance held in the given currency.
func (u *User) Balance(c Currency) (decimal.Decimal, error) {
	switch c {
	case CurrencyPiNode:
		return u.MinedBalance, nil
	case CurrencyPI:
		return u.NetworkBalance, nil
	default:
		return decimal.Zero, ErrUnsupportedCurrency
	}
}

// DisplayName prefers the Telegram handle, then the username, then the email.
func (u *User) DisplayName() string {
	switch {
	case u.TelegramUsername != "":
		return "@" + u.TelegramUsername
	case u.Username != "":
		return u.Username
	case u.Email != nil:
		return *u.Email
	default:
		return u.ID.String()
	}
}
