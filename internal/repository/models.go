package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
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
	CreatedAt        pgtype.Timestamptz
	UpdatedAt        pgtype.Timestamptz
}

type Transaction struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Type           string
	Amount         decimal.Decimal
	AmountReceived decimal.NullDecimal
	Currency       string
	Status         string
	Description    string
	Network        string
	Address        string
	Details        []byte
	IdempotencyKey *string
	CreatedAt      pgtype.Timestamptz
}

type Referral struct {
	ID                 uuid.UUID
	ReferrerID         uuid.UUID
	ReferredUserID     *uuid.UUID
	ReferredTelegramID *int64
	Status             string
	BonusEarned        decimal.Decimal
	CreatedAt          pgtype.Timestamptz
	ActivatedAt        pgtype.Timestamptz
	ClaimedAt          pgtype.Timestamptz
}

type MissionRecord struct {
	UserID    uuid.UUID
	MissionID string
	Status    string
	Reward    decimal.Decimal
	ClaimedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}
