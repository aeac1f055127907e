package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReferralStatus string

const (
	ReferralStatusPending ReferralStatus = "pending"
	ReferralStatusActive  ReferralStatus = "active"
)

type Referral struct {
	ID                 uuid.UUID
	ReferrerID         uuid.UUID
	ReferredUserID     *uuid.UUID
	ReferredTelegramID *int64
	Status             ReferralStatus
	BonusEarned        decimal.Decimal
	CreatedAt          time.Time
	ActivatedAt        *time.Time
	ClaimedAt          *time.Time
}

// Claimable reports whether the relationship still owes its referrer a bonus.
func (r *Referral) Claimable() bool {
	return r.Status == ReferralStatusActive && r.BonusEarned.IsZero()
}

type ReferralStats struct {
	Total            int
	Active           int
	TotalBonusEarned decimal.Decimal
	PendingBonus     decimal.Decimal
}

// ClaimResult describes a referral bonus claim. Nothing is true when
// there was no pending bonus and no balance was touched.
type ClaimResult struct {
	Nothing     bool
	Amount      decimal.Decimal
	Referrals   int
	Transaction *Transaction
}
