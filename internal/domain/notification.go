package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type NotificationKind string

const (
	NotifyDepositApproved  NotificationKind = "deposit_approved"
	NotifyWithdrawApproved NotificationKind = "withdraw_approved"
	NotifyExchange         NotificationKind = "exchange"
	NotifyReferralBonus    NotificationKind = "referral_bonus"
	NotifyMissionReward    NotificationKind = "mission_reward"
	NotifyNewReferral      NotificationKind = "new_referral"
)

// Notification is an outbound message addressed to a user of the platform.
type Notification struct {
	Kind     NotificationKind
	UserID   uuid.UUID
	Amount   decimal.Decimal
	Currency Currency
	Received decimal.Decimal
	Network  string
	Subject  string
}
