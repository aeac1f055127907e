package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TxType string

const (
	TxTypeDeposit  TxType = "deposit"
	TxTypeWithdraw TxType = "withdraw"
	TxTypeExchange TxType = "exchange"
	TxTypeClaim    TxType = "claim"
	TxTypeReferral TxType = "referral"
)

type TxStatus string

const (
	TxStatusPending   TxStatus = "pending"
	TxStatusCompleted TxStatus = "completed"
	TxStatusFailed    TxStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s TxStatus) Terminal() bool {
	return s == TxStatusCompleted || s == TxStatusFailed
}

type Currency string

const (
	// CurrencyPiNode is the mined token held in User.MinedBalance.
	CurrencyPiNode Currency = "PINODE"
	// CurrencyPI is the network token held in User.NetworkBalance.
	CurrencyPI Currency = "PI"
)

func ParseCurrency(s string) (Currency, error) {
	switch Currency(s) {
	case CurrencyPiNode, CurrencyPI:
		return Currency(s), nil
	default:
		return "", ErrUnsupportedCurrency
	}
}

// Transaction is a ledger entry. Fields that only make sense for one
// type live in Details.
type Transaction struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Type           TxType
	Status         TxStatus
	Amount         decimal.Decimal
	Currency       Currency
	Description    string
	IdempotencyKey *string
	Details        TxDetails
	CreatedAt      time.Time
}

// TxDetails is implemented by the per-type payloads below.
type TxDetails interface {
	TxType() TxType
}

type DepositDetails struct {
	Network string `json:"network"`
}

type WithdrawDetails struct {
	Network string `json:"network"`
	Address string `json:"address"`
}

type ExchangeDetails struct {
	Received         decimal.Decimal `json:"received"`
	ReceivedCurrency Currency        `json:"received_currency"`
}

type ClaimSource string

const (
	ClaimSourceMission  ClaimSource = "mission"
	ClaimSourceReferral ClaimSource = "referral"
)

type ClaimDetails struct {
	Source    ClaimSource `json:"source"`
	MissionID string      `json:"mission_id,omitempty"`
	Referrals int         `json:"referrals,omitempty"`
}

type ReferralDetails struct {
	ReferralID uuid.UUID `json:"referral_id"`
}

func (DepositDetails) TxType() TxType  { return TxTypeDeposit }
func (WithdrawDetails) TxType() TxType { return TxTypeWithdraw }
func (ExchangeDetails) TxType() TxType { return TxTypeExchange }
func (ClaimDetails) TxType() TxType    { return TxTypeClaim }
func (ReferralDetails) TxType() TxType { return TxTypeReferral }

// Network returns the on-chain network tag for deposit and withdraw entries.
func (t *Transaction) Network() string {
	switch d := t.Details.(type) {
	case DepositDetails:
		return d.Network
	case WithdrawDetails:
		return d.Network
	}
	return ""
}

// AmountReceived returns the counter-asset leg of an exchange, if any.
func (t *Transaction) AmountReceived() *decimal.Decimal {
	if d, ok := t.Details.(ExchangeDetails); ok {
		v := d.Received
		return &v
	}
	return nil
}
