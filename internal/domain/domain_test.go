package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissionStatusCanAdvanceTo(t *testing.T) {
	tests := []struct {
		from, to MissionStatus
		want     bool
	}{
		{"", MissionStatusCompleted, true},
		{"", MissionStatusClaimed, true},
		{MissionStatusCompleted, MissionStatusCompleted, true},
		{MissionStatusCompleted, MissionStatusClaimed, true},
		{MissionStatusClaimed, MissionStatusClaimed, true},
		{MissionStatusClaimed, MissionStatusCompleted, false},
		{MissionStatusCompleted, "started", false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanAdvanceTo(tt.to))
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(ErrInvalidAmount))
	assert.Equal(t, KindPrecondition, KindOf(fmt.Errorf("approve: %w", ErrInsufficientBalance)))
	assert.Equal(t, KindNotFound, KindOf(ErrUserNotFound))
	assert.Equal(t, KindConflict, KindOf(ErrIdempotencyConflict))
	assert.Equal(t, KindInternal, KindOf(errors.New("connection reset")))
	assert.Equal(t, "precondition", KindPrecondition.String())
}

func TestTransactionDetails(t *testing.T) {
	tx := Transaction{Type: TxTypeWithdraw, Details: WithdrawDetails{Network: "TRC20", Address: "TXYZabcdef123"}}
	assert.Equal(t, "TRC20", tx.Network())
	assert.Nil(t, tx.AmountReceived())

	tx = Transaction{Type: TxTypeExchange, Details: ExchangeDetails{Received: decimal.NewFromInt(2), ReceivedCurrency: CurrencyPI}}
	require.NotNil(t, tx.AmountReceived())
	assert.True(t, tx.AmountReceived().Equal(decimal.NewFromInt(2)))
	assert.Empty(t, tx.Network())
}

func TestUserBalance(t *testing.T) {
	u := User{MinedBalance: decimal.NewFromInt(100), NetworkBalance: decimal.NewFromInt(5)}

	b, err := u.Balance(CurrencyPiNode)
	require.NoError(t, err)
	assert.True(t, b.Equal(decimal.NewFromInt(100)))

	b, err = u.Balance(CurrencyPI)
	require.NoError(t, err)
	assert.True(t, b.Equal(decimal.NewFromInt(5)))

	_, err = u.Balance("USDT")
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)
}

func TestReferralClaimable(t *testing.T) {
	r := Referral{Status: ReferralStatusPending, BonusEarned: decimal.Zero}
	assert.False(t, r.Claimable())
	r.Status = ReferralStatusActive
	assert.True(t, r.Claimable())
	r.BonusEarned = decimal.NewFromInt(100)
	assert.False(t, r.Claimable())
}

func TestMissionCatalog(t *testing.T) {
	m, ok := FindMission("follow_twitter")
	require.True(t, ok)
	assert.True(t, m.Reward.Equal(decimal.NewFromInt(200)))

	_, ok = FindMission("nope")
	assert.False(t, ok)

	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	assert.Equal(t, "mission:11111111-2222-3333-4444-555555555555:follow_twitter", MissionIdempotencyKey(id, "follow_twitter"))
}
