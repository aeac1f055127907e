package service

import (
	"context"
	"testing"
	"time"

	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWithdrawService(store *memStore) *WithdrawService {
	return NewWithdrawService(store, NewSettingsService(store), nil)
}

func TestRequestWithdraw_ValidationOrder(t *testing.T) {
	store := newMemStore()
	user := store.seedUser(0, 150)
	svc := newWithdrawService(store)
	d := decimal.NewFromInt

	tests := []struct {
		name    string
		amount  decimal.Decimal
		address string
		want    error
	}{
		{"non positive", d(0), "short", domain.ErrInvalidAmount},
		{"below minimum before address", d(50), "short", domain.ErrBelowMinimumWithdraw},
		{"short address", d(100), "short", domain.ErrInvalidAddress},
		{"blank padded address", d(100), "   abc   ", domain.ErrInvalidAddress},
		{"over balance", d(200), "GABCDEFGHIJKLMNOP", domain.ErrInsufficientBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RequestWithdraw(context.Background(), WithdrawRequest{
				UserID:  user.ID,
				Amount:  tt.amount,
				Address: tt.address,
			})
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, store.txs)
}

func TestRequestWithdraw_CreatesPendingWithoutDebit(t *testing.T) {
	store := newMemStore()
	user := store.seedUser(0, 150)
	svc := newWithdrawService(store)

	tx, err := svc.RequestWithdraw(context.Background(), WithdrawRequest{
		UserID:  user.ID,
		Amount:  decimal.NewFromInt(100),
		Address: "  GABCDEFGHIJKLMNOP ",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TxStatusPending, tx.Status)
	assert.Equal(t, domain.CurrencyPI, tx.Currency)
	assert.Equal(t, domain.WithdrawDetails{Network: "PI", Address: "GABCDEFGHIJKLMNOP"}, tx.Details)
	assert.True(t, store.users[user.ID].NetworkBalance.Equal(decimal.NewFromInt(150)))
}

func TestRequestWithdraw_DuplicateWindow(t *testing.T) {
	store := newMemStore()
	user := store.seedUser(0, 500)
	svc := newWithdrawService(store)
	ctx := context.Background()
	req := WithdrawRequest{UserID: user.ID, Amount: decimal.NewFromInt(100), Address: "GABCDEFGHIJKLMNOP"}

	_, err := svc.RequestWithdraw(ctx, req)
	require.NoError(t, err)

	_, err = svc.RequestWithdraw(ctx, req)
	require.ErrorIs(t, err, domain.ErrDuplicateWithdraw)

	other := req
	other.Amount = decimal.NewFromInt(101)
	_, err = svc.RequestWithdraw(ctx, other)
	require.NoError(t, err)

	store.clock = store.clock.Add(2 * time.Minute)
	_, err = svc.RequestWithdraw(ctx, req)
	require.NoError(t, err)
	assert.Len(t, store.txs, 3)
}

func TestRequestWithdraw_HonorsConfiguredMinimum(t *testing.T) {
	store := newMemStore()
	user := store.seedUser(0, 1000)
	svc := newWithdrawService(store)
	ctx := context.Background()

	_, err := NewSettingsService(store).SetMinWithdraw(ctx, decimal.NewFromInt(250))
	require.NoError(t, err)

	_, err = svc.RequestWithdraw(ctx, WithdrawRequest{UserID: user.ID, Amount: decimal.NewFromInt(200), Address: "GABCDEFGHIJKLMNOP"})
	require.ErrorIs(t, err, domain.ErrBelowMinimumWithdraw)
}
