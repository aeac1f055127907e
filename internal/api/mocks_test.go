package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/pinodelabs/pinode/internal/auth"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type fakeTokens map[string]uuid.UUID

func (f fakeTokens) Verify(token string) (uuid.UUID, error) {
	id, ok := f[token]
	if !ok {
		return uuid.Nil, auth.ErrTokenNotValid
	}
	return id, nil
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Register(ctx context.Context, req service.RegisterRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUsers) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

type mockLedger struct{ mock.Mock }

func (m *mockLedger) Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	tx, _ := args.Get(0).(*domain.Transaction)
	return tx, args.Error(1)
}

func (m *mockLedger) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	txs, _ := args.Get(0).([]domain.Transaction)
	return txs, args.Error(1)
}

func (m *mockLedger) ListPending(ctx context.Context) ([]domain.Transaction, error) {
	args := m.Called(ctx)
	txs, _ := args.Get(0).([]domain.Transaction)
	return txs, args.Error(1)
}

func (m *mockLedger) ListAll(ctx context.Context, limit int) ([]domain.Transaction, error) {
	args := m.Called(ctx, limit)
	txs, _ := args.Get(0).([]domain.Transaction)
	return txs, args.Error(1)
}

func (m *mockLedger) RequestDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, network string) (*service.DepositRequest, error) {
	args := m.Called(ctx, userID, amount, network)
	d, _ := args.Get(0).(*service.DepositRequest)
	return d, args.Error(1)
}

type mockExchange struct{ mock.Mock }

func (m *mockExchange) Exchange(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, amount)
	tx, _ := args.Get(0).(*domain.Transaction)
	return tx, args.Error(1)
}

type mockApprovals struct{ mock.Mock }

func (m *mockApprovals) Approve(ctx context.Context, txID uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, txID)
	tx, _ := args.Get(0).(*domain.Transaction)
	return tx, args.Error(1)
}

func (m *mockApprovals) ApproveDeposit(ctx context.Context, req service.ApprovalRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, req)
	tx, _ := args.Get(0).(*domain.Transaction)
	return tx, args.Error(1)
}

func (m *mockApprovals) ApproveWithdraw(ctx context.Context, req service.ApprovalRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, req)
	tx, _ := args.Get(0).(*domain.Transaction)
	return tx, args.Error(1)
}

func (m *mockApprovals) Reject(ctx context.Context, txID uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, txID)
	tx, _ := args.Get(0).(*domain.Transaction)
	return tx, args.Error(1)
}

func (m *mockApprovals) ApproveAll(ctx context.Context, ids ...uuid.UUID) (service.BulkResult, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(service.BulkResult), args.Error(1)
}

func (m *mockApprovals) RejectAll(ctx context.Context, ids ...uuid.UUID) (service.BulkResult, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(service.BulkResult), args.Error(1)
}

type mockSettings struct{ mock.Mock }

func (m *mockSettings) MinWithdraw(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockSettings) SetMinWithdraw(ctx context.Context, v decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, v)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
