package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pinodelabs/pinode/internal/config"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/metrics"
	"github.com/pinodelabs/pinode/internal/repository"
	"github.com/shopspring/decimal"
)

// LedgerService records transactions. It never touches balances.
type LedgerService struct {
	store     repository.Store
	addresses map[string]string
	events    EventLog
}

func NewLedgerService(store repository.Store, depositAddresses map[string]string, events EventLog) *LedgerService {
	return &LedgerService{store: store, addresses: depositAddresses, events: orNopEventLog(events)}
}

func (s *LedgerService) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	return createTransaction(ctx, s.store, tx)
}

// createTransaction validates and persists tx through q, which may be a
// transaction-scoped querier.
func createTransaction(ctx context.Context, q repository.Querier, tx *domain.Transaction) (*domain.Transaction, error) {
	if !tx.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if tx.Details != nil && tx.Details.TxType() != tx.Type {
		return nil, fmt.Errorf("details of type %s on %s transaction", tx.Details.TxType(), tx.Type)
	}
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}

	params, err := transactionParams(tx)
	if err != nil {
		return nil, err
	}
	row, err := q.CreateTransaction(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	metrics.TransactionsCreated.WithLabelValues(string(tx.Type), string(tx.Status)).Inc()
	return rowToTransaction(row)
}

func (s *LedgerService) Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	row, err := s.store.GetTransaction(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return rowToTransaction(row)
}

// ListPending returns every pending entry, newest first.
func (s *LedgerService) ListPending(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := s.store.ListPendingTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return rowsToTransactions(rows)
}

// ListRecent returns a user's entries, newest first.
func (s *LedgerService) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Transaction, error) {
	rows, err := s.store.ListUserTransactions(ctx, repository.ListUserTransactionsParams{
		UserID: userID,
		Limit:  clampLimit(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list user transactions: %w", err)
	}
	return rowsToTransactions(rows)
}

// ListAll returns entries of every user, newest first.
func (s *LedgerService) ListAll(ctx context.Context, limit int) ([]domain.Transaction, error) {
	rows, err := s.store.ListTransactions(ctx, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return rowsToTransactions(rows)
}

// DepositRequest is the outcome of RequestDeposit: the pending entry and the
// address the user should send funds to.
type DepositRequest struct {
	Transaction *domain.Transaction
	Address     string
}

// RequestDeposit records a pending PI deposit for later admin verification.
func (s *LedgerService) RequestDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, network string) (*DepositRequest, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if !slices.Contains(config.DepositNetworks, network) {
		return nil, domain.ErrInvalidNetwork
	}

	row, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	tx, err := s.Create(ctx, &domain.Transaction{
		UserID:      userID,
		Type:        domain.TxTypeDeposit,
		Status:      domain.TxStatusPending,
		Amount:      amount,
		Currency:    domain.CurrencyPI,
		Description: fmt.Sprintf("Deposit %s PI via %s", amount.String(), network),
		Details:     domain.DepositDetails{Network: network},
	})
	if err != nil {
		return nil, err
	}

	s.events.LogDepositRequest(rowToUser(row), tx)
	return &DepositRequest{Transaction: tx, Address: s.addresses[network]}, nil
}
