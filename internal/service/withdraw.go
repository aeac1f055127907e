package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pinodelabs/pinode/internal/config"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/repository"
	"github.com/shopspring/decimal"
)

type WithdrawRequest struct {
	UserID  uuid.UUID
	Amount  decimal.Decimal
	Address string
	Network string
}

// WithdrawService records withdrawal requests. Balances move only when an
// admin approves the entry.
type WithdrawService struct {
	store    repository.Store
	settings *SettingsService
	events   EventLog
}

func NewWithdrawService(store repository.Store, settings *SettingsService, events EventLog) *WithdrawService {
	return &WithdrawService{store: store, settings: settings, events: orNopEventLog(events)}
}

const defaultWithdrawNetwork = "PI"

func (s *WithdrawService) RequestWithdraw(ctx context.Context, req WithdrawRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	minimum, err := s.settings.MinWithdraw(ctx)
	if err != nil {
		return nil, err
	}
	if req.Amount.LessThan(minimum) {
		return nil, domain.ErrBelowMinimumWithdraw
	}
	address := strings.TrimSpace(req.Address)
	if len(address) < config.MinAddressLength {
		return nil, domain.ErrInvalidAddress
	}
	network := strings.TrimSpace(req.Network)
	if network == "" {
		network = defaultWithdrawNetwork
	}

	var (
		tx   *domain.Transaction
		user repository.User
	)
	err = s.store.InTx(ctx, func(q repository.Querier) error {
		var err error
		user, err = lockUser(ctx, q, req.UserID)
		if err != nil {
			return err
		}
		if req.Amount.GreaterThan(user.NetworkBalance) {
			return domain.ErrInsufficientBalance
		}

		dupes, err := q.CountRecentPendingWithdrawals(ctx, repository.CountRecentPendingWithdrawalsParams{
			UserID: user.ID,
			Amount: req.Amount,
			Window: config.WithdrawDuplicateWindow,
		})
		if err != nil {
			return fmt.Errorf("check duplicate withdrawals: %w", err)
		}
		if dupes > 0 {
			return domain.ErrDuplicateWithdraw
		}

		tx, err = createTransaction(ctx, q, &domain.Transaction{
			UserID:      user.ID,
			Type:        domain.TxTypeWithdraw,
			Status:      domain.TxStatusPending,
			Amount:      req.Amount,
			Currency:    domain.CurrencyPI,
			Description: fmt.Sprintf("Withdraw %s PI to %s", req.Amount.String(), address),
			Details:     domain.WithdrawDetails{Network: network, Address: address},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.events.LogWithdrawRequest(rowToUser(user), tx)
	return tx, nil
}
