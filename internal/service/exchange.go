package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pinodelabs/pinode/internal/config"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/repository"
	"github.com/shopspring/decimal"
)

type ExchangeService struct {
	store    repository.Store
	notifier Notifier
}

func NewExchangeService(store repository.Store, notifier Notifier) *ExchangeService {
	return &ExchangeService{store: store, notifier: orNopNotifier(notifier)}
}

// validateExchange applies the exchange checks in order, the first failure wins.
func validateExchange(amount, mined decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if !amount.IsInteger() {
		return domain.ErrNotWholeAmount
	}
	if amount.LessThan(config.MinExchangeDecimal) {
		return domain.ErrBelowMinimumExchange
	}
	if amount.GreaterThan(mined) {
		return domain.ErrInsufficientBalance
	}
	return nil
}

// Exchange converts PiNode into PI at the fixed rate and records a
// completed exchange entry with both legs.
func (s *ExchangeService) Exchange(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	// Amount-only checks here, the balance check runs under the row lock.
	if err := validateExchange(amount, amount); err != nil {
		return nil, err
	}

	var tx *domain.Transaction
	err := s.store.InTx(ctx, func(q repository.Querier) error {
		user, err := lockUser(ctx, q, userID)
		if err != nil {
			return err
		}
		if err := validateExchange(amount, user.MinedBalance); err != nil {
			return err
		}

		received := amount.Div(config.ConversionRateDecimal)
		if _, err := q.SetUserBalances(ctx, repository.SetUserBalancesParams{
			ID:             user.ID,
			MinedBalance:   user.MinedBalance.Sub(amount),
			NetworkBalance: user.NetworkBalance.Add(received),
		}); err != nil {
			return fmt.Errorf("update balances: %w", err)
		}

		tx, err = createTransaction(ctx, q, &domain.Transaction{
			UserID:      user.ID,
			Type:        domain.TxTypeExchange,
			Status:      domain.TxStatusCompleted,
			Amount:      amount,
			Currency:    domain.CurrencyPiNode,
			Description: fmt.Sprintf("Exchanged %s PiNode for %s PI", amount.String(), received.String()),
			Details:     domain.ExchangeDetails{Received: received, ReceivedCurrency: domain.CurrencyPI},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(domain.Notification{
		Kind:     domain.NotifyExchange,
		UserID:   userID,
		Amount:   amount,
		Currency: domain.CurrencyPiNode,
		Received: *tx.AmountReceived(),
	})
	return tx, nil
}
