package service

import (
	"context"
	"fmt"

	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/repository"
	"github.com/shopspring/decimal"
)

type PlatformStats struct {
	Users               int64
	Referrals           int64
	PendingTransactions int64
	TotalExchanged      decimal.Decimal
	TotalClaimed        decimal.Decimal
}

type StatsService struct {
	store repository.Querier
}

func NewStatsService(store repository.Querier) *StatsService {
	return &StatsService{store: store}
}

func (s *StatsService) Platform(ctx context.Context) (PlatformStats, error) {
	var (
		st  PlatformStats
		err error
	)
	if st.Users, err = s.store.CountUsers(ctx); err != nil {
		return st, fmt.Errorf("count users: %w", err)
	}
	if st.Referrals, err = s.store.CountReferrals(ctx); err != nil {
		return st, fmt.Errorf("count referrals: %w", err)
	}
	if st.PendingTransactions, err = s.store.CountPendingTransactions(ctx); err != nil {
		return st, fmt.Errorf("count pending: %w", err)
	}
	if st.TotalExchanged, err = s.store.SumCompletedTransactions(ctx, string(domain.TxTypeExchange)); err != nil {
		return st, fmt.Errorf("sum exchanged: %w", err)
	}
	if st.TotalClaimed, err = s.store.SumCompletedTransactions(ctx, string(domain.TxTypeClaim)); err != nil {
		return st, fmt.Errorf("sum claimed: %w", err)
	}
	return st, nil
}
