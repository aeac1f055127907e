package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Querier is the full query surface, implemented by *Queries.
type Querier interface {
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	GetUserForUpdate(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByReferralCode(ctx context.Context, code string) (User, error)
	SetUserBalances(ctx context.Context, arg SetUserBalancesParams) (User, error)
	LinkTelegram(ctx context.Context, arg LinkTelegramParams) (User, error)
	UnlinkTelegram(ctx context.Context, id uuid.UUID) error
	CountUsers(ctx context.Context) (int64, error)
	CountUserActivity(ctx context.Context, id uuid.UUID) (int64, error)

	CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (Transaction, error)
	GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (Transaction, error)
	GetTransactionByIdempotencyKey(ctx context.Context, key string) (Transaction, error)
	SetTransactionStatus(ctx context.Context, arg SetTransactionStatusParams) (int64, error)
	ListPendingTransactions(ctx context.Context) ([]Transaction, error)
	ListUserTransactions(ctx context.Context, arg ListUserTransactionsParams) ([]Transaction, error)
	ListTransactions(ctx context.Context, limit int32) ([]Transaction, error)
	CountRecentPendingWithdrawals(ctx context.Context, arg CountRecentPendingWithdrawalsParams) (int64, error)
	CountPendingTransactions(ctx context.Context) (int64, error)
	SumCompletedTransactions(ctx context.Context, txType string) (decimal.Decimal, error)

	CreateReferral(ctx context.Context, arg CreateReferralParams) (Referral, error)
	ListReferralsByReferrer(ctx context.Context, referrerID uuid.UUID) ([]Referral, error)
	ListClaimableReferralsForUpdate(ctx context.Context, referrerID uuid.UUID) ([]Referral, error)
	StampReferralBonus(ctx context.Context, arg StampReferralBonusParams) (int64, error)
	ActivateReferrals(ctx context.Context, referredUserID uuid.UUID) (int64, error)
	CountReferrals(ctx context.Context) (int64, error)

	GetMissionRecord(ctx context.Context, arg GetMissionRecordParams) (MissionRecord, error)
	ListMissionRecords(ctx context.Context, userID uuid.UUID) ([]MissionRecord, error)
	UpsertMissionRecord(ctx context.Context, arg UpsertMissionRecordParams) (MissionRecord, error)

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, arg SetSettingParams) error
}

var _ Querier = (*Queries)(nil)

// Store adds transactional execution to Querier.
type Store interface {
	Querier
	// InTx runs fn inside one database transaction. The transaction commits
	// when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(q Querier) error) error
}

type PgStore struct {
	*Queries
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{Queries: New(pool), pool: pool}
}

func (s *PgStore) InTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(s.Queries.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
