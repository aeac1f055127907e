package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/service"
	"github.com/shopspring/decimal"
)

type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

type UserService interface {
	Register(ctx context.Context, req service.RegisterRequest) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type LedgerService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Transaction, error)
	ListPending(ctx context.Context) ([]domain.Transaction, error)
	ListAll(ctx context.Context, limit int) ([]domain.Transaction, error)
	RequestDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, network string) (*service.DepositRequest, error)
}

type ExchangeService interface {
	Exchange(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error)
}

type WithdrawService interface {
	RequestWithdraw(ctx context.Context, req service.WithdrawRequest) (*domain.Transaction, error)
}

type ReferralService interface {
	List(ctx context.Context, referrerID uuid.UUID) ([]domain.Referral, error)
	Stats(ctx context.Context, referrerID uuid.UUID) (domain.ReferralStats, error)
	ClaimBonus(ctx context.Context, userID uuid.UUID) (domain.ClaimResult, error)
	Activate(ctx context.Context, referredUserID uuid.UUID) (int64, error)
}

type MissionService interface {
	List(ctx context.Context, userID uuid.UUID) ([]domain.MissionView, error)
	Complete(ctx context.Context, userID uuid.UUID, missionID string) (domain.MissionRecord, error)
	Claim(ctx context.Context, userID uuid.UUID, missionID string) (domain.MissionClaim, error)
}

type ApprovalService interface {
	Approve(ctx context.Context, txID uuid.UUID) (*domain.Transaction, error)
	ApproveDeposit(ctx context.Context, req service.ApprovalRequest) (*domain.Transaction, error)
	ApproveWithdraw(ctx context.Context, req service.ApprovalRequest) (*domain.Transaction, error)
	Reject(ctx context.Context, txID uuid.UUID) (*domain.Transaction, error)
	ApproveAll(ctx context.Context, ids ...uuid.UUID) (service.BulkResult, error)
	RejectAll(ctx context.Context, ids ...uuid.UUID) (service.BulkResult, error)
}

type SettingsService interface {
	MinWithdraw(ctx context.Context) (decimal.Decimal, error)
	SetMinWithdraw(ctx context.Context, v decimal.Decimal) (decimal.Decimal, error)
}

type StatsService interface {
	Platform(ctx context.Context) (service.PlatformStats, error)
}
