package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pinodelabs/pinode/internal/config"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/metrics"
	"github.com/pinodelabs/pinode/internal/repository"
	"github.com/shopspring/decimal"
)

const (
	referralCodeLength = 8
	// Excludes 0, O, 1, I and L.
	referralCodeCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

func generateReferralCode() (string, error) {
	code := make([]byte, referralCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referralCodeCharset))))
		if err != nil {
			return "", fmt.Errorf("random int: %w", err)
		}
		code[i] = referralCodeCharset[n.Int64()]
	}
	return string(code), nil
}

type ReferralService struct {
	store    repository.Store
	notifier Notifier
}

func NewReferralService(store repository.Store, notifier Notifier) *ReferralService {
	return &ReferralService{store: store, notifier: orNopNotifier(notifier)}
}

// computeStats derives referral stats; pending bonus is the reward owed on
// active relationships that have not been stamped yet.
func computeStats(refs []domain.Referral) domain.ReferralStats {
	stats := domain.ReferralStats{
		Total:            len(refs),
		TotalBonusEarned: decimal.Zero,
		PendingBonus:     decimal.Zero,
	}
	claimable := 0
	for i := range refs {
		r := &refs[i]
		if r.Status == domain.ReferralStatusActive {
			stats.Active++
		}
		if r.Claimable() {
			claimable++
		}
		stats.TotalBonusEarned = stats.TotalBonusEarned.Add(r.BonusEarned)
	}
	stats.PendingBonus = config.ReferralRewardDecimal.Mul(decimal.NewFromInt(int64(claimable)))
	return stats
}

func (s *ReferralService) List(ctx context.Context, referrerID uuid.UUID) ([]domain.Referral, error) {
	rows, err := s.store.ListReferralsByReferrer(ctx, referrerID)
	if err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	refs := make([]domain.Referral, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, rowToReferral(row))
	}
	return refs, nil
}

func (s *ReferralService) Stats(ctx context.Context, referrerID uuid.UUID) (domain.ReferralStats, error) {
	refs, err := s.List(ctx, referrerID)
	if err != nil {
		return domain.ReferralStats{}, err
	}
	return computeStats(refs), nil
}

// ClaimBonus credits the pending referral bonus. The user row lock
// serializes concurrent claims, so a duplicate call sees nothing left.
func (s *ReferralService) ClaimBonus(ctx context.Context, userID uuid.UUID) (domain.ClaimResult, error) {
	var result domain.ClaimResult

	err := s.store.InTx(ctx, func(q repository.Querier) error {
		user, err := lockUser(ctx, q, userID)
		if err != nil {
			return err
		}

		claimable, err := q.ListClaimableReferralsForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("list claimable referrals: %w", err)
		}
		if len(claimable) == 0 {
			result = domain.ClaimResult{Nothing: true, Amount: decimal.Zero}
			return nil
		}

		ids := make([]uuid.UUID, len(claimable))
		for i, r := range claimable {
			ids[i] = r.ID
		}
		stamped, err := q.StampReferralBonus(ctx, repository.StampReferralBonusParams{
			IDs:   ids,
			Bonus: config.ReferralRewardDecimal,
		})
		if err != nil {
			return fmt.Errorf("stamp referral bonus: %w", err)
		}
		if stamped != int64(len(ids)) {
			return fmt.Errorf("stamped %d of %d referrals", stamped, len(ids))
		}

		amount := config.ReferralRewardDecimal.Mul(decimal.NewFromInt(stamped))
		if _, err := q.SetUserBalances(ctx, repository.SetUserBalancesParams{
			ID:             user.ID,
			MinedBalance:   user.MinedBalance.Add(amount),
			NetworkBalance: user.NetworkBalance,
		}); err != nil {
			return fmt.Errorf("credit referral bonus: %w", err)
		}

		tx, err := createTransaction(ctx, q, &domain.Transaction{
			UserID:      user.ID,
			Type:        domain.TxTypeClaim,
			Status:      domain.TxStatusCompleted,
			Amount:      amount,
			Currency:    domain.CurrencyPiNode,
			Description: fmt.Sprintf("Referral bonus for %d active referrals", stamped),
			Details:     domain.ClaimDetails{Source: domain.ClaimSourceReferral, Referrals: int(stamped)},
		})
		if err != nil {
			return err
		}

		result = domain.ClaimResult{Amount: amount, Referrals: int(stamped), Transaction: tx}
		return nil
	})
	if err != nil {
		return domain.ClaimResult{}, err
	}

	if result.Nothing {
		metrics.Claims.WithLabelValues(string(domain.ClaimSourceReferral), "nothing").Inc()
		return result, nil
	}

	metrics.Claims.WithLabelValues(string(domain.ClaimSourceReferral), "credited").Inc()
	metrics.ClaimedAmount.WithLabelValues(string(domain.ClaimSourceReferral)).Add(result.Amount.InexactFloat64())
	s.notifier.Notify(domain.Notification{
		Kind:     domain.NotifyReferralBonus,
		UserID:   userID,
		Amount:   result.Amount,
		Currency: domain.CurrencyPiNode,
	})
	return result, nil
}

// Activate promotes the pending relationships of a referred user. This is
// the external qualification signal; it reports how many were promoted.
func (s *ReferralService) Activate(ctx context.Context, referredUserID uuid.UUID) (int64, error) {
	if _, err := s.store.GetUserByID(ctx, referredUserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		return 0, fmt.Errorf("get user: %w", err)
	}

	n, err := s.store.ActivateReferrals(ctx, referredUserID)
	if err != nil {
		return 0, fmt.Errorf("activate referrals: %w", err)
	}
	if n == 0 {
		return 0, domain.ErrReferralNotFound
	}
	slog.Info("referrals activated", "referred_user_id", referredUserID, "count", n)
	return n, nil
}

// resolveReferrer finds the owner of code. Unknown codes are ignored.
func resolveReferrer(ctx context.Context, q repository.Querier, code string) (*repository.User, error) {
	if code == "" {
		return nil, nil
	}
	referrer, err := q.GetUserByReferralCode(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		slog.Info("unknown referral code ignored", "code", code)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get referrer: %w", err)
	}
	return &referrer, nil
}

// attributeReferral records the pending relationship between referrer and
// a freshly created user.
func attributeReferral(ctx context.Context, q repository.Querier, referrer *repository.User, referred repository.User) error {
	if referrer == nil || referrer.ID == referred.ID {
		return nil
	}
	id := referred.ID
	_, err := q.CreateReferral(ctx, repository.CreateReferralParams{
		ID:                 uuid.New(),
		ReferrerID:         referrer.ID,
		ReferredUserID:     &id,
		ReferredTelegramID: referred.TelegramID,
	})
	if err != nil {
		return fmt.Errorf("create referral: %w", err)
	}
	return nil
}
