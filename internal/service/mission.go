package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/metrics"
	"github.com/pinodelabs/pinode/internal/repository"
	"github.com/shopspring/decimal"
)

// ClaimCache is a fast "already claimed" lookup in front of the ledger.
type ClaimCache interface {
	IsClaimed(ctx context.Context, userID uuid.UUID, missionID string) (bool, error)
	MarkClaimed(ctx context.Context, userID uuid.UUID, missionID string) error
}

type MissionService struct {
	store    repository.Store
	cache    ClaimCache
	notifier Notifier
	now      clock
}

func NewMissionService(store repository.Store, cache ClaimCache, notifier Notifier) *MissionService {
	return &MissionService{store: store, cache: cache, notifier: orNopNotifier(notifier), now: time.Now}
}

// List joins the catalog with the user's records.
func (s *MissionService) List(ctx context.Context, userID uuid.UUID) ([]domain.MissionView, error) {
	rows, err := s.store.ListMissionRecords(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list mission records: %w", err)
	}
	byID := make(map[string]domain.MissionRecord, len(rows))
	for _, row := range rows {
		byID[row.MissionID] = rowToMissionRecord(row)
	}

	views := make([]domain.MissionView, 0, len(domain.Missions))
	for _, m := range domain.Missions {
		v := domain.MissionView{Mission: m}
		if rec, ok := byID[m.ID]; ok {
			v.Status = rec.Status
			v.ClaimedAt = rec.ClaimedAt
		}
		views = append(views, v)
	}
	return views, nil
}

// UpsertStatus creates or advances a mission record. Moving a claimed
// record back to completed fails with domain.ErrMissionStatusRegressed.
func (s *MissionService) UpsertStatus(ctx context.Context, userID uuid.UUID, missionID string, status domain.MissionStatus, reward decimal.Decimal, claimedAt *time.Time) (domain.MissionRecord, error) {
	if _, ok := domain.FindMission(missionID); !ok {
		return domain.MissionRecord{}, domain.ErrMissionNotFound
	}
	if status != domain.MissionStatusCompleted && status != domain.MissionStatusClaimed {
		return domain.MissionRecord{}, fmt.Errorf("unknown mission status %q", status)
	}

	var rec domain.MissionRecord
	err := s.store.InTx(ctx, func(q repository.Querier) error {
		var err error
		rec, err = upsertMissionRecord(ctx, q, userID, missionID, status, reward, claimedAt)
		return err
	})
	return rec, err
}

func upsertMissionRecord(ctx context.Context, q repository.Querier, userID uuid.UUID, missionID string, status domain.MissionStatus, reward decimal.Decimal, claimedAt *time.Time) (domain.MissionRecord, error) {
	existing, err := q.GetMissionRecord(ctx, repository.GetMissionRecordParams{UserID: userID, MissionID: missionID})
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return domain.MissionRecord{}, fmt.Errorf("get mission record: %w", err)
	case !domain.MissionStatus(existing.Status).CanAdvanceTo(status):
		return domain.MissionRecord{}, domain.ErrMissionStatusRegressed
	}

	row, err := q.UpsertMissionRecord(ctx, repository.UpsertMissionRecordParams{
		UserID:    userID,
		MissionID: missionID,
		Status:    string(status),
		Reward:    reward,
		ClaimedAt: timePtrToPgTimestamptz(claimedAt),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MissionRecord{}, domain.ErrMissionStatusRegressed
	}
	if err != nil {
		return domain.MissionRecord{}, fmt.Errorf("upsert mission record: %w", err)
	}
	return rowToMissionRecord(row), nil
}

// Complete marks a mission as done by the user. Claimed missions are left
// untouched.
func (s *MissionService) Complete(ctx context.Context, userID uuid.UUID, missionID string) (domain.MissionRecord, error) {
	mission, ok := domain.FindMission(missionID)
	if !ok {
		return domain.MissionRecord{}, domain.ErrMissionNotFound
	}

	row, err := s.store.GetMissionRecord(ctx, repository.GetMissionRecordParams{UserID: userID, MissionID: missionID})
	if err == nil && domain.MissionStatus(row.Status) == domain.MissionStatusClaimed {
		return rowToMissionRecord(row), nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return domain.MissionRecord{}, fmt.Errorf("get mission record: %w", err)
	}
	return s.UpsertStatus(ctx, userID, missionID, domain.MissionStatusCompleted, mission.Reward, nil)
}

// Claim credits a mission reward exactly once. A repeated claim returns
// the earlier outcome with AlreadyClaimed set and credits nothing.
func (s *MissionService) Claim(ctx context.Context, userID uuid.UUID, missionID string) (domain.MissionClaim, error) {
	mission, ok := domain.FindMission(missionID)
	if !ok {
		return domain.MissionClaim{}, domain.ErrMissionNotFound
	}
	key := domain.MissionIdempotencyKey(userID, missionID)

	if s.cache != nil {
		cached, err := s.cache.IsClaimed(ctx, userID, missionID)
		if err != nil {
			slog.Warn("claim cache lookup failed", "error", err, "user_id", userID, "mission_id", missionID)
		}
		if cached {
			metrics.Claims.WithLabelValues(string(domain.ClaimSourceMission), "duplicate").Inc()
			return s.priorClaim(ctx, s.store, mission, userID, key)
		}
	}

	var claim domain.MissionClaim
	err := s.store.InTx(ctx, func(q repository.Querier) error {
		user, err := lockUser(ctx, q, userID)
		if err != nil {
			return err
		}

		if _, err := q.GetTransactionByIdempotencyKey(ctx, key); err == nil {
			claim, err = s.priorClaim(ctx, q, mission, userID, key)
			return err
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("get claim transaction: %w", err)
		}

		now := s.now()
		if _, err := q.SetUserBalances(ctx, repository.SetUserBalancesParams{
			ID:             user.ID,
			MinedBalance:   user.MinedBalance.Add(mission.Reward),
			NetworkBalance: user.NetworkBalance,
		}); err != nil {
			return fmt.Errorf("credit mission reward: %w", err)
		}

		tx, err := createTransaction(ctx, q, &domain.Transaction{
			UserID:         user.ID,
			Type:           domain.TxTypeClaim,
			Status:         domain.TxStatusCompleted,
			Amount:         mission.Reward,
			Currency:       domain.CurrencyPiNode,
			Description:    "Mission reward: " + mission.Title,
			IdempotencyKey: &key,
			Details:        domain.ClaimDetails{Source: domain.ClaimSourceMission, MissionID: mission.ID},
		})
		if err != nil {
			return err
		}

		if _, err := upsertMissionRecord(ctx, q, userID, missionID, domain.MissionStatusClaimed, mission.Reward, &now); err != nil {
			return err
		}

		claim = domain.MissionClaim{
			MissionID:   mission.ID,
			Reward:      mission.Reward,
			ClaimedAt:   now,
			Transaction: tx,
		}
		return nil
	})
	if errors.Is(err, domain.ErrIdempotencyConflict) {
		return s.priorClaim(ctx, s.store, mission, userID, key)
	}
	if err != nil {
		return domain.MissionClaim{}, err
	}

	if err := s.markCached(ctx, userID, missionID); err != nil {
		slog.Warn("claim cache update failed", "error", err, "user_id", userID, "mission_id", missionID)
	}
	if claim.AlreadyClaimed {
		metrics.Claims.WithLabelValues(string(domain.ClaimSourceMission), "duplicate").Inc()
		return claim, nil
	}

	metrics.Claims.WithLabelValues(string(domain.ClaimSourceMission), "credited").Inc()
	metrics.ClaimedAmount.WithLabelValues(string(domain.ClaimSourceMission)).Add(mission.Reward.InexactFloat64())
	s.notifier.Notify(domain.Notification{
		Kind:     domain.NotifyMissionReward,
		UserID:   userID,
		Amount:   mission.Reward,
		Currency: domain.CurrencyPiNode,
		Subject:  mission.Title,
	})
	return claim, nil
}

func (s *MissionService) markCached(ctx context.Context, userID uuid.UUID, missionID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.MarkClaimed(ctx, userID, missionID)
}

// priorClaim rebuilds the outcome of an earlier claim from the ledger,
// falling back to the mission record.
func (s *MissionService) priorClaim(ctx context.Context, q repository.Querier, mission domain.Mission, userID uuid.UUID, key string) (domain.MissionClaim, error) {
	claim := domain.MissionClaim{MissionID: mission.ID, Reward: mission.Reward, AlreadyClaimed: true}

	row, err := q.GetTransactionByIdempotencyKey(ctx, key)
	switch {
	case err == nil:
		tx, err := rowToTransaction(row)
		if err != nil {
			return domain.MissionClaim{}, err
		}
		claim.Reward = tx.Amount
		claim.ClaimedAt = tx.CreatedAt
		claim.Transaction = tx
		return claim, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return domain.MissionClaim{}, fmt.Errorf("get claim transaction: %w", err)
	}

	rec, err := q.GetMissionRecord(ctx, repository.GetMissionRecordParams{UserID: userID, MissionID: mission.ID})
	if err == nil && rec.ClaimedAt.Valid {
		claim.ClaimedAt = rec.ClaimedAt.Time
	}
	return claim, nil
}

