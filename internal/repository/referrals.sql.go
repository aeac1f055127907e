package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const referralColumns = `id, referrer_id, referred_user_id, referred_telegram_id, status, bonus_earned,
       created_at, activated_at, claimed_at`

func scanReferral(row pgx.Row) (Referral, error) {
	var i Referral
	err := row.Scan(
		&i.ID,
		&i.ReferrerID,
		&i.ReferredUserID,
		&i.ReferredTelegramID,
		&i.Status,
		&i.BonusEarned,
		&i.CreatedAt,
		&i.ActivatedAt,
		&i.ClaimedAt,
	)
	return i, err
}

func collectReferrals(rows pgx.Rows, err error) ([]Referral, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Referral
	for rows.Next() {
		i, err := scanReferral(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createReferral = `-- name: CreateReferral :one
INSERT INTO referrals (id, referrer_id, referred_user_id, referred_telegram_id)
VALUES ($1, $2, $3, $4)
RETURNING ` + referralColumns

type CreateReferralParams struct {
	ID                 uuid.UUID
	ReferrerID         uuid.UUID
	ReferredUserID     *uuid.UUID
	ReferredTelegramID *int64
}

func (q *Queries) CreateReferral(ctx context.Context, arg CreateReferralParams) (Referral, error) {
	row := q.db.QueryRow(ctx, createReferral, arg.ID, arg.ReferrerID, arg.ReferredUserID, arg.ReferredTelegramID)
	r, err := scanReferral(row)
	return r, mapError(err)
}

const listReferralsByReferrer = `-- name: ListReferralsByReferrer :many
SELECT ` + referralColumns + ` FROM referrals
WHERE referrer_id = $1
ORDER BY created_at DESC`

func (q *Queries) ListReferralsByReferrer(ctx context.Context, referrerID uuid.UUID) ([]Referral, error) {
	return collectReferrals(q.db.Query(ctx, listReferralsByReferrer, referrerID))
}

const listClaimableReferralsForUpdate = `-- name: ListClaimableReferralsForUpdate :many
SELECT ` + referralColumns + ` FROM referrals
WHERE referrer_id = $1 AND status = 'active' AND bonus_earned = 0
ORDER BY created_at
FOR UPDATE`

func (q *Queries) ListClaimableReferralsForUpdate(ctx context.Context, referrerID uuid.UUID) ([]Referral, error) {
	return collectReferrals(q.db.Query(ctx, listClaimableReferralsForUpdate, referrerID))
}

const stampReferralBonus = `-- name: StampReferralBonus :execrows
UPDATE referrals
SET bonus_earned = $2, claimed_at = NOW()
WHERE id = ANY($1::uuid[]) AND status = 'active' AND bonus_earned = 0`

type StampReferralBonusParams struct {
	IDs   []uuid.UUID
	Bonus decimal.Decimal
}

func (q *Queries) StampReferralBonus(ctx context.Context, arg StampReferralBonusParams) (int64, error) {
	result, err := q.db.Exec(ctx, stampReferralBonus, arg.IDs, arg.Bonus)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const activateReferrals = `-- name: ActivateReferrals :execrows
UPDATE referrals
SET status = 'active', activated_at = NOW()
WHERE referred_user_id = $1 AND status = 'pending'`

func (q *Queries) ActivateReferrals(ctx context.Context, referredUserID uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, activateReferrals, referredUserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const countReferrals = `-- name: CountReferrals :one
SELECT COUNT(*) FROM referrals`

func (q *Queries) CountReferrals(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countReferrals).Scan(&n)
	return n, err
}
