package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const missionRecordColumns = `user_id, mission_id, status, reward, claimed_at, updated_at`

func scanMissionRecord(row pgx.Row) (MissionRecord, error) {
	var i MissionRecord
	err := row.Scan(&i.UserID, &i.MissionID, &i.Status, &i.Reward, &i.ClaimedAt, &i.UpdatedAt)
	return i, err
}

const getMissionRecord = `-- name: GetMissionRecord :one
SELECT ` + missionRecordColumns + ` FROM mission_records WHERE user_id = $1 AND mission_id = $2`

type GetMissionRecordParams struct {
	UserID    uuid.UUID
	MissionID string
}

func (q *Queries) GetMissionRecord(ctx context.Context, arg GetMissionRecordParams) (MissionRecord, error) {
	return scanMissionRecord(q.db.QueryRow(ctx, getMissionRecord, arg.UserID, arg.MissionID))
}

const listMissionRecords = `-- name: ListMissionRecords :many
SELECT ` + missionRecordColumns + ` FROM mission_records WHERE user_id = $1 ORDER BY mission_id`

func (q *Queries) ListMissionRecords(ctx context.Context, userID uuid.UUID) ([]MissionRecord, error) {
	rows, err := q.db.Query(ctx, listMissionRecords, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MissionRecord
	for rows.Next() {
		i, err := scanMissionRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// A claimed record is only ever rewritten as claimed; the WHERE clause turns
// a regression into pgx.ErrNoRows.
const upsertMissionRecord = `-- name: UpsertMissionRecord :one
INSERT INTO mission_records (user_id, mission_id, status, reward, claimed_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, mission_id) DO UPDATE
SET status = EXCLUDED.status,
    reward = EXCLUDED.reward,
    claimed_at = COALESCE(mission_records.claimed_at, EXCLUDED.claimed_at),
    updated_at = NOW()
WHERE mission_records.status <> 'claimed' OR EXCLUDED.status = 'claimed'
RETURNING ` + missionRecordColumns

type UpsertMissionRecordParams struct {
	UserID    uuid.UUID
	MissionID string
	Status    string
	Reward    decimal.Decimal
	ClaimedAt pgtype.Timestamptz
}

func (q *Queries) UpsertMissionRecord(ctx context.Context, arg UpsertMissionRecordParams) (MissionRecord, error) {
	return scanMissionRecord(q.db.QueryRow(ctx, upsertMissionRecord,
		arg.UserID, arg.MissionID, arg.Status, arg.Reward, arg.ClaimedAt))
}
