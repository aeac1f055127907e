package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const userColumns = `id, email, username, telegram_id, telegram_username, mined_balance, network_balance,
       referral_code, referred_by_id, is_admin, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.Username,
		&i.TelegramID,
		&i.TelegramUsername,
		&i.MinedBalance,
		&i.NetworkBalance,
		&i.ReferralCode,
		&i.ReferredByID,
		&i.IsAdmin,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (id, email, username, telegram_id, telegram_username, referral_code, referred_by_id, is_admin)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + userColumns

type CreateUserParams struct {
	ID               uuid.UUID
	Email            *string
	Username         string
	TelegramID       *int64
	TelegramUsername string
	ReferralCode     string
	ReferredByID     *uuid.UUID
	IsAdmin          bool
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser,
		arg.ID,
		arg.Email,
		arg.Username,
		arg.TelegramID,
		arg.TelegramUsername,
		arg.ReferralCode,
		arg.ReferredByID,
		arg.IsAdmin,
	)
	u, err := scanUser(row)
	return u, mapError(err)
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByID, id))
}

const getUserForUpdate = `-- name: GetUserForUpdate :one
SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`

func (q *Queries) GetUserForUpdate(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserForUpdate, id))
}

const getUserByTelegramID = `-- name: GetUserByTelegramID :one
SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

func (q *Queries) GetUserByTelegramID(ctx context.Context, telegramID int64) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByTelegramID, telegramID))
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByEmail, email))
}

const getUserByReferralCode = `-- name: GetUserByReferralCode :one
SELECT ` + userColumns + ` FROM users WHERE referral_code = $1`

func (q *Queries) GetUserByReferralCode(ctx context.Context, code string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByReferralCode, code))
}

const setUserBalances = `-- name: SetUserBalances :one
UPDATE users
SET mined_balance = $2, network_balance = $3, updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns

type SetUserBalancesParams struct {
	ID             uuid.UUID
	MinedBalance   decimal.Decimal
	NetworkBalance decimal.Decimal
}

// SetUserBalances writes absolute balances. Callers compute them from a
// row read with GetUserForUpdate in the same transaction.
func (q *Queries) SetUserBalances(ctx context.Context, arg SetUserBalancesParams) (User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, setUserBalances, arg.ID, arg.MinedBalance, arg.NetworkBalance))
	return u, mapError(err)
}

const linkTelegram = `-- name: LinkTelegram :one
UPDATE users
SET telegram_id = $2, telegram_username = $3, is_admin = is_admin OR $4, updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns

type LinkTelegramParams struct {
	ID               uuid.UUID
	TelegramID       int64
	TelegramUsername string
	// IsAdmin grants admin rights; it never revokes them.
	IsAdmin bool
}

func (q *Queries) LinkTelegram(ctx context.Context, arg LinkTelegramParams) (User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, linkTelegram, arg.ID, arg.TelegramID, arg.TelegramUsername, arg.IsAdmin))
	return u, mapError(err)
}

const countUsers = `-- name: CountUsers :one
SELECT COUNT(*) FROM users`

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countUsers).Scan(&n)
	return n, err
}

const unlinkTelegram = `-- name: UnlinkTelegram :exec
UPDATE users SET telegram_id = NULL, updated_at = NOW() WHERE id = $1`

func (q *Queries) UnlinkTelegram(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, unlinkTelegram, id)
	return err
}

const countUserActivity = `-- name: CountUserActivity :one
SELECT (SELECT COUNT(*) FROM transactions WHERE user_id = $1)
     + (SELECT COUNT(*) FROM referrals WHERE referrer_id = $1)`

// CountUserActivity counts the ledger entries and referrals a user owns.
func (q *Queries) CountUserActivity(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countUserActivity, id).Scan(&n)
	return n, err
}
