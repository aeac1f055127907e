package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, user_id, type, amount, amount_received, currency, status, description,
       network, address, details, idempotency_key, created_at`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Type,
		&i.Amount,
		&i.AmountReceived,
		&i.Currency,
		&i.Status,
		&i.Description,
		&i.Network,
		&i.Address,
		&i.Details,
		&i.IdempotencyKey,
		&i.CreatedAt,
	)
	return i, err
}

func collectTransactions(rows pgx.Rows, err error) ([]Transaction, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		i, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (id, user_id, type, amount, amount_received, currency, status, description,
                          network, address, details, idempotency_key)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + transactionColumns

type CreateTransactionParams struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Type           string
	Amount         decimal.Decimal
	AmountReceived decimal.NullDecimal
	Currency       string
	Status         string
	Description    string
	Network        string
	Address        string
	Details        []byte
	IdempotencyKey *string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRow(ctx, createTransaction,
		arg.ID,
		arg.UserID,
		arg.Type,
		arg.Amount,
		arg.AmountReceived,
		arg.Currency,
		arg.Status,
		arg.Description,
		arg.Network,
		arg.Address,
		arg.Details,
		arg.IdempotencyKey,
	)
	t, err := scanTransaction(row)
	return t, mapError(err)
}

const getTransaction = `-- name: GetTransaction :one
SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

func (q *Queries) GetTransaction(ctx context.Context, id uuid.UUID) (Transaction, error) {
	return scanTransaction(q.db.QueryRow(ctx, getTransaction, id))
}

const getTransactionForUpdate = `-- name: GetTransactionForUpdate :one
SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`

func (q *Queries) GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (Transaction, error) {
	return scanTransaction(q.db.QueryRow(ctx, getTransactionForUpdate, id))
}

const getTransactionByIdempotencyKey = `-- name: GetTransactionByIdempotencyKey :one
SELECT ` + transactionColumns + ` FROM transactions WHERE idempotency_key = $1`

func (q *Queries) GetTransactionByIdempotencyKey(ctx context.Context, key string) (Transaction, error) {
	return scanTransaction(q.db.QueryRow(ctx, getTransactionByIdempotencyKey, key))
}

const setTransactionStatus = `-- name: SetTransactionStatus :execrows
UPDATE transactions SET status = $3 WHERE id = $1 AND status = $2`

type SetTransactionStatusParams struct {
	ID   uuid.UUID
	From string
	To   string
}

// SetTransactionStatus is a compare-and-set on status; it reports how many
// rows moved, zero when the stored status was not From.
func (q *Queries) SetTransactionStatus(ctx context.Context, arg SetTransactionStatusParams) (int64, error) {
	result, err := q.db.Exec(ctx, setTransactionStatus, arg.ID, arg.From, arg.To)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listPendingTransactions = `-- name: ListPendingTransactions :many
SELECT ` + transactionColumns + ` FROM transactions
WHERE status = 'pending'
ORDER BY created_at DESC, id`

func (q *Queries) ListPendingTransactions(ctx context.Context) ([]Transaction, error) {
	return collectTransactions(q.db.Query(ctx, listPendingTransactions))
}

const listUserTransactions = `-- name: ListUserTransactions :many
SELECT ` + transactionColumns + ` FROM transactions
WHERE user_id = $1
ORDER BY created_at DESC, id
LIMIT $2`

type ListUserTransactionsParams struct {
	UserID uuid.UUID
	Limit  int32
}

func (q *Queries) ListUserTransactions(ctx context.Context, arg ListUserTransactionsParams) ([]Transaction, error) {
	return collectTransactions(q.db.Query(ctx, listUserTransactions, arg.UserID, arg.Limit))
}

const listTransactions = `-- name: ListTransactions :many
SELECT ` + transactionColumns + ` FROM transactions
ORDER BY created_at DESC, id
LIMIT $1`

func (q *Queries) ListTransactions(ctx context.Context, limit int32) ([]Transaction, error) {
	return collectTransactions(q.db.Query(ctx, listTransactions, limit))
}

const countRecentPendingWithdrawals = `-- name: CountRecentPendingWithdrawals :one
SELECT COUNT(*) FROM transactions
WHERE user_id = $1 AND type = 'withdraw' AND status = 'pending' AND amount = $2
  AND created_at >= NOW() - make_interval(secs => $3::float8)`

type CountRecentPendingWithdrawalsParams struct {
	UserID uuid.UUID
	Amount decimal.Decimal
	// Window is measured back from the database clock.
	Window time.Duration
}

func (q *Queries) CountRecentPendingWithdrawals(ctx context.Context, arg CountRecentPendingWithdrawalsParams) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countRecentPendingWithdrawals, arg.UserID, arg.Amount, arg.Window.Seconds()).Scan(&n)
	return n, err
}

const countPendingTransactions = `-- name: CountPendingTransactions :one
SELECT COUNT(*) FROM transactions WHERE status = 'pending'`

func (q *Queries) CountPendingTransactions(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countPendingTransactions).Scan(&n)
	return n, err
}

const sumCompletedTransactions = `-- name: SumCompletedTransactions :one
SELECT COALESCE(SUM(amount), 0)::numeric FROM transactions
WHERE type = $1 AND status = 'completed'`

func (q *Queries) SumCompletedTransactions(ctx context.Context, txType string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := q.db.QueryRow(ctx, sumCompletedTransactions, txType).Scan(&sum)
	return sum, err
}
