package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pinodelabs/pinode/internal/domain"
)

const uniqueViolation = "23505"

var constraintErrors = map[string]error{
	"users_email_key":                  domain.ErrEmailTaken,
	"users_referral_code_key":          domain.ErrReferralCodeTaken,
	"users_telegram_id_key":            domain.ErrTelegramIDTaken,
	"uq_referrals_user":                domain.ErrReferralExists,
	"uq_referrals_telegram":            domain.ErrReferralExists,
	"transactions_idempotency_key_key": domain.ErrIdempotencyConflict,
}

// mapError turns unique violations into domain conflict errors and passes
// everything else through.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	if mapped, ok := constraintErrors[pgErr.ConstraintName]; ok {
		return mapped
	}
	return err
}
