package domain

import "errors"

// Kind classifies an error for the caller.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindPrecondition
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newErr(k Kind, msg string) *Error { return &Error{Kind: k, Msg: msg} }

var (
	ErrInvalidAmount        = newErr(KindValidation, "amount must be a positive number")
	ErrNotWholeAmount       = newErr(KindValidation, "amount must be a whole number")
	ErrBelowMinimumExchange = newErr(KindValidation, "amount is below the minimum exchange")
	ErrBelowMinimumWithdraw = newErr(KindValidation, "amount is below the minimum withdrawal")
	ErrInvalidAddress       = newErr(KindValidation, "invalid withdrawal address")
	ErrInvalidNetwork       = newErr(KindValidation, "unsupported network")
	ErrInvalidEmail         = newErr(KindValidation, "invalid email")
	ErrUnsupportedCurrency  = newErr(KindValidation, "unsupported currency")

	ErrInsufficientBalance    = newErr(KindPrecondition, "insufficient balance")
	ErrDuplicateWithdraw      = newErr(KindPrecondition, "an identical withdrawal was requested less than a minute ago")
	ErrTransactionNotPending  = newErr(KindPrecondition, "transaction is no longer pending")
	ErrTransactionMismatch    = newErr(KindPrecondition, "approval does not match the stored transaction")
	ErrUnsupportedTxType      = newErr(KindPrecondition, "transaction type cannot be approved")
	ErrMissionStatusRegressed = newErr(KindPrecondition, "mission status cannot move backwards")
	ErrTelegramAlreadyLinked  = newErr(KindPrecondition, "telegram account is already linked to another user")
	ErrTelegramAccountInUse   = newErr(KindPrecondition, "telegram account already has referrals or transactions")
	ErrNotAdmin               = newErr(KindPrecondition, "admin rights required")

	ErrUserNotFound        = newErr(KindNotFound, "user not found")
	ErrTransactionNotFound = newErr(KindNotFound, "transaction not found")
	ErrMissionNotFound     = newErr(KindNotFound, "mission not found")
	ErrReferralNotFound    = newErr(KindNotFound, "referral not found")

	ErrEmailTaken          = newErr(KindConflict, "email already registered")
	ErrReferralCodeTaken   = newErr(KindConflict, "referral code already taken")
	ErrTelegramIDTaken     = newErr(KindConflict, "telegram id already registered")
	ErrReferralExists      = newErr(KindConflict, "referral already exists")
	ErrIdempotencyConflict = newErr(KindConflict, "idempotency key already used")
)

// KindOf returns the classification of err, KindInternal for anything
// that is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
