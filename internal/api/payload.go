package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/jellydator/validation"
	"github.com/pinodelabs/pinode/internal/config"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

// decodeAndValidate reads a JSON body into object and runs its Validate
// method when it has one.
func decodeAndValidate(r *http.Request, object any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	defer r.Body.Close()
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(object); err != nil {
		return badRequest(err, "invalid JSON")
	}

	v, ok := object.(validation.Validatable)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return badRequest(err, fmt.Sprintf("validating payload: %v", err))
	}
	return nil
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var positive = validation.By(func(value any) error {
	d, ok := value.(decimal.Decimal)
	if !ok || !d.IsPositive() {
		return domain.ErrInvalidAmount
	}
	return nil
})

// present rejects the nil UUID, which Required treats as set.
var present = validation.By(func(value any) error {
	if id, ok := value.(uuid.UUID); !ok || id == uuid.Nil {
		return validation.ErrRequired
	}
	return nil
})

type registerRequest struct {
	Email        string `json:"email"`
	Username     string `json:"username"`
	ReferralCode string `json:"referral_code"`
}

func (p registerRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, validation.Match(emailPattern)),
		validation.Field(&p.Username, validation.Length(0, 64)),
		validation.Field(&p.ReferralCode, validation.Length(0, 32)),
	)
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (p amountRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Amount, positive),
	)
}

type withdrawRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Address string          `json:"address"`
	Network string          `json:"network"`
}

func (p withdrawRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Amount, positive),
		validation.Field(&p.Address, validation.Required),
	)
}

type depositRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Network string          `json:"network"`
}

func (p depositRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Amount, positive),
		validation.Field(&p.Network, validation.Required, validation.In(toAny(config.DepositNetworks)...)),
	)
}

// approveRequest optionally asserts what the admin expects the pending
// entry to hold. An empty body approves the stored values.
type approveRequest struct {
	UserID   uuid.UUID       `json:"user_id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (p approveRequest) empty() bool {
	return p.UserID == uuid.Nil && p.Amount.IsZero() && p.Currency == ""
}

func (p approveRequest) Validate() error {
	if p.empty() {
		return nil
	}
	return validation.ValidateStruct(&p,
		validation.Field(&p.UserID, present),
		validation.Field(&p.Amount, positive),
		validation.Field(&p.Currency, validation.Required,
			validation.In(string(domain.CurrencyPI), string(domain.CurrencyPiNode))),
	)
}

type bulkRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type minWithdrawRequest struct {
	Value decimal.Decimal `json:"value"`
}

func (p minWithdrawRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Value, positive),
	)
}

type activateRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

func (p activateRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.UserID, present),
	)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
