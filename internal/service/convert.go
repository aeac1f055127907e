package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/repository"
	"github.com/shopspring/decimal"
)

// pgTimestamptzToTime converts pgtype.Timestamptz to time.Time.
func pgTimestamptzToTime(ts pgtype.Timestamptz) time.Time {
	if ts.Valid {
		return ts.Time
	}
	return time.Time{}
}

// pgTimestamptzToTimePtr converts pgtype.Timestamptz to *time.Time.
func pgTimestamptzToTimePtr(ts pgtype.Timestamptz) *time.Time {
	if ts.Valid {
		t := ts.Time
		return &t
	}
	return nil
}

// timePtrToPgTimestamptz converts *time.Time to pgtype.Timestamptz.
func timePtrToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func rowToUser(row repository.User) *domain.User {
	return &domain.User{
		ID:               row.ID,
		Email:            row.Email,
		Username:         row.Username,
		TelegramID:       row.TelegramID,
		TelegramUsername: row.TelegramUsername,
		MinedBalance:     row.MinedBalance,
		NetworkBalance:   row.NetworkBalance,
		ReferralCode:     row.ReferralCode,
		ReferredByID:     row.ReferredByID,
		IsAdmin:          row.IsAdmin,
		CreatedAt:        pgTimestamptzToTime(row.CreatedAt),
		UpdatedAt:        pgTimestamptzToTime(row.UpdatedAt),
	}
}

func rowToReferral(row repository.Referral) domain.Referral {
	return domain.Referral{
		ID:                 row.ID,
		ReferrerID:         row.ReferrerID,
		ReferredUserID:     row.ReferredUserID,
		ReferredTelegramID: row.ReferredTelegramID,
		Status:             domain.ReferralStatus(row.Status),
		BonusEarned:        row.BonusEarned,
		CreatedAt:          pgTimestamptzToTime(row.CreatedAt),
		ActivatedAt:        pgTimestamptzToTimePtr(row.ActivatedAt),
		ClaimedAt:          pgTimestamptzToTimePtr(row.ClaimedAt),
	}
}

func rowToMissionRecord(row repository.MissionRecord) domain.MissionRecord {
	return domain.MissionRecord{
		UserID:    row.UserID,
		MissionID: row.MissionID,
		Status:    domain.MissionStatus(row.Status),
		Reward:    row.Reward,
		ClaimedAt: pgTimestamptzToTimePtr(row.ClaimedAt),
	}
}

func rowToTransaction(row repository.Transaction) (*domain.Transaction, error) {
	details, err := decodeDetails(domain.TxType(row.Type), row)
	if err != nil {
		return nil, fmt.Errorf("decode details of %s: %w", row.ID, err)
	}
	return &domain.Transaction{
		ID:             row.ID,
		UserID:         row.UserID,
		Type:           domain.TxType(row.Type),
		Status:         domain.TxStatus(row.Status),
		Amount:         row.Amount,
		Currency:       domain.Currency(row.Currency),
		Description:    row.Description,
		IdempotencyKey: row.IdempotencyKey,
		Details:        details,
		CreatedAt:      pgTimestamptzToTime(row.CreatedAt),
	}, nil
}

func rowsToTransactions(rows []repository.Transaction) ([]domain.Transaction, error) {
	out := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := rowToTransaction(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *tx)
	}
	return out, nil
}

// decodeDetails rebuilds the per-type payload. Network, address and the
// received amount are read from their columns, the rest from the JSON.
func decodeDetails(t domain.TxType, row repository.Transaction) (domain.TxDetails, error) {
	unmarshal := func(v any) error {
		if len(row.Details) == 0 {
			return nil
		}
		return json.Unmarshal(row.Details, v)
	}

	switch t {
	case domain.TxTypeDeposit:
		return domain.DepositDetails{Network: row.Network}, nil
	case domain.TxTypeWithdraw:
		return domain.WithdrawDetails{Network: row.Network, Address: row.Address}, nil
	case domain.TxTypeExchange:
		var d domain.ExchangeDetails
		if err := unmarshal(&d); err != nil {
			return nil, err
		}
		if row.AmountReceived.Valid {
			d.Received = row.AmountReceived.Decimal
		}
		return d, nil
	case domain.TxTypeClaim:
		var d domain.ClaimDetails
		if err := unmarshal(&d); err != nil {
			return nil, err
		}
		return d, nil
	case domain.TxTypeReferral:
		var d domain.ReferralDetails
		if err := unmarshal(&d); err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown transaction type %q", t)
	}
}

// transactionParams flattens a domain transaction into insert parameters.
func transactionParams(tx *domain.Transaction) (repository.CreateTransactionParams, error) {
	p := repository.CreateTransactionParams{
		ID:             tx.ID,
		UserID:         tx.UserID,
		Type:           string(tx.Type),
		Amount:         tx.Amount,
		Currency:       string(tx.Currency),
		Status:         string(tx.Status),
		Description:    tx.Description,
		IdempotencyKey: tx.IdempotencyKey,
		Details:        []byte("{}"),
	}

	switch d := tx.Details.(type) {
	case nil:
	case domain.DepositDetails:
		p.Network = d.Network
	case domain.WithdrawDetails:
		p.Network = d.Network
		p.Address = d.Address
	case domain.ExchangeDetails:
		p.AmountReceived = decimal.NewNullDecimal(d.Received)
	}

	if tx.Details != nil {
		raw, err := json.Marshal(tx.Details)
		if err != nil {
			return p, fmt.Errorf("encode details: %w", err)
		}
		p.Details = raw
	}
	return p, nil
}
