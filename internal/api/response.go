package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/service"
	"github.com/shopspring/decimal"
)

type userResponse struct {
	ID               uuid.UUID       `json:"id"`
	Email            *string         `json:"email,omitempty"`
	Username         string          `json:"username,omitempty"`
	TelegramID       *int64          `json:"telegram_id,omitempty"`
	TelegramUsername string          `json:"telegram_username,omitempty"`
	MinedBalance     decimal.Decimal `json:"mined_balance"`
	NetworkBalance   decimal.Decimal `json:"network_balance"`
	ReferralCode     string          `json:"referral_code"`
	ReferredByID     *uuid.UUID      `json:"referred_by,omitempty"`
	IsAdmin          bool            `json:"is_admin"`
	CreatedAt        time.Time       `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:               u.ID,
		Email:            u.Email,
		Username:         u.Username,
		TelegramID:       u.TelegramID,
		TelegramUsername: u.TelegramUsername,
		MinedBalance:     u.MinedBalance,
		NetworkBalance:   u.NetworkBalance,
		ReferralCode:     u.ReferralCode,
		ReferredByID:     u.ReferredByID,
		IsAdmin:          u.IsAdmin,
		CreatedAt:        u.CreatedAt,
	}
}

type transactionResponse struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"user_id"`
	Type           domain.TxType    `json:"type"`
	Status         domain.TxStatus  `json:"status"`
	Amount         decimal.Decimal  `json:"amount"`
	Currency       domain.Currency  `json:"currency"`
	Description    string           `json:"description,omitempty"`
	IdempotencyKey *string          `json:"idempotency_key,omitempty"`
	Details        domain.TxDetails `json:"details,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

func toTransactionResponse(tx *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:             tx.ID,
		UserID:         tx.UserID,
		Type:           tx.Type,
		Status:         tx.Status,
		Amount:         tx.Amount,
		Currency:       tx.Currency,
		Description:    tx.Description,
		IdempotencyKey: tx.IdempotencyKey,
		Details:        tx.Details,
		CreatedAt:      tx.CreatedAt,
	}
}

func toTransactionResponses(txs []domain.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(txs))
	for i := range txs {
		out[i] = toTransactionResponse(&txs[i])
	}
	return out
}

type referralResponse struct {
	ID                 uuid.UUID             `json:"id"`
	ReferredUserID     *uuid.UUID            `json:"referred_user_id,omitempty"`
	ReferredTelegramID *int64                `json:"referred_telegram_id,omitempty"`
	Status             domain.ReferralStatus `json:"status"`
	BonusEarned        decimal.Decimal       `json:"bonus_earned"`
	CreatedAt          time.Time             `json:"created_at"`
	ActivatedAt        *time.Time            `json:"activated_at,omitempty"`
	ClaimedAt          *time.Time            `json:"claimed_at,omitempty"`
}

type referralStatsResponse struct {
	Total            int             `json:"total"`
	Active           int             `json:"active"`
	TotalBonusEarned decimal.Decimal `json:"total_bonus_earned"`
	PendingBonus     decimal.Decimal `json:"pending_bonus"`
}

type referralsResponse struct {
	Stats     referralStatsResponse `json:"stats"`
	Referrals []referralResponse    `json:"referrals"`
}

func toReferralsResponse(refs []domain.Referral, st domain.ReferralStats) referralsResponse {
	out := referralsResponse{
		Stats: referralStatsResponse{
			Total:            st.Total,
			Active:           st.Active,
			TotalBonusEarned: st.TotalBonusEarned,
			PendingBonus:     st.PendingBonus,
		},
		Referrals: make([]referralResponse, len(refs)),
	}
	for i, r := range refs {
		out.Referrals[i] = referralResponse{
			ID:                 r.ID,
			ReferredUserID:     r.ReferredUserID,
			ReferredTelegramID: r.ReferredTelegramID,
			Status:             r.Status,
			BonusEarned:        r.BonusEarned,
			CreatedAt:          r.CreatedAt,
			ActivatedAt:        r.ActivatedAt,
			ClaimedAt:          r.ClaimedAt,
		}
	}
	return out
}

type claimResponse struct {
	Claimed     bool                 `json:"claimed"`
	Amount      decimal.Decimal      `json:"amount"`
	Referrals   int                  `json:"referrals,omitempty"`
	Transaction *transactionResponse `json:"transaction,omitempty"`
}

func toClaimResponse(r domain.ClaimResult) claimResponse {
	out := claimResponse{Claimed: !r.Nothing, Amount: r.Amount, Referrals: r.Referrals}
	if r.Transaction != nil {
		tx := toTransactionResponse(r.Transaction)
		out.Transaction = &tx
	}
	return out
}

type missionResponse struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Reward    decimal.Decimal      `json:"reward"`
	Link      string               `json:"link"`
	Kind      domain.MissionKind   `json:"kind"`
	Status    domain.MissionStatus `json:"status,omitempty"`
	ClaimedAt *time.Time           `json:"claimed_at,omitempty"`
}

func toMissionResponses(views []domain.MissionView) []missionResponse {
	out := make([]missionResponse, len(views))
	for i, v := range views {
		out[i] = missionResponse{
			ID:        v.ID,
			Title:     v.Title,
			Reward:    v.Reward,
			Link:      v.Link,
			Kind:      v.Kind,
			Status:    v.Status,
			ClaimedAt: v.ClaimedAt,
		}
	}
	return out
}

type missionRecordResponse struct {
	MissionID string               `json:"mission_id"`
	Status    domain.MissionStatus `json:"status"`
	Reward    decimal.Decimal      `json:"reward"`
	ClaimedAt *time.Time           `json:"claimed_at,omitempty"`
}

type missionClaimResponse struct {
	MissionID      string               `json:"mission_id"`
	Reward         decimal.Decimal      `json:"reward"`
	AlreadyClaimed bool                 `json:"already_claimed"`
	ClaimedAt      time.Time            `json:"claimed_at"`
	Transaction    *transactionResponse `json:"transaction,omitempty"`
}

func toMissionClaimResponse(c domain.MissionClaim) missionClaimResponse {
	out := missionClaimResponse{
		MissionID:      c.MissionID,
		Reward:         c.Reward,
		AlreadyClaimed: c.AlreadyClaimed,
		ClaimedAt:      c.ClaimedAt,
	}
	if c.Transaction != nil {
		tx := toTransactionResponse(c.Transaction)
		out.Transaction = &tx
	}
	return out
}

type depositResponse struct {
	Transaction transactionResponse `json:"transaction"`
	Address     string              `json:"address"`
}

type bulkFailureResponse struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

type bulkResponse struct {
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
	Failures  []bulkFailureResponse `json:"failures"`
	Summary   string                `json:"summary"`
}

func toBulkResponse(r service.BulkResult) bulkResponse {
	out := bulkResponse{
		Succeeded: r.Succeeded,
		Failed:    len(r.Failures),
		Failures:  make([]bulkFailureResponse, len(r.Failures)),
		Summary:   r.Summary(),
	}
	for i, f := range r.Failures {
		out.Failures[i] = bulkFailureResponse{ID: f.TxID, Reason: f.Reason}
	}
	return out
}

type platformStatsResponse struct {
	Users               int64           `json:"users"`
	Referrals           int64           `json:"referrals"`
	PendingTransactions int64           `json:"pending_transactions"`
	TotalExchanged      decimal.Decimal `json:"total_exchanged"`
	TotalClaimed        decimal.Decimal `json:"total_claimed"`
}

type settingResponse struct {
	Value decimal.Decimal `json:"value"`
}
