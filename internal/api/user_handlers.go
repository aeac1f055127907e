package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pinodelabs/pinode/internal/auth"
	"github.com/pinodelabs/pinode/internal/config"
	"github.com/pinodelabs/pinode/internal/service"
)

func currentUserID(r *http.Request) (uuid.UUID, error) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, unauthorized("missing bearer token")
	}
	return id, nil
}

// limitParam reads ?limit=, falling back to the default list size.
func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return config.DefaultListLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, badRequest(err, "limit must be a positive integer")
	}
	return limit, nil
}

func (s *server) register(w http.ResponseWriter, r *http.Request) error {
	var req registerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return err
	}

	user, err := s.Users.Register(r.Context(), service.RegisterRequest{
		Email:        req.Email,
		Username:     req.Username,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
	return nil
}

func (s *server) me(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUserID(r)
	if err != nil {
		return err
	}

	user, err := s.Users.GetByID(r.Context(), userID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
	return nil
}

func (s *server) myTransactions(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUserID(r)
	if err != nil {
		return err
	}
	limit, err := limitParam(r)
	if err != nil {
		return err
	}

	txs, err := s.Ledger.ListRecent(r.Context(), userID, limit)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
	return nil
}

func (s *server) exchange(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUserID(r)
	if err != nil {
		return err
	}
	var req amountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return err
	}

	tx, err := s.Exchange.Exchange(r.Context(), userID, req.Amount)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
	return nil
}

func (s *server) withdraw(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUserID(r)
	if err != nil {
		return err
	}
	var req withdrawRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return err
	}

	tx, err := s.Withdraw.RequestWithdraw(r.Context(), service.WithdrawRequest{
		UserID:  userID,
		Amount:  req.Amount,
		Address: req.Address,
		Network: req.Network,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusAccepted, toTransactionResponse(tx))
	return nil
}

func (s *server) deposit(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUserID(r)
	if err != nil {
		return err
	}
	var req depositRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return err
	}

	dep, err := s.Ledger.RequestDeposit(r.Context(), userID, req.Amount, req.Network)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusAccepted, depositResponse{
		Transaction: toTransactionResponse(dep.Transaction),
		Address:     dep.Address,
	})
	return nil
}

func (s *server) referrals(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUserID(r)
	if err != nil {
		return err
	}

	refs, err := s.Referrals.List(r.Context(), userID)
	if err != nil {
		return err
	}
	stats, err := s.Referrals.Stats(r.Context(), userID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toReferralsResponse(refs, stats))
	return nil
}

func (s *server) claimReferrals(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUserID(r)
	if err != nil {
		return err
	}

	result, err := s.Referrals.ClaimBonus(r.Context(), userID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toClaimResponse(result))
	return nil
}

func (s *server) missions(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUserID(r)
	if err != nil {
		return err
	}

	views, err := s.Missions.List(r.Context(), userID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toMissionResponses(views))
	return nil
}

func (s *server) completeMission(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUserID(r)
	if err != nil {
		return err
	}

	rec, err := s.Missions.Complete(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, missionRecordResponse{
		MissionID: rec.MissionID,
		Status:    rec.Status,
		Reward:    rec.Reward,
		ClaimedAt: rec.ClaimedAt,
	})
	return nil
}

func (s *server) claimMission(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUserID(r)
	if err != nil {
		return err
	}

	claim, err := s.Missions.Claim(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toMissionClaimResponse(claim))
	return nil
}
