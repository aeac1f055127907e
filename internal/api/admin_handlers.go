package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/service"
)

func txIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, badRequest(err, "invalid transaction id")
	}
	return id, nil
}

func (s *server) pendingTransactions(w http.ResponseWriter, r *http.Request) error {
	txs, err := s.Ledger.ListPending(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
	return nil
}

func (s *server) allTransactions(w http.ResponseWriter, r *http.Request) error {
	limit, err := limitParam(r)
	if err != nil {
		return err
	}

	txs, err := s.Ledger.ListAll(r.Context(), limit)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
	return nil
}

// approve decides a single pending entry. A body, when present, asserts
// the owner, amount and currency the stored entry must hold.
func (s *server) approve(w http.ResponseWriter, r *http.Request) error {
	id, err := txIDParam(r)
	if err != nil {
		return err
	}

	var req approveRequest
	if r.ContentLength != 0 {
		if err := decodeAndValidate(r, &req); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}

	var tx *domain.Transaction
	if req.empty() {
		tx, err = s.Approvals.Approve(r.Context(), id)
	} else {
		tx, err = s.approveAsserted(r, id, req)
	}
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
	return nil
}

func (s *server) approveAsserted(r *http.Request, id uuid.UUID, req approveRequest) (*domain.Transaction, error) {
	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	asserted := service.ApprovalRequest{TxID: id, UserID: req.UserID, Amount: req.Amount, Currency: currency}

	stored, err := s.Ledger.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	switch stored.Type {
	case domain.TxTypeDeposit:
		return s.Approvals.ApproveDeposit(r.Context(), asserted)
	case domain.TxTypeWithdraw:
		return s.Approvals.ApproveWithdraw(r.Context(), asserted)
	default:
		return nil, domain.ErrUnsupportedTxType
	}
}

func (s *server) reject(w http.ResponseWriter, r *http.Request) error {
	id, err := txIDParam(r)
	if err != nil {
		return err
	}

	tx, err := s.Approvals.Reject(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
	return nil
}

func (s *server) decodeBulk(r *http.Request) ([]uuid.UUID, error) {
	if r.ContentLength == 0 {
		return nil, nil
	}
	var req bulkRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return nil, err
	}
	return req.IDs, nil
}

func (s *server) approveAll(w http.ResponseWriter, r *http.Request) error {
	ids, err := s.decodeBulk(r)
	if err != nil {
		return err
	}

	result, err := s.Approvals.ApproveAll(r.Context(), ids...)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toBulkResponse(result))
	return nil
}

func (s *server) rejectAll(w http.ResponseWriter, r *http.Request) error {
	ids, err := s.decodeBulk(r)
	if err != nil {
		return err
	}

	result, err := s.Approvals.RejectAll(r.Context(), ids...)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toBulkResponse(result))
	return nil
}

func (s *server) minWithdraw(w http.ResponseWriter, r *http.Request) error {
	v, err := s.Settings.MinWithdraw(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, settingResponse{Value: v})
	return nil
}

func (s *server) setMinWithdraw(w http.ResponseWriter, r *http.Request) error {
	var req minWithdrawRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return err
	}

	v, err := s.Settings.SetMinWithdraw(r.Context(), req.Value)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, settingResponse{Value: v})
	return nil
}

func (s *server) activateReferrals(w http.ResponseWriter, r *http.Request) error {
	var req activateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return err
	}

	n, err := s.Referrals.Activate(r.Context(), req.UserID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]int64{"activated": n})
	return nil
}

func (s *server) platformStats(w http.ResponseWriter, r *http.Request) error {
	st, err := s.Stats.Platform(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, platformStatsResponse{
		Users:               st.Users,
		Referrals:           st.Referrals,
		PendingTransactions: st.PendingTransactions,
		TotalExchanged:      st.TotalExchanged,
		TotalClaimed:        st.TotalClaimed,
	})
	return nil
}
