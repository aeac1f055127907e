package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	userToken  = "user-token"
	adminToken = "admin-token"
)

type testServer struct {
	handler   http.Handler
	userID    uuid.UUID
	adminID   uuid.UUID
	users     *mockUsers
	ledger    *mockLedger
	exchange  *mockExchange
	approvals *mockApprovals
	settings  *mockSettings
}

func newTestServer(t *testing.T) *testServer {
	ts := &testServer{
		userID:    uuid.New(),
		adminID:   uuid.New(),
		users:     &mockUsers{},
		ledger:    &mockLedger{},
		exchange:  &mockExchange{},
		approvals: &mockApprovals{},
		settings:  &mockSettings{},
	}
	t.Cleanup(func() {
		ts.users.AssertExpectations(t)
		ts.ledger.AssertExpectations(t)
		ts.exchange.AssertExpectations(t)
		ts.approvals.AssertExpectations(t)
		ts.settings.AssertExpectations(t)
	})

	ts.handler = NewRouter(Deps{
		Tokens:    fakeTokens{userToken: ts.userID, adminToken: ts.adminID},
		Users:     ts.users,
		Ledger:    ts.ledger,
		Exchange:  ts.exchange,
		Approvals: ts.approvals,
		Settings:  ts.settings,
	})
	return ts
}

func (ts *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) expectAdmin() {
	ts.users.On("GetByID", mock.Anything, ts.adminID).Return(&domain.User{ID: ts.adminID, IsAdmin: true}, nil)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var got errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	return got
}

func decimalEq(v int64) any {
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(v)) })
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRegister(t *testing.T) {
	t.Run("invalid JSON", func(t *testing.T) {
		ts := newTestServer(t)
		rec := ts.do(http.MethodPost, "/api/users", "", "{invalid")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		got := decodeError(t, rec)
		assert.Equal(t, "invalid JSON", got.Error)
		assert.Equal(t, "validation", got.Kind)
		assert.Equal(t, http.StatusBadRequest, got.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		ts := newTestServer(t)
		rec := ts.do(http.MethodPost, "/api/users", "", `{"email":"nope"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("created", func(t *testing.T) {
		ts := newTestServer(t)
		email := "alice@example.com"
		ts.users.On("Register", mock.Anything, service.RegisterRequest{Email: email, ReferralCode: "PNABC"}).
			Return(&domain.User{ID: ts.userID, Email: &email, ReferralCode: "PNXYZ"}, nil)

		rec := ts.do(http.MethodPost, "/api/users", "", `{"email":"alice@example.com","referral_code":"PNABC"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var got userResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, ts.userID, got.ID)
		assert.Equal(t, "PNXYZ", got.ReferralCode)
	})

	t.Run("email taken", func(t *testing.T) {
		ts := newTestServer(t)
		ts.users.On("Register", mock.Anything, mock.Anything).Return(nil, domain.ErrEmailTaken)

		rec := ts.do(http.MethodPost, "/api/users", "", `{"email":"alice@example.com"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		got := decodeError(t, rec)
		assert.Equal(t, "conflict", got.Kind)
		assert.Equal(t, domain.ErrEmailTaken.Error(), got.Error)
	})
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodGet, "/api/me", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ts.users.On("GetByID", mock.Anything, ts.userID).
		Return(&domain.User{ID: ts.userID, MinedBalance: decimal.NewFromInt(500)}, nil)
	rec = ts.do(http.MethodGet, "/api/me", userToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.MinedBalance.Equal(decimal.NewFromInt(500)))
}

func TestExchangeErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
		msg    string
	}{
		{"insufficient", domain.ErrInsufficientBalance, http.StatusConflict, "precondition", domain.ErrInsufficientBalance.Error()},
		{"below minimum", domain.ErrBelowMinimumExchange, http.StatusBadRequest, "validation", domain.ErrBelowMinimumExchange.Error()},
		{"store failure", errors.New("connection reset"), http.StatusInternalServerError, "internal", tryAgainErr},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.exchange.On("Exchange", mock.Anything, ts.userID, decimalEq(20)).Return(nil, tc.err)

			rec := ts.do(http.MethodPost, "/api/me/exchange", userToken, `{"amount":"20"}`)
			assert.Equal(t, tc.status, rec.Code)
			got := decodeError(t, rec)
			assert.Equal(t, tc.kind, got.Kind)
			assert.Equal(t, tc.msg, got.Error)
		})
	}
}

func TestExchange(t *testing.T) {
	ts := newTestServer(t)
	tx := &domain.Transaction{
		ID:       uuid.New(),
		UserID:   ts.userID,
		Type:     domain.TxTypeExchange,
		Status:   domain.TxStatusCompleted,
		Amount:   decimal.NewFromInt(100),
		Currency: domain.CurrencyPiNode,
		Details:  domain.ExchangeDetails{Received: decimal.NewFromInt(2), ReceivedCurrency: domain.CurrencyPI},
	}
	ts.exchange.On("Exchange", mock.Anything, ts.userID, decimalEq(100)).Return(tx, nil)

	rec := ts.do(http.MethodPost, "/api/me/exchange", userToken, `{"amount":100}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Type    string            `json:"type"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "exchange", got.Type)
	assert.Equal(t, "2", got.Details["received"])
}

func TestExchangeRejectsNonPositiveAmount(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodPost, "/api/me/exchange", userToken, `{"amount":"-5"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRequiresFlag(t *testing.T) {
	ts := newTestServer(t)
	ts.users.On("GetByID", mock.Anything, ts.userID).Return(&domain.User{ID: ts.userID}, nil)

	rec := ts.do(http.MethodGet, "/api/admin/transactions/pending", userToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminPending(t *testing.T) {
	ts := newTestServer(t)
	ts.expectAdmin()
	ts.ledger.On("ListPending", mock.Anything).Return([]domain.Transaction{
		{ID: uuid.New(), Type: domain.TxTypeWithdraw, Status: domain.TxStatusPending, Amount: decimal.NewFromInt(50), Currency: domain.CurrencyPI,
			Details: domain.WithdrawDetails{Network: "PI", Address: "GABC"}},
	}, nil)

	rec := ts.do(http.MethodGet, "/api/admin/transactions/pending", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []transactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestAdminApprove(t *testing.T) {
	txID := uuid.New()

	t.Run("stored values", func(t *testing.T) {
		ts := newTestServer(t)
		ts.expectAdmin()
		ts.approvals.On("Approve", mock.Anything, txID).
			Return(&domain.Transaction{ID: txID, Status: domain.TxStatusCompleted, CreatedAt: time.Now()}, nil)

		rec := ts.do(http.MethodPost, "/api/admin/transactions/"+txID.String()+"/approve", adminToken, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("asserted values", func(t *testing.T) {
		ts := newTestServer(t)
		ts.expectAdmin()
		ownerID := uuid.New()
		ts.ledger.On("Get", mock.Anything, txID).Return(&domain.Transaction{ID: txID, Type: domain.TxTypeWithdraw}, nil)
		ts.approvals.On("ApproveWithdraw", mock.Anything, mock.MatchedBy(func(req service.ApprovalRequest) bool {
			return req.TxID == txID && req.UserID == ownerID && req.Currency == domain.CurrencyPI &&
				req.Amount.Equal(decimal.NewFromInt(50))
		})).Return(nil, domain.ErrInsufficientBalance)

		body := `{"user_id":"` + ownerID.String() + `","amount":"50","currency":"PI"}`
		rec := ts.do(http.MethodPost, "/api/admin/transactions/"+txID.String()+"/approve", adminToken, body)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "precondition", decodeError(t, rec).Kind)
	})

	t.Run("not pending", func(t *testing.T) {
		ts := newTestServer(t)
		ts.expectAdmin()
		ts.approvals.On("Approve", mock.Anything, txID).Return(nil, domain.ErrTransactionNotPending)

		rec := ts.do(http.MethodPost, "/api/admin/transactions/"+txID.String()+"/approve", adminToken, "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		ts := newTestServer(t)
		ts.expectAdmin()

		rec := ts.do(http.MethodPost, "/api/admin/transactions/42/approve", adminToken, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAdminApproveAll(t *testing.T) {
	ts := newTestServer(t)
	ts.expectAdmin()
	failed := uuid.New()
	ts.approvals.On("ApproveAll", mock.Anything, []uuid.UUID(nil)).Return(service.BulkResult{
		Succeeded: 2,
		Failures:  []service.BulkFailure{{TxID: failed, Reason: domain.ErrInsufficientBalance.Error()}},
	}, nil)

	rec := ts.do(http.MethodPost, "/api/admin/transactions/approve-all", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got bulkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Succeeded)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, failed, got.Failures[0].ID)
	assert.Contains(t, got.Summary, "2 succeeded, 1 failed")
}

func TestAdminRejectAllWithIDs(t *testing.T) {
	ts := newTestServer(t)
	ts.expectAdmin()
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	ts.approvals.On("RejectAll", mock.Anything, ids).Return(service.BulkResult{Succeeded: 2}, nil)

	body := `{"ids":["` + ids[0].String() + `","` + ids[1].String() + `"]}`
	rec := ts.do(http.MethodPost, "/api/admin/transactions/reject-all", adminToken, body)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminMinWithdraw(t *testing.T) {
	ts := newTestServer(t)
	ts.expectAdmin()
	ts.settings.On("SetMinWithdraw", mock.Anything, decimalEq(50)).Return(decimal.NewFromInt(100), nil)

	rec := ts.do(http.MethodPut, "/api/admin/settings/min-withdraw", adminToken, `{"value":"50"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got settingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Value.Equal(decimal.NewFromInt(100)))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusOf(domain.KindValidation))
	assert.Equal(t, http.StatusConflict, statusOf(domain.KindPrecondition))
	assert.Equal(t, http.StatusConflict, statusOf(domain.KindConflict))
	assert.Equal(t, http.StatusNotFound, statusOf(domain.KindNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusOf(domain.KindInternal))
}
