package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pinodelabs/pinode/internal/config"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/metrics"
	"github.com/pinodelabs/pinode/internal/repository"
	"github.com/shopspring/decimal"
)

// ApprovalRequest is what the admin asserts about a pending entry. It must
// match the stored transaction.
type ApprovalRequest struct {
	TxID     uuid.UUID
	UserID   uuid.UUID
	Amount   decimal.Decimal
	Currency domain.Currency
}

type ApprovalService struct {
	store    repository.Store
	notifier Notifier
	events   EventLog
}

func NewApprovalService(store repository.Store, notifier Notifier, events EventLog) *ApprovalService {
	return &ApprovalService{store: store, notifier: orNopNotifier(notifier), events: orNopEventLog(events)}
}

// ApproveDeposit credits the deposit amount and completes the entry.
func (s *ApprovalService) ApproveDeposit(ctx context.Context, req ApprovalRequest) (*domain.Transaction, error) {
	return s.approve(ctx, domain.TxTypeDeposit, req)
}

// ApproveWithdraw debits the withdrawal amount and completes the entry. It
// fails with domain.ErrInsufficientBalance and changes nothing when the
// balance would go negative.
func (s *ApprovalService) ApproveWithdraw(ctx context.Context, req ApprovalRequest) (*domain.Transaction, error) {
	return s.approve(ctx, domain.TxTypeWithdraw, req)
}

// Approve loads a pending entry and approves it according to its type.
func (s *ApprovalService) Approve(ctx context.Context, txID uuid.UUID) (*domain.Transaction, error) {
	row, err := s.store.GetTransaction(ctx, txID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	req := ApprovalRequest{
		TxID:     row.ID,
		UserID:   row.UserID,
		Amount:   row.Amount,
		Currency: domain.Currency(row.Currency),
	}
	switch domain.TxType(row.Type) {
	case domain.TxTypeDeposit:
		return s.ApproveDeposit(ctx, req)
	case domain.TxTypeWithdraw:
		return s.ApproveWithdraw(ctx, req)
	default:
		return nil, domain.ErrUnsupportedTxType
	}
}

func (s *ApprovalService) approve(ctx context.Context, txType domain.TxType, req ApprovalRequest) (*domain.Transaction, error) {
	var approved *domain.Transaction

	err := s.store.InTx(ctx, func(q repository.Querier) error {
		row, err := q.GetTransactionForUpdate(ctx, req.TxID)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTransactionNotFound
		}
		if err != nil {
			return fmt.Errorf("lock transaction: %w", err)
		}
		if domain.TxStatus(row.Status) != domain.TxStatusPending {
			return domain.ErrTransactionNotPending
		}
		if domain.TxType(row.Type) != txType ||
			row.UserID != req.UserID ||
			!row.Amount.Equal(req.Amount) ||
			domain.Currency(row.Currency) != req.Currency {
			return domain.ErrTransactionMismatch
		}

		user, err := lockUser(ctx, q, req.UserID)
		if err != nil {
			return err
		}

		mined, network := user.MinedBalance, user.NetworkBalance
		delta := req.Amount
		if txType == domain.TxTypeWithdraw {
			delta = delta.Neg()
		}
		switch req.Currency {
		case domain.CurrencyPiNode:
			mined = mined.Add(delta)
		case domain.CurrencyPI:
			network = network.Add(delta)
		default:
			return domain.ErrUnsupportedCurrency
		}
		if mined.IsNegative() || network.IsNegative() {
			return domain.ErrInsufficientBalance
		}

		if _, err := q.SetUserBalances(ctx, repository.SetUserBalancesParams{
			ID:             user.ID,
			MinedBalance:   mined,
			NetworkBalance: network,
		}); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}

		n, err := q.SetTransactionStatus(ctx, repository.SetTransactionStatusParams{
			ID:   row.ID,
			From: string(domain.TxStatusPending),
			To:   string(domain.TxStatusCompleted),
		})
		if err != nil {
			return fmt.Errorf("complete transaction: %w", err)
		}
		if n == 0 {
			return domain.ErrTransactionNotPending
		}

		row.Status = string(domain.TxStatusCompleted)
		approved, err = rowToTransaction(row)
		return err
	})
	if err != nil {
		metrics.Approvals.WithLabelValues(string(txType), "failed").Inc()
		return nil, err
	}

	metrics.Approvals.WithLabelValues(string(txType), "approved").Inc()
	s.events.LogDecision(approved)

	kind := domain.NotifyDepositApproved
	if txType == domain.TxTypeWithdraw {
		kind = domain.NotifyWithdrawApproved
	}
	s.notifier.Notify(domain.Notification{
		Kind:     kind,
		UserID:   approved.UserID,
		Amount:   approved.Amount,
		Currency: approved.Currency,
		Network:  approved.Network(),
	})
	return approved, nil
}

// Reject moves a pending entry to failed without touching balances.
func (s *ApprovalService) Reject(ctx context.Context, txID uuid.UUID) (*domain.Transaction, error) {
	n, err := s.store.SetTransactionStatus(ctx, repository.SetTransactionStatusParams{
		ID:   txID,
		From: string(domain.TxStatusPending),
		To:   string(domain.TxStatusFailed),
	})
	if err != nil {
		return nil, fmt.Errorf("reject transaction: %w", err)
	}

	row, err := s.store.GetTransaction(ctx, txID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if n == 0 {
		metrics.Approvals.WithLabelValues(row.Type, "failed").Inc()
		return nil, domain.ErrTransactionNotPending
	}

	tx, err := rowToTransaction(row)
	if err != nil {
		return nil, err
	}
	metrics.Approvals.WithLabelValues(row.Type, "rejected").Inc()
	s.events.LogDecision(tx)
	return tx, nil
}

type BulkFailure struct {
	TxID   uuid.UUID
	Reason string
}

// BulkResult reports a bulk approval or rejection item by item.
type BulkResult struct {
	Succeeded int
	Failures  []BulkFailure
}

// Summary is a short human readable report listing at most
// config.BulkErrorSummaryLimit failure reasons.
func (r BulkResult) Summary() string {
	if len(r.Failures) == 0 {
		return fmt.Sprintf("%d succeeded", r.Succeeded)
	}
	reasons := make([]string, 0, config.BulkErrorSummaryLimit+1)
	for i, f := range r.Failures {
		if i == config.BulkErrorSummaryLimit {
			reasons = append(reasons, "...")
			break
		}
		reasons = append(reasons, fmt.Sprintf("%s: %s", shortID(f.TxID), f.Reason))
	}
	return fmt.Sprintf("%d succeeded, %d failed: %s", r.Succeeded, len(r.Failures), strings.Join(reasons, "; "))
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

// ApproveAll approves ids one after another, or every pending entry when
// ids is empty. A failing item never stops the rest.
func (s *ApprovalService) ApproveAll(ctx context.Context, ids ...uuid.UUID) (BulkResult, error) {
	return s.bulk(ctx, ids, func(id uuid.UUID) error {
		_, err := s.Approve(ctx, id)
		return err
	})
}

// RejectAll rejects ids one after another, or every pending entry when ids
// is empty.
func (s *ApprovalService) RejectAll(ctx context.Context, ids ...uuid.UUID) (BulkResult, error) {
	return s.bulk(ctx, ids, func(id uuid.UUID) error {
		_, err := s.Reject(ctx, id)
		return err
	})
}

func (s *ApprovalService) bulk(ctx context.Context, ids []uuid.UUID, apply func(uuid.UUID) error) (BulkResult, error) {
	if len(ids) == 0 {
		pending, err := s.store.ListPendingTransactions(ctx)
		if err != nil {
			return BulkResult{}, fmt.Errorf("list pending: %w", err)
		}
		for _, row := range pending {
			ids = append(ids, row.ID)
		}
	}

	var result BulkResult
	for _, id := range ids {
		if err := apply(id); err != nil {
			result.Failures = append(result.Failures, BulkFailure{TxID: id, Reason: failureReason(err)})
			if domain.KindOf(err) == domain.KindInternal {
				slog.Error("bulk item failed", "error", err, "tx_id", id)
			}
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

func failureReason(err error) string {
	if domain.KindOf(err) == domain.KindInternal {
		return "internal error, try again"
	}
	return err.Error()
}
