package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/repository"
	"github.com/shopspring/decimal"
)

var errCheckViolation = errors.New("check constraint violated")

// memStore is an in-memory repository.Store. InTx runs one transaction at
// a time on a copy of the data and publishes the copy on success, which
// stands in for row locks and rollback.
type memStore struct {
	mu sync.Mutex
	*memData
}

func newMemStore() *memStore {
	return &memStore{memData: &memData{
		users:    map[uuid.UUID]repository.User{},
		missions: map[string]repository.MissionRecord{},
		settings: map[string]string{"min_withdraw": "100"},
		clock:    time.Now(),
	}}
}

func (s *memStore) InTx(ctx context.Context, fn func(q repository.Querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.memData.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.memData = work
	return nil
}

type memData struct {
	users     map[uuid.UUID]repository.User
	txs       []repository.Transaction
	referrals []repository.Referral
	missions  map[string]repository.MissionRecord
	settings  map[string]string
	clock     time.Time
}

func (d *memData) clone() *memData {
	c := &memData{
		users:     make(map[uuid.UUID]repository.User, len(d.users)),
		txs:       append([]repository.Transaction(nil), d.txs...),
		referrals: append([]repository.Referral(nil), d.referrals...),
		missions:  make(map[string]repository.MissionRecord, len(d.missions)),
		settings:  make(map[string]string, len(d.settings)),
		clock:     d.clock,
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.missions {
		c.missions[k] = v
	}
	for k, v := range d.settings {
		c.settings[k] = v
	}
	return c
}

func (d *memData) tick() pgtype.Timestamptz {
	d.clock = d.clock.Add(time.Millisecond)
	return pgtype.Timestamptz{Time: d.clock, Valid: true}
}

// seedUser inserts a user with the given balances outside any transaction.
func (d *memData) seedUser(mined, network int64) repository.User {
	u := repository.User{
		ID:             uuid.New(),
		Username:       "seed",
		MinedBalance:   decimal.NewFromInt(mined),
		NetworkBalance: decimal.NewFromInt(network),
		ReferralCode:   uuid.NewString()[:8],
		CreatedAt:      d.tick(),
	}
	d.users[u.ID] = u
	return u
}

func (d *memData) CreateUser(_ context.Context, arg repository.CreateUserParams) (repository.User, error) {
	for _, u := range d.users {
		switch {
		case arg.Email != nil && u.Email != nil && *u.Email == *arg.Email:
			return repository.User{}, domain.ErrEmailTaken
		case arg.TelegramID != nil && u.TelegramID != nil && *u.TelegramID == *arg.TelegramID:
			return repository.User{}, domain.ErrTelegramIDTaken
		case u.ReferralCode == arg.ReferralCode:
			return repository.User{}, domain.ErrReferralCodeTaken
		}
	}
	now := d.tick()
	u := repository.User{
		ID:               arg.ID,
		Email:            arg.Email,
		Username:         arg.Username,
		TelegramID:       arg.TelegramID,
		TelegramUsername: arg.TelegramUsername,
		MinedBalance:     decimal.Zero,
		NetworkBalance:   decimal.Zero,
		ReferralCode:     arg.ReferralCode,
		ReferredByID:     arg.ReferredByID,
		IsAdmin:          arg.IsAdmin,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	d.users[u.ID] = u
	return u, nil
}

func (d *memData) GetUserByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	u, ok := d.users[id]
	if !ok {
		return repository.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (d *memData) GetUserForUpdate(ctx context.Context, id uuid.UUID) (repository.User, error) {
	return d.GetUserByID(ctx, id)
}

func (d *memData) findUser(match func(repository.User) bool) (repository.User, error) {
	for _, u := range d.users {
		if match(u) {
			return u, nil
		}
	}
	return repository.User{}, pgx.ErrNoRows
}

func (d *memData) GetUserByTelegramID(_ context.Context, telegramID int64) (repository.User, error) {
	return d.findUser(func(u repository.User) bool { return u.TelegramID != nil && *u.TelegramID == telegramID })
}

func (d *memData) GetUserByEmail(_ context.Context, email string) (repository.User, error) {
	return d.findUser(func(u repository.User) bool { return u.Email != nil && *u.Email == email })
}

func (d *memData) GetUserByReferralCode(_ context.Context, code string) (repository.User, error) {
	return d.findUser(func(u repository.User) bool { return u.ReferralCode == code })
}

func (d *memData) SetUserBalances(_ context.Context, arg repository.SetUserBalancesParams) (repository.User, error) {
	u, ok := d.users[arg.ID]
	if !ok {
		return repository.User{}, pgx.ErrNoRows
	}
	if arg.MinedBalance.IsNegative() || arg.NetworkBalance.IsNegative() {
		return repository.User{}, errCheckViolation
	}
	u.MinedBalance = arg.MinedBalance
	u.NetworkBalance = arg.NetworkBalance
	u.UpdatedAt = d.tick()
	d.users[u.ID] = u
	return u, nil
}

func (d *memData) LinkTelegram(ctx context.Context, arg repository.LinkTelegramParams) (repository.User, error) {
	if other, err := d.GetUserByTelegramID(ctx, arg.TelegramID); err == nil && other.ID != arg.ID {
		return repository.User{}, domain.ErrTelegramIDTaken
	}
	u, ok := d.users[arg.ID]
	if !ok {
		return repository.User{}, pgx.ErrNoRows
	}
	id := arg.TelegramID
	u.TelegramID = &id
	u.TelegramUsername = arg.TelegramUsername
	u.IsAdmin = u.IsAdmin || arg.IsAdmin
	d.users[u.ID] = u
	return u, nil
}

func (d *memData) UnlinkTelegram(_ context.Context, id uuid.UUID) error {
	u, ok := d.users[id]
	if ok {
		u.TelegramID = nil
		d.users[id] = u
	}
	return nil
}

func (d *memData) CountUsers(context.Context) (int64, error) {
	return int64(len(d.users)), nil
}

func (d *memData) CountUserActivity(_ context.Context, id uuid.UUID) (int64, error) {
	var n int64
	for _, t := range d.txs {
		if t.UserID == id {
			n++
		}
	}
	for _, r := range d.referrals {
		if r.ReferrerID == id {
			n++
		}
	}
	return n, nil
}

func (d *memData) CreateTransaction(_ context.Context, arg repository.CreateTransactionParams) (repository.Transaction, error) {
	if arg.IdempotencyKey != nil {
		for _, t := range d.txs {
			if t.IdempotencyKey != nil && *t.IdempotencyKey == *arg.IdempotencyKey {
				return repository.Transaction{}, domain.ErrIdempotencyConflict
			}
		}
	}
	if arg.Details == nil {
		return repository.Transaction{}, errCheckViolation
	}
	t := repository.Transaction{
		ID:             arg.ID,
		UserID:         arg.UserID,
		Type:           arg.Type,
		Amount:         arg.Amount,
		AmountReceived: arg.AmountReceived,
		Currency:       arg.Currency,
		Status:         arg.Status,
		Description:    arg.Description,
		Network:        arg.Network,
		Address:        arg.Address,
		Details:        arg.Details,
		IdempotencyKey: arg.IdempotencyKey,
		CreatedAt:      d.tick(),
	}
	d.txs = append(d.txs, t)
	return t, nil
}

func (d *memData) txIndex(id uuid.UUID) int {
	for i, t := range d.txs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (d *memData) GetTransaction(_ context.Context, id uuid.UUID) (repository.Transaction, error) {
	i := d.txIndex(id)
	if i < 0 {
		return repository.Transaction{}, pgx.ErrNoRows
	}
	return d.txs[i], nil
}

func (d *memData) GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (repository.Transaction, error) {
	return d.GetTransaction(ctx, id)
}

func (d *memData) GetTransactionByIdempotencyKey(_ context.Context, key string) (repository.Transaction, error) {
	for _, t := range d.txs {
		if t.IdempotencyKey != nil && *t.IdempotencyKey == key {
			return t, nil
		}
	}
	return repository.Transaction{}, pgx.ErrNoRows
}

func (d *memData) SetTransactionStatus(_ context.Context, arg repository.SetTransactionStatusParams) (int64, error) {
	i := d.txIndex(arg.ID)
	if i < 0 || d.txs[i].Status != arg.From {
		return 0, nil
	}
	d.txs[i].Status = arg.To
	return 1, nil
}

// newestFirst returns the matching entries ordered by created_at descending.
func (d *memData) newestFirst(match func(repository.Transaction) bool, limit int) []repository.Transaction {
	var out []repository.Transaction
	for _, t := range d.txs {
		if match(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Time.After(out[j].CreatedAt.Time) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (d *memData) ListPendingTransactions(context.Context) ([]repository.Transaction, error) {
	return d.newestFirst(func(t repository.Transaction) bool { return t.Status == "pending" }, 0), nil
}

func (d *memData) ListUserTransactions(_ context.Context, arg repository.ListUserTransactionsParams) ([]repository.Transaction, error) {
	return d.newestFirst(func(t repository.Transaction) bool { return t.UserID == arg.UserID }, int(arg.Limit)), nil
}

func (d *memData) ListTransactions(_ context.Context, limit int32) ([]repository.Transaction, error) {
	return d.newestFirst(func(repository.Transaction) bool { return true }, int(limit)), nil
}

func (d *memData) CountRecentPendingWithdrawals(_ context.Context, arg repository.CountRecentPendingWithdrawalsParams) (int64, error) {
	var n int64
	for _, t := range d.txs {
		if t.UserID == arg.UserID && t.Type == "withdraw" && t.Status == "pending" &&
			t.Amount.Equal(arg.Amount) && !t.CreatedAt.Time.Before(d.clock.Add(-arg.Window)) {
			n++
		}
	}
	return n, nil
}

func (d *memData) CountPendingTransactions(context.Context) (int64, error) {
	var n int64
	for _, t := range d.txs {
		if t.Status == "pending" {
			n++
		}
	}
	return n, nil
}

func (d *memData) SumCompletedTransactions(_ context.Context, txType string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range d.txs {
		if t.Type == txType && t.Status == "completed" {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (d *memData) CreateReferral(_ context.Context, arg repository.CreateReferralParams) (repository.Referral, error) {
	for _, r := range d.referrals {
		if r.ReferrerID == arg.ReferrerID && arg.ReferredUserID != nil && r.ReferredUserID != nil &&
			*r.ReferredUserID == *arg.ReferredUserID {
			return repository.Referral{}, domain.ErrReferralExists
		}
	}
	r := repository.Referral{
		ID:                 arg.ID,
		ReferrerID:         arg.ReferrerID,
		ReferredUserID:     arg.ReferredUserID,
		ReferredTelegramID: arg.ReferredTelegramID,
		Status:             "pending",
		BonusEarned:        decimal.Zero,
		CreatedAt:          d.tick(),
	}
	d.referrals = append(d.referrals, r)
	return r, nil
}

func (d *memData) ListReferralsByReferrer(_ context.Context, referrerID uuid.UUID) ([]repository.Referral, error) {
	var out []repository.Referral
	for _, r := range d.referrals {
		if r.ReferrerID == referrerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (d *memData) ListClaimableReferralsForUpdate(_ context.Context, referrerID uuid.UUID) ([]repository.Referral, error) {
	var out []repository.Referral
	for _, r := range d.referrals {
		if r.ReferrerID == referrerID && r.Status == "active" && r.BonusEarned.IsZero() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (d *memData) StampReferralBonus(_ context.Context, arg repository.StampReferralBonusParams) (int64, error) {
	var n int64
	for i := range d.referrals {
		r := &d.referrals[i]
		for _, id := range arg.IDs {
			if r.ID == id && r.Status == "active" && r.BonusEarned.IsZero() {
				r.BonusEarned = arg.Bonus
				r.ClaimedAt = d.tick()
				n++
			}
		}
	}
	return n, nil
}

func (d *memData) ActivateReferrals(_ context.Context, referredUserID uuid.UUID) (int64, error) {
	var n int64
	for i := range d.referrals {
		r := &d.referrals[i]
		if r.ReferredUserID != nil && *r.ReferredUserID == referredUserID && r.Status == "pending" {
			r.Status = "active"
			r.ActivatedAt = d.tick()
			n++
		}
	}
	return n, nil
}

func (d *memData) CountReferrals(context.Context) (int64, error) {
	return int64(len(d.referrals)), nil
}

func missionKey(userID uuid.UUID, missionID string) string {
	return userID.String() + "/" + missionID
}

func (d *memData) GetMissionRecord(_ context.Context, arg repository.GetMissionRecordParams) (repository.MissionRecord, error) {
	rec, ok := d.missions[missionKey(arg.UserID, arg.MissionID)]
	if !ok {
		return repository.MissionRecord{}, pgx.ErrNoRows
	}
	return rec, nil
}

func (d *memData) ListMissionRecords(_ context.Context, userID uuid.UUID) ([]repository.MissionRecord, error) {
	var out []repository.MissionRecord
	for _, rec := range d.missions {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (d *memData) UpsertMissionRecord(_ context.Context, arg repository.UpsertMissionRecordParams) (repository.MissionRecord, error) {
	key := missionKey(arg.UserID, arg.MissionID)
	rec, exists := d.missions[key]
	if exists && rec.Status == "claimed" && arg.Status != "claimed" {
		return repository.MissionRecord{}, pgx.ErrNoRows
	}
	claimedAt := arg.ClaimedAt
	if exists && rec.ClaimedAt.Valid {
		claimedAt = rec.ClaimedAt
	}
	rec = repository.MissionRecord{
		UserID:    arg.UserID,
		MissionID: arg.MissionID,
		Status:    arg.Status,
		Reward:    arg.Reward,
		ClaimedAt: claimedAt,
		UpdatedAt: d.tick(),
	}
	d.missions[key] = rec
	return rec, nil
}

func (d *memData) GetSetting(_ context.Context, key string) (string, error) {
	v, ok := d.settings[key]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return v, nil
}

func (d *memData) SetSetting(_ context.Context, arg repository.SetSettingParams) error {
	d.settings[arg.Key] = arg.Value
	return nil
}

var _ repository.Store = (*memStore)(nil)

// recordingNotifier keeps every notification it is handed.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (r *recordingNotifier) Notify(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) all() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notification(nil), r.sent...)
}

// Calls made outside InTx go through these wrappers so they never observe
// the data while a transaction publishes its copy.

func (s *memStore) locked() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memStore) CreateUser(ctx context.Context, arg repository.CreateUserParams) (repository.User, error) {
	defer s.locked()()
	return s.memData.CreateUser(ctx, arg)
}

func (s *memStore) GetUserByID(ctx context.Context, id uuid.UUID) (repository.User, error) {
	defer s.locked()()
	return s.memData.GetUserByID(ctx, id)
}

func (s *memStore) GetUserForUpdate(ctx context.Context, id uuid.UUID) (repository.User, error) {
	defer s.locked()()
	return s.memData.GetUserForUpdate(ctx, id)
}

func (s *memStore) GetUserByTelegramID(ctx context.Context, telegramID int64) (repository.User, error) {
	defer s.locked()()
	return s.memData.GetUserByTelegramID(ctx, telegramID)
}

func (s *memStore) GetUserByEmail(ctx context.Context, email string) (repository.User, error) {
	defer s.locked()()
	return s.memData.GetUserByEmail(ctx, email)
}

func (s *memStore) GetUserByReferralCode(ctx context.Context, code string) (repository.User, error) {
	defer s.locked()()
	return s.memData.GetUserByReferralCode(ctx, code)
}

func (s *memStore) SetUserBalances(ctx context.Context, arg repository.SetUserBalancesParams) (repository.User, error) {
	defer s.locked()()
	return s.memData.SetUserBalances(ctx, arg)
}

func (s *memStore) LinkTelegram(ctx context.Context, arg repository.LinkTelegramParams) (repository.User, error) {
	defer s.locked()()
	return s.memData.LinkTelegram(ctx, arg)
}

func (s *memStore) UnlinkTelegram(ctx context.Context, id uuid.UUID) error {
	defer s.locked()()
	return s.memData.UnlinkTelegram(ctx, id)
}

func (s *memStore) CountUsers(ctx context.Context) (int64, error) {
	defer s.locked()()
	return s.memData.CountUsers(ctx)
}

func (s *memStore) CountUserActivity(ctx context.Context, id uuid.UUID) (int64, error) {
	defer s.locked()()
	return s.memData.CountUserActivity(ctx, id)
}

func (s *memStore) CreateTransaction(ctx context.Context, arg repository.CreateTransactionParams) (repository.Transaction, error) {
	defer s.locked()()
	return s.memData.CreateTransaction(ctx, arg)
}

func (s *memStore) GetTransaction(ctx context.Context, id uuid.UUID) (repository.Transaction, error) {
	defer s.locked()()
	return s.memData.GetTransaction(ctx, id)
}

func (s *memStore) GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (repository.Transaction, error) {
	defer s.locked()()
	return s.memData.GetTransactionForUpdate(ctx, id)
}

func (s *memStore) GetTransactionByIdempotencyKey(ctx context.Context, key string) (repository.Transaction, error) {
	defer s.locked()()
	return s.memData.GetTransactionByIdempotencyKey(ctx, key)
}

func (s *memStore) SetTransactionStatus(ctx context.Context, arg repository.SetTransactionStatusParams) (int64, error) {
	defer s.locked()()
	return s.memData.SetTransactionStatus(ctx, arg)
}

func (s *memStore) ListPendingTransactions(ctx context.Context) ([]repository.Transaction, error) {
	defer s.locked()()
	return s.memData.ListPendingTransactions(ctx)
}

func (s *memStore) ListUserTransactions(ctx context.Context, arg repository.ListUserTransactionsParams) ([]repository.Transaction, error) {
	defer s.locked()()
	return s.memData.ListUserTransactions(ctx, arg)
}

func (s *memStore) ListTransactions(ctx context.Context, limit int32) ([]repository.Transaction, error) {
	defer s.locked()()
	return s.memData.ListTransactions(ctx, limit)
}

func (s *memStore) CountRecentPendingWithdrawals(ctx context.Context, arg repository.CountRecentPendingWithdrawalsParams) (int64, error) {
	defer s.locked()()
	return s.memData.CountRecentPendingWithdrawals(ctx, arg)
}

func (s *memStore) CountPendingTransactions(ctx context.Context) (int64, error) {
	defer s.locked()()
	return s.memData.CountPendingTransactions(ctx)
}

func (s *memStore) SumCompletedTransactions(ctx context.Context, txType string) (decimal.Decimal, error) {
	defer s.locked()()
	return s.memData.SumCompletedTransactions(ctx, txType)
}

func (s *memStore) CreateReferral(ctx context.Context, arg repository.CreateReferralParams) (repository.Referral, error) {
	defer s.locked()()
	return s.memData.CreateReferral(ctx, arg)
}

func (s *memStore) ListReferralsByReferrer(ctx context.Context, referrerID uuid.UUID) ([]repository.Referral, error) {
	defer s.locked()()
	return s.memData.ListReferralsByReferrer(ctx, referrerID)
}

func (s *memStore) ListClaimableReferralsForUpdate(ctx context.Context, referrerID uuid.UUID) ([]repository.Referral, error) {
	defer s.locked()()
	return s.memData.ListClaimableReferralsForUpdate(ctx, referrerID)
}

func (s *memStore) StampReferralBonus(ctx context.Context, arg repository.StampReferralBonusParams) (int64, error) {
	defer s.locked()()
	return s.memData.StampReferralBonus(ctx, arg)
}

func (s *memStore) ActivateReferrals(ctx context.Context, referredUserID uuid.UUID) (int64, error) {
	defer s.locked()()
	return s.memData.ActivateReferrals(ctx, referredUserID)
}

func (s *memStore) CountReferrals(ctx context.Context) (int64, error) {
	defer s.locked()()
	return s.memData.CountReferrals(ctx)
}

func (s *memStore) GetMissionRecord(ctx context.Context, arg repository.GetMissionRecordParams) (repository.MissionRecord, error) {
	defer s.locked()()
	return s.memData.GetMissionRecord(ctx, arg)
}

func (s *memStore) ListMissionRecords(ctx context.Context, userID uuid.UUID) ([]repository.MissionRecord, error) {
	defer s.locked()()
	return s.memData.ListMissionRecords(ctx, userID)
}

func (s *memStore) UpsertMissionRecord(ctx context.Context, arg repository.UpsertMissionRecordParams) (repository.MissionRecord, error) {
	defer s.locked()()
	return s.memData.UpsertMissionRecord(ctx, arg)
}

func (s *memStore) GetSetting(ctx context.Context, key string) (string, error) {
	defer s.locked()()
	return s.memData.GetSetting(ctx, key)
}

func (s *memStore) SetSetting(ctx context.Context, arg repository.SetSettingParams) error {
	defer s.locked()()
	return s.memData.SetSetting(ctx, arg)
}
