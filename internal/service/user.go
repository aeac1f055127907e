package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pinodelabs/pinode/internal/config"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/repository"
)

type UserService struct {
	store    repository.Store
	notifier Notifier
	events   EventLog
}

func NewUserService(store repository.Store, notifier Notifier, events EventLog) *UserService {
	return &UserService{store: store, notifier: orNopNotifier(notifier), events: orNopEventLog(events)}
}

// TelegramProfile is the part of a Telegram user we keep.
type TelegramProfile struct {
	ID        int64
	Username  string
	FirstName string
}

// FindOrCreateByTelegram returns the account linked to the Telegram user,
// creating one on first contact. referralCode is only used on creation.
func (s *UserService) FindOrCreateByTelegram(ctx context.Context, p TelegramProfile, referralCode string, isAdmin bool) (*domain.User, bool, error) {
	row, err := s.store.GetUserByTelegramID(ctx, p.ID)
	if err == nil {
		return rowToUser(row), false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("get user: %w", err)
	}

	telegramID := p.ID
	user, err := s.create(ctx, repository.CreateUserParams{
		Username:         p.FirstName,
		TelegramID:       &telegramID,
		TelegramUsername: p.Username,
		IsAdmin:          isAdmin,
	}, referralCode)
	if errors.Is(err, domain.ErrTelegramIDTaken) {
		// Another update for the same chat won the insert.
		row, err := s.store.GetUserByTelegramID(ctx, p.ID)
		if err != nil {
			return nil, false, fmt.Errorf("get user: %w", err)
		}
		return rowToUser(row), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

type RegisterRequest struct {
	Email        string
	Username     string
	ReferralCode string
}

// Register creates a web account identified by email.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	email := normalizeEmail(req.Email)
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return nil, domain.ErrInvalidEmail
	}
	return s.create(ctx, repository.CreateUserParams{
		Email:    &email,
		Username: strings.TrimSpace(req.Username),
	}, strings.TrimSpace(req.ReferralCode))
}

func (s *UserService) create(ctx context.Context, params repository.CreateUserParams, referralCode string) (*domain.User, error) {
	var (
		created  repository.User
		referrer *repository.User
	)

	for attempt := 0; attempt < config.ReferralCodeAttempts; attempt++ {
		code, err := generateReferralCode()
		if err != nil {
			return nil, fmt.Errorf("generate referral code: %w", err)
		}
		params.ID = uuid.New()
		params.ReferralCode = code

		err = s.store.InTx(ctx, func(q repository.Querier) error {
			ref, err := resolveReferrer(ctx, q, referralCode)
			if err != nil {
				return err
			}
			params.ReferredByID = nil
			if ref != nil {
				params.ReferredByID = &ref.ID
			}

			row, err := q.CreateUser(ctx, params)
			if err != nil {
				return err
			}
			referrer, created = ref, row
			return attributeReferral(ctx, q, ref, row)
		})
		if errors.Is(err, domain.ErrReferralCodeTaken) {
			continue
		}
		if err != nil {
			if domain.KindOf(err) != domain.KindInternal {
				return nil, err
			}
			return nil, fmt.Errorf("create user: %w", err)
		}

		user := rowToUser(created)
		referredBy := ""
		if referrer != nil {
			referredBy = referrer.ReferralCode
			s.notifier.Notify(domain.Notification{
				Kind:    domain.NotifyNewReferral,
				UserID:  referrer.ID,
				Subject: user.DisplayName(),
			})
		}
		s.events.LogRegistration(user, referredBy)
		return user, nil
	}
	return nil, fmt.Errorf("failed to generate unique referral code after %d attempts", config.ReferralCodeAttempts)
}

// LinkTelegram attaches a Telegram identity to the account registered with
// email. An email-less account auto-provisioned for that Telegram user is
// detached first, provided it owns no balance, ledger entries or referrals.
// Admin rights of the detached account move to the linked one.
func (s *UserService) LinkTelegram(ctx context.Context, email string, p TelegramProfile) (*domain.User, error) {
	var linked repository.User

	err := s.store.InTx(ctx, func(q repository.Querier) error {
		target, err := q.GetUserByEmail(ctx, normalizeEmail(email))
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get user by email: %w", err)
		}

		isAdmin := false
		current, err := q.GetUserByTelegramID(ctx, p.ID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return fmt.Errorf("get user by telegram id: %w", err)
		case current.ID == target.ID:
		case current.Email != nil || !current.MinedBalance.IsZero() || !current.NetworkBalance.IsZero():
			return domain.ErrTelegramAlreadyLinked
		default:
			activity, err := q.CountUserActivity(ctx, current.ID)
			if err != nil {
				return fmt.Errorf("count placeholder activity: %w", err)
			}
			if activity > 0 {
				return domain.ErrTelegramAccountInUse
			}
			if err := q.UnlinkTelegram(ctx, current.ID); err != nil {
				return fmt.Errorf("unlink placeholder: %w", err)
			}
			isAdmin = current.IsAdmin
		}

		linked, err = q.LinkTelegram(ctx, repository.LinkTelegramParams{
			ID:               target.ID,
			TelegramID:       p.ID,
			TelegramUsername: p.Username,
			IsAdmin:          isAdmin,
		})
		if err != nil {
			return fmt.Errorf("link telegram: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rowToUser(linked), nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return rowToUser(row), nil
}

func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	row, err := s.store.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return rowToUser(row), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
