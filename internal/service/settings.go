package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/pinodelabs/pinode/internal/config"
	"github.com/pinodelabs/pinode/internal/repository"
	"github.com/shopspring/decimal"
)

type SettingsService struct {
	store repository.Querier
}

func NewSettingsService(store repository.Querier) *SettingsService {
	return &SettingsService{store: store}
}

func clampMinWithdraw(v decimal.Decimal) decimal.Decimal {
	return decimal.Max(v, config.PlatformMinWithdrawDecimal)
}

// MinWithdraw reads the minimum withdrawal, never below the platform floor.
// A stored value under the floor is rewritten.
func (s *SettingsService) MinWithdraw(ctx context.Context) (decimal.Decimal, error) {
	raw, err := s.store.GetSetting(ctx, config.SettingMinWithdraw)
	if errors.Is(err, pgx.ErrNoRows) {
		return config.PlatformMinWithdrawDecimal, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("get setting: %w", err)
	}

	v, err := decimal.NewFromString(raw)
	if err != nil {
		slog.Warn("invalid min_withdraw setting, using floor", "value", raw, "error", err)
		return config.PlatformMinWithdrawDecimal, nil
	}

	clamped := clampMinWithdraw(v)
	if !clamped.Equal(v) {
		if err := s.store.SetSetting(ctx, repository.SetSettingParams{Key: config.SettingMinWithdraw, Value: clamped.String()}); err != nil {
			slog.Warn("rewrite clamped min_withdraw", "error", err)
		}
	}
	return clamped, nil
}

// SetMinWithdraw stores v clamped to the platform floor and returns the
// stored value.
func (s *SettingsService) SetMinWithdraw(ctx context.Context, v decimal.Decimal) (decimal.Decimal, error) {
	clamped := clampMinWithdraw(v)
	if err := s.store.SetSetting(ctx, repository.SetSettingParams{Key: config.SettingMinWithdraw, Value: clamped.String()}); err != nil {
		return decimal.Zero, fmt.Errorf("set setting: %w", err)
	}
	return clamped, nil
}
