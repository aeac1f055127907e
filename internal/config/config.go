package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required,notEmpty"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	RedisURL    string `env:"REDIS_URL"`

	// Database pool
	DBMaxConns int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns int32 `env:"DB_MIN_CONNS" envDefault:"2"`

	// Web app opened from the bot
	AppURL string `env:"APP_URL" envDefault:"https://minety.com"`

	// Webhook mode; long polling when empty
	WebhookURL    string `env:"WEBHOOK_URL"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`

	// HTTP API
	Port      int    `env:"PORT" envDefault:"3000"`
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	// Admin
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`
	RateLimitPerMinute int  `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	NotifyQueueSize    int  `env:"NOTIFY_QUEUE_SIZE" envDefault:"256"`

	// Deposit addresses per network, e.g. "TRC20:T...,BEP20:0x..."
	DepositAddresses map[string]string `env:"DEPOSIT_ADDRESSES" envSeparator:"," envKeyValSeparator:":"`

	// Telegram logging
	LogTelegramChatID    int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError        int   `env:"LOG_TOPIC_ERROR"`
	LogTopicRegistration int   `env:"LOG_TOPIC_REGISTRATION"`
	LogTopicWithdrawal   int   `env:"LOG_TOPIC_WITHDRAWAL"`
	LogTopicDeposit      int   `env:"LOG_TOPIC_DEPOSIT"`
	LogTopicApproval     int   `env:"LOG_TOPIC_APPROVAL"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func (c *Config) AdminIDsString() string {
	parts := make([]string, len(c.AdminIDs))
	for i, id := range c.AdminIDs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WebAppURL returns the web app link carrying a start parameter.
func (c *Config) WebAppURL(startParam string) string {
	return strings.TrimRight(c.AppURL, "/") + "?tgWebAppStartParam=" + startParam
}

// ReferralLink returns the public referral landing page for a code.
func (c *Config) ReferralLink(code string) string {
	return strings.TrimRight(c.AppURL, "/") + "/ref/" + code
}
