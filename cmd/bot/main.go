package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pinodelabs/pinode"
	"github.com/pinodelabs/pinode/internal/api"
	"github.com/pinodelabs/pinode/internal/auth"
	"github.com/pinodelabs/pinode/internal/config"
	"github.com/pinodelabs/pinode/internal/handler"
	"github.com/pinodelabs/pinode/internal/middleware"
	"github.com/pinodelabs/pinode/internal/repository"
	"github.com/pinodelabs/pinode/internal/service"
	"github.com/pinodelabs/pinode/internal/telegram"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, repository.PoolSize{
		Max: cfg.DBMaxConns,
		Min: cfg.DBMinConns,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(pinode.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Optional redis for the claim cache and rate limiting
	var (
		rdb        *redis.Client
		claimCache service.ClaimCache
	)
	if cfg.RedisURL != "" {
		rdb, err = repository.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		claimCache = repository.NewClaimCache(rdb, config.ClaimCacheTTL)
	} else {
		slog.Warn("REDIS_URL not set, claim cache and rate limiting disabled")
	}

	store := repository.NewStore(pool)

	// The bot is created last; the sender and log channel are bound to it then
	sender := telegram.NewSender(nil)
	tgLogger := telegram.NewTelegramLogger(nil, cfg)
	dispatcher := service.NewDispatcher(store, sender, telegram.FormatNotification, cfg.NotifyQueueSize)

	// Initialize services
	userService := service.NewUserService(store, dispatcher, tgLogger)
	referralService := service.NewReferralService(store, dispatcher)
	missionService := service.NewMissionService(store, claimCache, dispatcher)
	exchangeService := service.NewExchangeService(store, dispatcher)
	settingsService := service.NewSettingsService(store)
	withdrawService := service.NewWithdrawService(store, settingsService, tgLogger)
	ledgerService := service.NewLedgerService(store, cfg.DepositAddresses, tgLogger)
	approvalService := service.NewApprovalService(store, dispatcher, tgLogger)
	statsService := service.NewStatsService(store)

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(tgLogger),
			middleware.Logging(),
			middleware.RateLimit(repository.NewRateLimiter(rdb), cfg.RateLimitPerMinute),
			middleware.UserLoader(userService, cfg),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h != nil {
				h.HandleDefault(ctx, b, update)
			}
		}),
	}
	if cfg.WebhookSecret != "" {
		opts = append(opts, bot.WithWebhookSecretToken(cfg.WebhookSecret))
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}
	sender.Bind(b)
	tgLogger.Bind(b)

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}
	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	// Initialize handler
	h = handler.New(handler.Deps{
		Bot:             b,
		Cfg:             cfg,
		UserService:     userService,
		ReferralService: referralService,
		MissionService:  missionService,
		ExchangeService: exchangeService,
		WithdrawService: withdrawService,
		LedgerService:   ledgerService,
		ApprovalService: approvalService,
		StatsService:    statsService,
		TgLogger:        tgLogger,
	})
	h.Register()

	go dispatcher.Run(ctx)

	deps := api.Deps{
		Tokens:    auth.NewManager([]byte(cfg.JWTSecret)),
		Users:     userService,
		Ledger:    ledgerService,
		Exchange:  exchangeService,
		Withdraw:  withdrawService,
		Referrals: referralService,
		Missions:  missionService,
		Approvals: approvalService,
		Settings:  settingsService,
		Stats:     statsService,
	}
	if cfg.WebhookURL != "" {
		deps.Webhook = b.WebhookHandler()
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- serve(ctx, fmt.Sprintf(":%d", cfg.Port), api.NewRouter(deps))
	}()

	// Start bot
	if cfg.WebhookURL != "" {
		if _, err := b.SetWebhook(ctx, &bot.SetWebhookParams{
			URL:                cfg.WebhookURL,
			SecretToken:        cfg.WebhookSecret,
			DropPendingUpdates: cfg.DropPendingUpdates,
		}); err != nil {
			slog.Error("failed to set webhook", "error", err)
			os.Exit(1)
		}
		slog.Info("starting bot in webhook mode", "username", me.Username, "url", cfg.WebhookURL)
		b.StartWebhook(ctx)
	} else {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{
			DropPendingUpdates: cfg.DropPendingUpdates,
		}); err != nil {
			slog.Warn("failed to delete webhook", "error", err)
		}
		slog.Info("starting bot with long polling", "username", me.Username, "id", me.ID)
		b.Start(ctx)
	}

	if err := <-serveErr; err != nil {
		slog.Error("http server", "error", err)
	}

	// Graceful shutdown
	slog.Info("bot stopped gracefully")
}

// serve runs the HTTP API until ctx is done, then shuts it down within
// config.ShutdownTimeout.
func serve(ctx context.Context, addr string, router http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return <-errCh
}
