package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolSize bounds the connection pool. Zero values keep the pgx defaults.
type PoolSize struct {
	Max int32
	Min int32
}

// NewPool opens a pgx pool and checks the server is reachable.
func NewPool(ctx context.Context, databaseURL string, size PoolSize) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if size.Max > 0 {
		cfg.MaxConns = size.Max
	}
	if size.Min > 0 && size.Min <= cfg.MaxConns {
		cfg.MinConns = size.Min
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database pool ready", "max_conns", cfg.MaxConns, "min_conns", cfg.MinConns)
	return pool, nil
}

// migrateLogger forwards golang-migrate progress to slog at debug level.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) {
	slog.Debug("migrate: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (migrateLogger) Verbose() bool { return false }

// RunMigrations applies every pending up migration found in migrationsFS.
// A dirty schema is reported instead of being migrated further.
func RunMigrations(databaseURL string, migrationsFS fs.FS) error {
	src, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()
	m.Log = migrateLogger{}

	if version, dirty, err := m.Version(); err == nil && dirty {
		return fmt.Errorf("schema version %d is dirty, fix it manually", version)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	slog.Info("migrations applied", "version", version)
	return nil
}
