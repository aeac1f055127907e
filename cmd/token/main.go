// Command token mints an API bearer token for an existing account.
//
//	go run ./cmd/token -email alice@example.com -ttl 2h
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pinodelabs/pinode/internal/auth"
	"github.com/pinodelabs/pinode/internal/config"
	"github.com/pinodelabs/pinode/internal/repository"
)

type tokenConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	JWTSecret   string `env:"JWT_SECRET,required,notEmpty"`
}

func main() {
	var (
		userID = flag.String("user", "", "user id")
		email  = flag.String("email", "", "user email, used when -user is empty")
		ttl    = flag.Duration("ttl", config.DefaultTokenTTL, "token lifetime")
	)
	flag.Parse()

	if err := run(*userID, *email, *ttl); err != nil {
		slog.Error("mint token", "error", err)
		os.Exit(1)
	}
}

func run(userID, email string, ttl time.Duration) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	var cfg tokenConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, repository.PoolSize{Max: 2})
	if err != nil {
		return err
	}
	defer pool.Close()
	queries := repository.New(pool)

	var user repository.User
	switch {
	case userID != "":
		id, err := uuid.Parse(userID)
		if err != nil {
			return fmt.Errorf("parse user id: %w", err)
		}
		user, err = queries.GetUserByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
	case email != "":
		user, err = queries.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		if err != nil {
			return fmt.Errorf("get user by email: %w", err)
		}
	default:
		return errors.New("one of -user or -email is required")
	}

	token, err := auth.NewManager([]byte(cfg.JWTSecret)).Issue(user.ID, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
