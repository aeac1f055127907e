package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NewRedis connects to the instance named by redisURL, e.g.
// redis://:password@localhost:6379/0.
func NewRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// ClaimCache remembers which missions a user has claimed. A nil client
// disables it; the ledger stays authoritative either way.
type ClaimCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewClaimCache(rdb *redis.Client, ttl time.Duration) *ClaimCache {
	return &ClaimCache{rdb: rdb, ttl: ttl}
}

func claimedKey(userID uuid.UUID) string {
	return "missions:claimed:" + userID.String()
}

func (c *ClaimCache) IsClaimed(ctx context.Context, userID uuid.UUID, missionID string) (bool, error) {
	if c == nil || c.rdb == nil {
		return false, nil
	}
	ok, err := c.rdb.SIsMember(ctx, claimedKey(userID), missionID).Result()
	if err != nil {
		return false, fmt.Errorf("sismember: %w", err)
	}
	return ok, nil
}

func (c *ClaimCache) MarkClaimed(ctx context.Context, userID uuid.UUID, missionID string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	key := claimedKey(userID)
	pipe := c.rdb.TxPipeline()
	pipe.SAdd(ctx, key, missionID)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mark claimed: %w", err)
	}
	return nil
}

// RateLimiter is a fixed one-minute window counter per chat.
type RateLimiter struct {
	rdb *redis.Client
}

func NewRateLimiter(rdb *redis.Client) *RateLimiter {
	return &RateLimiter{rdb: rdb}
}

// Hit increments the counter for chatID in the current window and returns
// the new count. Without redis every call counts as the first.
func (l *RateLimiter) Hit(ctx context.Context, chatID int64) (int64, error) {
	if l == nil || l.rdb == nil {
		return 1, nil
	}
	window := time.Now().Unix() / 60
	key := fmt.Sprintf("ratelimit:%d:%d", chatID, window)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate limit incr: %w", err)
	}
	return incr.Val(), nil
}
