package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// New creates a Redis client for the shared rate-limit counters. A failed
// ping is reported but not fatal: the limiter fails open without Redis, and
// the process must come up either way.
func New(ctx context.Context, addr string, logger *slog.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil && logger != nil {
		logger.Warn("platform/cache: redis ping", slog.Any("error", err))
	}

	return client
}
