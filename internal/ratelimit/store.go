package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps window counters in Redis so several processes share the
// same budget. Keys are bucketed by window start, so INCR on the bucket is
// the whole state machine; expired buckets age out via PEXPIRE.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Increment implements Store.
func (s *RedisStore) Increment(ctx context.Context, key string, windowStart time.Time, window time.Duration) (int64, error) {
	bucket := fmt.Sprintf("ratelimit:%s:%d", key, windowStart.UnixMilli())

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	// Expire one window past reset so a denied client polling the boundary
	// still reads the same bucket.
	pipe.PExpire(ctx, bucket, 2*window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("ratelimit: increment %s: %w", bucket, err)
	}
	return incr.Val(), nil
}
