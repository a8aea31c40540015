package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	at time.Time
}

func (c *fakeClock) now() time.Time { return c.at }

func (c *fakeClock) advance(d time.Duration) { c.at = c.at.Add(d) }

func TestCheckFixedWindow(t *testing.T) {
	clock := &fakeClock{at: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(WithClock(clock.now))

	const limit = 3
	window := time.Second

	wantAllowed := []bool{true, true, true, false}
	wantRemaining := []int{2, 1, 0, 0}
	for i := range wantAllowed {
		res := l.Check(context.Background(), "u1:post", limit, window)
		require.Equal(t, wantAllowed[i], res.Allowed, "call %d", i+1)
		require.Equal(t, wantRemaining[i], res.Remaining, "call %d", i+1)
		assert.Equal(t, clock.at.Add(window), res.ResetAt)
	}

	// The fifth call lands in a fresh window: counter replaced, not decayed.
	clock.advance(window)
	res := l.Check(context.Background(), "u1:post", limit, window)
	require.True(t, res.Allowed)
	require.Equal(t, 2, res.Remaining)
}

func TestCheckKeysAreIndependent(t *testing.T) {
	clock := &fakeClock{at: time.Now()}
	l := NewLimiter(WithClock(clock.now))

	for i := 0; i < 3; i++ {
		l.Check(context.Background(), "u1:comment", 3, time.Minute)
	}
	require.False(t, l.Check(context.Background(), "u1:comment", 3, time.Minute).Allowed)
	require.True(t, l.Check(context.Background(), "u2:comment", 3, time.Minute).Allowed)
}

func TestCheckSweepsExpiredKeys(t *testing.T) {
	clock := &fakeClock{at: time.Now()}
	l := NewLimiter(WithClock(clock.now))

	l.Check(context.Background(), "a", 5, time.Second)
	l.Check(context.Background(), "b", 5, time.Minute)
	clock.advance(2 * time.Second)
	l.Check(context.Background(), "c", 5, time.Minute)

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.windows["a"]; ok {
		t.Fatalf("expired key should have been swept")
	}
	if _, ok := l.windows["b"]; !ok {
		t.Fatalf("live key should survive the sweep")
	}
}

func TestRedisStoreCounts(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	clock := &fakeClock{at: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(WithStore(NewRedisStore(client)), WithClock(clock.now))

	for i := 0; i < 3; i++ {
		res := l.Check(context.Background(), "u1:like", 3, time.Minute)
		require.True(t, res.Allowed, "call %d", i+1)
		require.Equal(t, 2-i, res.Remaining)
	}
	res := l.Check(context.Background(), "u1:like", 3, time.Minute)
	require.False(t, res.Allowed)
	require.Equal(t, 0, res.Remaining)
}

type failingStore struct{}

func (failingStore) Increment(ctx context.Context, key string, windowStart time.Time, window time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

// A broken counter store must never block a legitimate request.
func TestCheckFailsOpenOnStoreError(t *testing.T) {
	l := NewLimiter(WithStore(failingStore{}))
	for i := 0; i < 50; i++ {
		res := l.Check(context.Background(), "u1:post", 10, time.Minute)
		require.True(t, res.Allowed)
		require.Equal(t, 10, res.Remaining)
	}
}

func TestCheckFailsOpenWhenRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l := NewLimiter(WithStore(NewRedisStore(client)))

	mr.Close()
	res := l.Check(context.Background(), "u1:post", 10, time.Minute)
	require.True(t, res.Allowed)
	require.Equal(t, 10, res.Remaining)
}

func TestMiddlewareDenialHeaders(t *testing.T) {
	clock := &fakeClock{at: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(WithClock(clock.now))
	policy := Policy{Action: "comment", Limit: 2, Window: time.Minute}

	handler := l.Middleware(policy)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	var rec *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		rec = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/comments", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		handler.ServeHTTP(rec, req)
	}

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestResultRetryAfterRoundsUp(t *testing.T) {
	now := time.Now()
	res := Result{ResetAt: now.Add(1500 * time.Millisecond)}
	require.Equal(t, 2, res.RetryAfter(now))
	res = Result{ResetAt: now.Add(-time.Second)}
	require.Equal(t, 0, res.RetryAfter(now))
}
