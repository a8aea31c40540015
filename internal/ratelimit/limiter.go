// Package ratelimit bounds how often an actor may repeat an action inside a
// fixed time window. Windows reset wholesale when they expire; the burst a
// client can achieve across a window boundary is an accepted tradeoff for
// O(1) space per key.
package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Result reports the outcome of a single check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns the whole seconds a denied caller should wait, rounded
// up, never below zero.
func (r Result) RetryAfter(now time.Time) int {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return secs
}

// Store is an external counter store shared across processes. Increment bumps
// the counter for the given window bucket and returns the count after the
// increment.
type Store interface {
	Increment(ctx context.Context, key string, windowStart time.Time, window time.Duration) (int64, error)
}

type window struct {
	count  int
	start  time.Time
	length time.Duration
}

// Limiter counts actions per key inside fixed windows. With a Store attached
// the counters live in the store and survive across processes; otherwise an
// internal map holds them, swept lazily on every check.
//
// Store failures never block a request: the limiter fails open and reports
// the full limit as remaining. Availability wins over strict throttling here;
// a broken store must not turn into an outage.
type Limiter struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithStore attaches an external counter store.
func WithStore(store Store) Option {
	return func(l *Limiter) { l.store = store }
}

// WithLogger attaches a logger for fail-open reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) { l.logger = logger }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter constructs a Limiter.
func NewLimiter(opts ...Option) *Limiter {
	l := &Limiter{
		now:     time.Now,
		windows: make(map[string]*window),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check records one action for the key and decides whether it is allowed.
// The first action in a window always passes; once count reaches limit,
// further actions are denied until the window expires and is replaced.
func (l *Limiter) Check(ctx context.Context, key string, limit int, windowLen time.Duration) Result {
	now := l.now()
	if l.store != nil {
		return l.checkStore(ctx, key, limit, windowLen, now)
	}
	return l.checkLocal(key, limit, windowLen, now)
}

func (l *Limiter) checkLocal(key string, limit int, windowLen time.Duration, now time.Time) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || !now.Before(w.start.Add(w.length)) {
		// Absent and expired are the same state: the counter is replaced,
		// never decremented.
		w = &window{count: 1, start: now, length: windowLen}
		l.windows[key] = w
		return Result{Allowed: true, Limit: limit, Remaining: limit - 1, ResetAt: now.Add(windowLen)}
	}

	resetAt := w.start.Add(w.length)
	if w.count >= limit {
		return Result{Allowed: false, Limit: limit, Remaining: 0, ResetAt: resetAt}
	}
	w.count++
	return Result{Allowed: true, Limit: limit, Remaining: limit - w.count, ResetAt: resetAt}
}

// sweep drops windows whose reset time has passed, bounding memory to keys
// with at least one action inside their window. Expiry is lazy; no
// background timer.
func (l *Limiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if !now.Before(w.start.Add(w.length)) {
			delete(l.windows, key)
		}
	}
}

func (l *Limiter) checkStore(ctx context.Context, key string, limit int, windowLen time.Duration, now time.Time) Result {
	start := now.Truncate(windowLen)
	resetAt := start.Add(windowLen)
	count, err := l.store.Increment(ctx, key, start, windowLen)
	if err != nil {
		if l.logger != nil {
			l.logger.Warn("rate limit store unavailable, failing open",
				slog.String("key", key), slog.Any("error", err))
		}
		return Result{Allowed: true, Limit: limit, Remaining: limit, ResetAt: resetAt}
	}
	if count > int64(limit) {
		return Result{Allowed: false, Limit: limit, Remaining: 0, ResetAt: resetAt}
	}
	return Result{Allowed: true, Limit: limit, Remaining: limit - int(count), ResetAt: resetAt}
}
