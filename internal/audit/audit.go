// Package audit appends a structured record for every permission decision.
// Records are write-once; retention and rotation belong to whoever owns the
// sink.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JungWooHyub/le-feu-sub000/internal/rbac"
)

// Record captures one permission decision.
type Record struct {
	ID              string
	At              time.Time
	ActorID         string
	ActorRole       rbac.Role
	Permission      rbac.Permission
	Action          string
	Allowed         bool
	Reason          string
	ResourceOwnerID string
}

// Sink receives finished records.
type Sink interface {
	Write(ctx context.Context, rec Record) error
}

// Logger writes decision records to a sink, best-effort. A failed write is
// reported and swallowed: losing an audit line must neither deny legitimate
// access nor silently grant it.
type Logger struct {
	sink   Sink
	logger *slog.Logger
	now    func() time.Time
}

// NewLogger constructs a Logger.
func NewLogger(sink Sink, logger *slog.Logger) *Logger {
	return &Logger{sink: sink, logger: logger, now: time.Now}
}

// Record fills in ID and timestamp and hands the record to the sink. Safe to
// call with a nil receiver or nil sink.
func (l *Logger) Record(ctx context.Context, rec Record) {
	if l == nil || l.sink == nil {
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.At.IsZero() {
		rec.At = l.now()
	}
	if err := l.sink.Write(ctx, rec); err != nil && l.logger != nil {
		l.logger.Error("audit write failed",
			slog.String("actor", rec.ActorID),
			slog.String("permission", string(rec.Permission)),
			slog.Any("error", err))
	}
}

// SlogSink emits each record as a structured log line.
type SlogSink struct {
	Logger *slog.Logger
}

// Write implements Sink.
func (s SlogSink) Write(ctx context.Context, rec Record) error {
	if s.Logger == nil {
		return nil
	}
	s.Logger.Info("authz decision",
		slog.String("id", rec.ID),
		slog.Time("at", rec.At),
		slog.String("actor", rec.ActorID),
		slog.String("role", string(rec.ActorRole)),
		slog.String("permission", string(rec.Permission)),
		slog.String("action", rec.Action),
		slog.Bool("allowed", rec.Allowed),
		slog.String("reason", rec.Reason),
		slog.String("resource_owner", rec.ResourceOwnerID),
	)
	return nil
}

// PostgresSink appends records into audit_decisions.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink constructs a PostgresSink.
func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

// Write implements Sink.
func (s *PostgresSink) Write(ctx context.Context, rec Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_decisions (id, occurred_at, actor_id, actor_role, permission, action, allowed, reason, resource_owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))`,
		rec.ID, rec.At, rec.ActorID, string(rec.ActorRole), string(rec.Permission), rec.Action, rec.Allowed, rec.Reason, rec.ResourceOwnerID)
	return err
}
