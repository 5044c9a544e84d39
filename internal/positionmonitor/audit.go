package positionmonitor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/marvelquant/position-monitor/internal/messagequeue"
)

// ExitEvent is the record published and persisted whenever a position
// monitor emits a non-NoExit decision.
type ExitEvent struct {
	ExecutionID string
	Kind        ExitActionKind
	Symbol      string
	Reason      string
	OccurredAt  time.Time
}

// ExitAuditStore persists ExitEvents to the exit_audit_log Postgres table
// via database/sql + lib/pq, independent of the pooled connection
// internal/database uses for the rest of the application's storage.
type ExitAuditStore struct {
	db *sql.DB
}

// NewExitAuditStore opens a lib/pq connection and ensures the audit table exists.
func NewExitAuditStore(dsn string) (*ExitAuditStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("position-monitor: failed to open audit store: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("position-monitor: failed to ping audit store: %w", err)
	}

	store := &ExitAuditStore{db: db}
	if err := store.ensureSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *ExitAuditStore) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS exit_audit_log (
			id SERIAL PRIMARY KEY,
			execution_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			symbol TEXT,
			reason TEXT NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("position-monitor: failed to create exit_audit_log: %w", err)
	}
	return nil
}

func (s *ExitAuditStore) Insert(ctx context.Context, event ExitEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exit_audit_log (execution_id, kind, symbol, reason, occurred_at) VALUES ($1, $2, $3, $4, $5)`,
		event.ExecutionID, string(event.Kind), event.Symbol, event.Reason, event.OccurredAt,
	)
	return err
}

func (s *ExitAuditStore) Recent(ctx context.Context, executionID string, limit int) ([]ExitEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT execution_id, kind, symbol, reason, occurred_at FROM exit_audit_log
		 WHERE execution_id = $1 ORDER BY occurred_at DESC LIMIT $2`,
		executionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ExitEvent
	for rows.Next() {
		var e ExitEvent
		var kind string
		if err := rows.Scan(&e.ExecutionID, &kind, &e.Symbol, &e.Reason, &e.OccurredAt); err != nil {
			return nil, err
		}
		e.Kind = ExitActionKind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *ExitAuditStore) Close() error {
	return s.db.Close()
}

// auditCacheKey is the Redis list key holding the most recent exits for an execution.
func auditCacheKey(executionID string) string {
	return fmt.Sprintf("position-monitor:exits:%s", executionID)
}

// Publisher fans an ExitEvent out to the message bus (for websocket
// broadcast and downstream consumers), a Redis "recent exits" cache, and the
// Postgres audit log — in that order, synchronously on the caller's
// goroutine. The exit callbacks in wiring.go call it from a goroutine of
// their own, never from the tick goroutine.
type Publisher struct {
	messages *messagequeue.MessageService
	cache    *messagequeue.RedisClient
	store    *ExitAuditStore
	logger   Logger
}

func NewPublisher(messages *messagequeue.MessageService, cache *messagequeue.RedisClient, store *ExitAuditStore, logger Logger) *Publisher {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Publisher{messages: messages, cache: cache, store: store, logger: logger}
}

// PublishExit fans the event out. Each stage's failure is logged rather than
// returned, so an unavailable downstream does not stop the later stages, and
// the monitor has already committed the exit decision by the time this runs.
// The stages run one after another, so a slow downstream delays the caller.
func (p *Publisher) PublishExit(ctx context.Context, event ExitEvent) {
	if p.messages != nil {
		if err := p.messages.PublishSystemEvent(ctx, messagequeue.SystemAlert, event); err != nil {
			p.logger.Warn("exit event publish to message bus failed", "executionID", event.ExecutionID, "error", err.Error())
		}
	}
	if p.cache != nil {
		if err := p.cache.LPush(ctx, auditCacheKey(event.ExecutionID), event); err != nil {
			p.logger.Warn("exit event cache push failed", "executionID", event.ExecutionID, "error", err.Error())
		}
	}
	if p.store != nil {
		if err := p.store.Insert(ctx, event); err != nil {
			p.logger.Error("exit event audit insert failed", "executionID", event.ExecutionID, "error", err.Error())
		}
	}
}
