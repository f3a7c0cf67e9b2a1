package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var auditSchema = []string{`
CREATE TABLE IF NOT EXISTS attestation_audit (
	request_id     TEXT PRIMARY KEY,
	occurred_at    TIMESTAMPTZ NOT NULL,
	solver_address TEXT NOT NULL,
	intent_hash    TEXT NOT NULL,
	payment_id     TEXT,
	amount_cents   BIGINT NOT NULL,
	outcome        TEXT NOT NULL,
	detail         TEXT,
	request_ip     TEXT,
	duration_ms    BIGINT NOT NULL
)`,
	`ALTER TABLE attestation_audit ADD COLUMN IF NOT EXISTS client_request_id TEXT`,
	`CREATE INDEX IF NOT EXISTS attestation_audit_client_request_id ON attestation_audit (client_request_id)`,
}

const insertAuditEntry = `
INSERT INTO attestation_audit (
	request_id, client_request_id, occurred_at, solver_address, intent_hash,
	payment_id, amount_cents, outcome, detail, request_ip, duration_ms
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSink stores entries in the attestation_audit table.
type PostgresSink struct {
	db   execer
	pool *pgxpool.Pool
}

// NewPostgresSink connects to dsn and creates the audit table if needed.
func NewPostgresSink(ctx context.Context, dsn string) (*PostgresSink, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse audit database url: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect audit database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping audit database: %w", err)
	}

	s := &PostgresSink{db: pool, pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresSink) migrate(ctx context.Context) error {
	for _, stmt := range auditSchema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate audit table: %w", err)
		}
	}
	return nil
}

// Ingest inserts entry. The row key is the Recorder-assigned request id;
// the client's id is stored alongside and may repeat.
func (s *PostgresSink) Ingest(ctx context.Context, entry Entry) error {
	detail := entry.Result.Reason
	if entry.Result.Outcome == OutcomeError {
		detail = entry.Result.Message
	}

	_, err := s.db.Exec(ctx, insertAuditEntry,
		entry.RequestID,
		nullable(entry.ClientRequestID),
		time.Unix(entry.Timestamp, 0).UTC(),
		entry.SolverAddress,
		entry.IntentHash,
		nullable(entry.PaymentID),
		entry.AmountCents,
		string(entry.Result.Outcome),
		nullable(detail),
		nullable(entry.RequestIP),
		entry.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Close releases the connection pool
func (s *PostgresSink) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
