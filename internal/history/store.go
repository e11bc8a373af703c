// Package history persists a log of prediction calls. SQLite is the default
// embedded store; a postgres:// DSN selects a shared PostgreSQL database.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"predictd/internal/common/fsutil"
	"predictd/pkg/types"
)

// Entry is one logged /predict call.
type Entry struct {
	RequestID    string    `db:"request_id"`
	Model        string    `db:"model"`
	Domain       string    `db:"domain"`
	Records      int       `db:"records"`
	ProcessingMS float64   `db:"processing_ms"`
	Success      bool      `db:"success"`
	Error        string    `db:"error"`
	CreatedAt    time.Time `db:"created_at"`
}

// Store is a SQL-backed prediction log.
type Store struct {
	db     *sqlx.DB
	driver string
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS predictions (
    id INTEGER PRIMARY KEY,
    request_id TEXT NOT NULL DEFAULT '',
    model TEXT NOT NULL DEFAULT '',
    domain TEXT NOT NULL DEFAULT '',
    records INTEGER NOT NULL,
    processing_ms REAL NOT NULL,
    success INTEGER NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_model ON predictions(model);
CREATE INDEX IF NOT EXISTS idx_predictions_created ON predictions(created_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS predictions (
    id BIGSERIAL PRIMARY KEY,
    request_id TEXT NOT NULL DEFAULT '',
    model TEXT NOT NULL DEFAULT '',
    domain TEXT NOT NULL DEFAULT '',
    records INTEGER NOT NULL,
    processing_ms DOUBLE PRECISION NOT NULL,
    success SMALLINT NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_model ON predictions(model);
CREATE INDEX IF NOT EXISTS idx_predictions_created ON predictions(created_at);
`

// driverFor maps a history location to a database/sql driver name.
func driverFor(path string) string {
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return "postgres"
	}
	return "sqlite3"
}

// Open opens (or creates) the log at path: a SQLite file, the special
// ":memory:" database, or a postgres:// connection URL.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history: empty database path")
	}
	driver := driverFor(path)
	dsn, schema := path, postgresSchema
	if driver == "sqlite3" {
		schema = sqliteSchema
		if path != ":memory:" {
			p, err := fsutil.ResolvePath(path)
			if err != nil {
				return nil, err
			}
			dsn = p + "?_journal_mode=WAL&_busy_timeout=5000"
		}
	}
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if driver == "sqlite3" {
		// A single connection keeps ":memory:" databases shared and serializes writes.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db, driver: driver}, nil
}

// Record appends an entry.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	success := 0
	if e.Success {
		success = 1
	}
	q := s.db.Rebind(`INSERT INTO predictions
        (request_id, model, domain, records, processing_ms, success, error, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, q, e.RequestID, e.Model, e.Domain, e.Records, e.ProcessingMS, success, e.Error, e.CreatedAt); err != nil {
		return fmt.Errorf("record prediction: %w", err)
	}
	return nil
}

type summaryRow struct {
	Calls    int64   `db:"calls"`
	Records  int64   `db:"records"`
	Failures int64   `db:"failures"`
	AvgMS    float64 `db:"avg_ms"`
}

// Summary aggregates the whole log.
func (s *Store) Summary(ctx context.Context) (types.HistoryStats, error) {
	var row summaryRow
	err := s.db.GetContext(ctx, &row, `SELECT
        COUNT(*) AS calls,
        COALESCE(SUM(CASE WHEN success = 1 THEN records ELSE 0 END), 0) AS records,
        COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0) AS failures,
        COALESCE(AVG(CASE WHEN success = 1 THEN processing_ms END), 0) AS avg_ms
        FROM predictions`)
	if err != nil {
		return types.HistoryStats{}, fmt.Errorf("history summary: %w", err)
	}
	return types.HistoryStats{Calls: row.Calls, Records: row.Records, Failures: row.Failures, AvgProcessingMS: row.AvgMS}, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []Entry
	q := s.db.Rebind(`SELECT request_id, model, domain, records, processing_ms, success, error, created_at
        FROM predictions ORDER BY id DESC LIMIT ?`)
	if err := s.db.SelectContext(ctx, &out, q, limit); err != nil {
		return nil, fmt.Errorf("history recent: %w", err)
	}
	return out, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
