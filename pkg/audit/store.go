package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Record is one audited relay invocation.
type Record struct {
	// ID is a unique identifier, assigned by the Recorder when empty.
	ID string

	// StartedAt is when the invocation began.
	StartedAt time.Time

	// Outcome is the terminal classification ("completed", "error",
	// "cancelled").
	Outcome string

	// Segments is the number of segments emitted.
	Segments int

	// UpstreamStatus is the upstream HTTP status for rejections, 0 otherwise.
	UpstreamStatus int

	// DurationMS is the invocation duration in milliseconds.
	DurationMS int64

	// Error is the diagnostic error text for error outcomes, "" otherwise.
	Error string
}

const schema = `
CREATE TABLE IF NOT EXISTS relay_outcomes (
	id              TEXT PRIMARY KEY,
	started_at      INTEGER NOT NULL,
	outcome         TEXT NOT NULL,
	segments        INTEGER NOT NULL,
	upstream_status INTEGER NOT NULL,
	duration_ms     INTEGER NOT NULL,
	error           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_relay_outcomes_started_at ON relay_outcomes(started_at);
`

// Store persists relay outcome records in SQLite. It is safe for concurrent
// use.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the audit database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database %q: %w", path, err)
	}

	// WAL keeps writers from blocking the status/query reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure audit database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Insert writes one record.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO relay_outcomes (id, started_at, outcome, segments, upstream_status, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.UnixMilli(),
		rec.Outcome,
		rec.Segments,
		rec.UpstreamStatus,
		rec.DurationMS,
		rec.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, outcome, segments, upstream_status, duration_ms, error
		 FROM relay_outcomes ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var startedAt int64
		if err := rows.Scan(&rec.ID, &startedAt, &rec.Outcome, &rec.Segments,
			&rec.UpstreamStatus, &rec.DurationMS, &rec.Error); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		rec.StartedAt = time.UnixMilli(startedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the total number of records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM relay_outcomes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count audit records: %w", err)
	}
	return n, nil
}

// DeleteOlderThan removes records whose start time is before cutoff and
// returns how many were deleted.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM relay_outcomes WHERE started_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit records: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
