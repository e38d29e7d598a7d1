// Package history persists run results in a SQLite database so
// partial success stays observable across runs.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"tidyd/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	mode       TEXT NOT NULL,
	started_at TEXT NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	processed  INTEGER NOT NULL,
	moved      INTEGER NOT NULL,
	skipped    INTEGER NOT NULL,
	errors     INTEGER NOT NULL,
	duplicates INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Store manages run-history persistence backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open initializes or connects to the history database, creating
// parent directories and the schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts one completed run.
func (s *Store) Record(res *types.RunResult) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (
			run_id, source, mode, started_at, elapsed_ms,
			processed, moved, skipped, errors, duplicates
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID,
		res.Source,
		string(res.Mode),
		res.StartedAt.UTC().Format(time.RFC3339Nano),
		res.Elapsed.Milliseconds(),
		res.Processed,
		res.Moved,
		res.Skipped,
		res.Errors,
		res.DuplicatesFound,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(limit int) ([]types.RunResult, error) {
	rows, err := s.db.Query(
		`SELECT run_id, source, mode, started_at, elapsed_ms,
			processed, moved, skipped, errors, duplicates
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var results []types.RunResult
	for rows.Next() {
		var (
			res       types.RunResult
			mode      string
			startedAt string
			elapsedMS int64
		)
		if err := rows.Scan(
			&res.RunID, &res.Source, &mode, &startedAt, &elapsedMS,
			&res.Processed, &res.Moved, &res.Skipped, &res.Errors, &res.DuplicatesFound,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		res.Mode = types.OrganizeMode(mode)
		if t, parseErr := time.Parse(time.RFC3339Nano, startedAt); parseErr == nil {
			res.StartedAt = t
		}
		res.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		results = append(results, res)
	}
	return results, rows.Err()
}
