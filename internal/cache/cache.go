// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists provider responses in a small SQLite database
// so repeated operations inside the expiry window skip the network.
// Entries are keyed by (source, operation, query) and stored as JSON.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store manages the cache database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at path, creating the schema
// if it does not exist.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("cache: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS results (
			source TEXT NOT NULL,
			operation TEXT NOT NULL,
			query TEXT NOT NULL,
			payload TEXT NOT NULL,
			fetched_at TEXT NOT NULL,
			PRIMARY KEY (source, operation, query)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_fetched_at ON results(fetched_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Put stores value under (source, operation, query), replacing any
// previous entry.
func (s *Store) Put(ctx context.Context, source, operation, query string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results (source, operation, query, payload, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source, operation, query) DO UPDATE SET
			payload=excluded.payload, fetched_at=excluded.fetched_at`,
		source, operation, query, string(payload), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Get loads the entry for (source, operation, query) into value and
// reports whether a fresh entry was found. Entries older than maxAge are
// misses; maxAge <= 0 means entries never expire.
func (s *Store) Get(ctx context.Context, source, operation, query string, maxAge time.Duration, value any) (bool, error) {
	var payload, fetchedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM results
		 WHERE source = ? AND operation = ? AND query = ?`,
		source, operation, query,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading cache entry: %w", err)
	}

	t, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return false, nil
	}
	if maxAge > 0 && time.Since(t) > maxAge {
		return false, nil
	}

	if err := json.Unmarshal([]byte(payload), value); err != nil {
		return false, fmt.Errorf("parsing cache entry: %w", err)
	}
	return true, nil
}

// Purge deletes entries older than maxAge and returns how many were
// removed. maxAge <= 0 clears everything.
func (s *Store) Purge(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return s.Clear(ctx)
	}

	// fetched_at is fixed-width RFC 3339 UTC, so string order is time
	// order.
	cutoff := time.Now().UTC().Add(-maxAge).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM results`)
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return n, nil
}
