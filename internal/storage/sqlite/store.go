package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	defaultPath = "data/arb.db"
)

// Store wraps a SQLite DB connection.
type Store struct {
	path string
	db   *sql.DB
}

// Open creates (if needed) and opens the SQLite database.
func Open(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureWAL(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

func ensureWAL(db *sql.DB) error {
	const (
		maxAttempts = 5
		delay       = 200 * time.Millisecond
	)
	for i := 0; i < maxAttempts; i++ {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			if strings.Contains(err.Error(), "database is locked") {
				time.Sleep(delay)
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("database is locked after retries")
}

// Path returns the path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateTables ensures the trade journal exists.
func (s *Store) CreateTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

// DropTables removes the trade journal.
func (s *Store) DropTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS trades;`)
	return err
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS trades (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	cycle_id TEXT NOT NULL,
	pair TEXT NOT NULL,
	buy_venue TEXT NOT NULL,
	sell_venue TEXT NOT NULL,
	reference_price REAL NOT NULL,
	sell_price REAL,
	margin REAL,
	amount REAL NOT NULL,
	outcome TEXT NOT NULL,
	unhedged INTEGER NOT NULL DEFAULT 0,
	error TEXT,
	prices_json TEXT,
	started_at TEXT,
	finished_at TEXT
);
CREATE INDEX IF NOT EXISTS trades_outcome_idx ON trades(pair, outcome);
`
