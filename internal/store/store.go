package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateCategory  = errors.New("category already exists")
	ErrInvalidDuration    = errors.New("duration must be at least 1 minute")
	ErrInvalidMode        = errors.New("invalid measurement mode")
	ErrEmptyName          = errors.New("name must not be empty")
	ErrInvalidAccessLevel = errors.New("invalid access level")
)

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

// Tasks are never hard-deleted: entry items reference them with
// ON DELETE RESTRICT so historical reports can always resolve calibration.
func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS users (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		name         TEXT NOT NULL UNIQUE,
		email        TEXT NOT NULL DEFAULT '',
		access_level TEXT NOT NULL DEFAULT 'ops' CHECK (access_level IN ('ops', 'admin')),
		is_active    INTEGER NOT NULL DEFAULT 1,
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id                        INTEGER PRIMARY KEY AUTOINCREMENT,
		name                      TEXT NOT NULL,
		category                  TEXT NOT NULL,
		expected_duration_minutes INTEGER NOT NULL DEFAULT 30 CHECK (expected_duration_minutes >= 1),
		measurement_type          TEXT NOT NULL DEFAULT 'tasks' CHECK (measurement_type IN ('tasks', 'time')),
		position                  INTEGER,
		category_position         INTEGER,
		display_text              TEXT,
		is_active                 INTEGER NOT NULL DEFAULT 1,
		created_at                TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at                TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_category ON tasks(category);

	CREATE TABLE IF NOT EXISTS daily_entries (
		id                            INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id                       INTEGER NOT NULL REFERENCES users(id),
		entry_date                    TEXT NOT NULL,
		total_calculated_time_minutes INTEGER NOT NULL DEFAULT 0,
		productivity_ratio            REAL NOT NULL DEFAULT 0,
		created_at                    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at                    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		UNIQUE(user_id, entry_date)
	);

	CREATE INDEX IF NOT EXISTS idx_entries_date ON daily_entries(entry_date);

	CREATE TABLE IF NOT EXISTS daily_entry_items (
		id                      INTEGER PRIMARY KEY AUTOINCREMENT,
		daily_entry_id          INTEGER NOT NULL REFERENCES daily_entries(id) ON DELETE CASCADE,
		task_id                 INTEGER NOT NULL REFERENCES tasks(id) ON DELETE RESTRICT,
		count                   INTEGER NOT NULL CHECK (count > 0),
		calculated_time_minutes INTEGER NOT NULL CHECK (calculated_time_minutes >= 0),
		task_name               TEXT NOT NULL DEFAULT '',
		task_category           TEXT NOT NULL DEFAULT '',
		created_at              TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_items_entry ON daily_entry_items(daily_entry_id);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/prodtrack/prodtrack.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "prodtrack", "prodtrack.db"), nil
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339)
}
