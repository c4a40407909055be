package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed persistence layer: activity records, the
// settings row, and the report cache.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dbPath and runs schema
// migration.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

func (s *Store) init() error {
	createActivityLogs := `
	CREATE TABLE IF NOT EXISTS activity_logs (
		id TEXT PRIMARY KEY,
		group_name TEXT NOT NULL,
		category TEXT,
		timestamp DATETIME NOT NULL,
		duration_minutes INTEGER NOT NULL,
		description TEXT
	);
	`

	createSettings := `
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		generation_endpoint TEXT NOT NULL,
		generation_model TEXT NOT NULL,
		categories TEXT NOT NULL
	);
	`

	createReports := `
	CREATE TABLE IF NOT EXISTS reports (
		period_kind TEXT NOT NULL,
		period_start DATE NOT NULL,
		report TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (period_kind, period_start)
	);
	`

	createIndexes := `
	CREATE INDEX IF NOT EXISTS idx_activity_logs_timestamp ON activity_logs(timestamp);
	CREATE INDEX IF NOT EXISTS idx_activity_logs_group ON activity_logs(group_name);
	CREATE INDEX IF NOT EXISTS idx_reports_kind ON reports(period_kind);
	`

	for _, stmt := range []string{createActivityLogs, createSettings, createReports, createIndexes} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
