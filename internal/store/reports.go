package store

import (
	"database/sql"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// GetReport returns the serialized report cached for (kind, start), or nil
// when no entry exists. The start date is compared by calendar day.
func (s *Store) GetReport(kind string, start time.Time) ([]byte, error) {
	query := `SELECT report FROM reports WHERE period_kind = ? AND period_start = ?`

	var data []byte
	err := s.db.QueryRow(query, kind, start.Format(dateLayout)).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return data, nil
}

// PutReport upserts the serialized report for (kind, start). A forced
// regeneration overwrites the previous entry wholesale; entries never carry a
// TTL.
func (s *Store) PutReport(kind string, start time.Time, data []byte) error {
	query := `
	INSERT OR REPLACE INTO reports (period_kind, period_start, report, created_at)
	VALUES (?, ?, ?, ?)
	`
	_, err := s.db.Exec(query, kind, start.Format(dateLayout), data, time.Now().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to put report: %w", err)
	}
	return nil
}

// HasReport reports whether a cache entry exists for (kind, start).
func (s *Store) HasReport(kind string, start time.Time) (bool, error) {
	query := `SELECT 1 FROM reports WHERE period_kind = ? AND period_start = ?`

	var one int
	err := s.db.QueryRow(query, kind, start.Format(dateLayout)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check report: %w", err)
	}
	return true, nil
}

// ListReportKeys returns the (kind, start) pairs of all cached reports of the
// given kind, newest first.
func (s *Store) ListReportKeys(kind string) ([]time.Time, error) {
	query := `SELECT period_start FROM reports WHERE period_kind = ? ORDER BY period_start DESC`

	rows, err := s.db.Query(query, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var starts []time.Time
	for rows.Next() {
		var startStr string
		if err := rows.Scan(&startStr); err != nil {
			return nil, fmt.Errorf("failed to scan report key: %w", err)
		}
		start, err := time.ParseInLocation(dateLayout, startStr, time.Local)
		if err != nil {
			return nil, fmt.Errorf("failed to parse report start: %w", err)
		}
		starts = append(starts, start)
	}
	return starts, rows.Err()
}
