package store

import (
	"fmt"
	"time"
)

func (s *Store) SaveActivity(record *ActivityRecord) error {
	query := `
	INSERT INTO activity_logs (id, group_name, category, timestamp, duration_minutes, description)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query, record.ID, record.Group, record.Category,
		record.Timestamp.Format(time.RFC3339Nano), record.DurationMinutes, record.Description)
	if err != nil {
		return fmt.Errorf("failed to save activity: %w", err)
	}
	return nil
}

// ListActivities returns all records with start <= timestamp < end, oldest
// first.
func (s *Store) ListActivities(start, end time.Time) ([]ActivityRecord, error) {
	query := `
	SELECT id, group_name, category, timestamp, duration_minutes, description
	FROM activity_logs
	WHERE timestamp >= ? AND timestamp < ?
	ORDER BY timestamp ASC
	`
	rows, err := s.db.Query(query, start.Format(time.RFC3339Nano), end.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var records []ActivityRecord
	for rows.Next() {
		var r ActivityRecord
		var timestampStr string
		if err := rows.Scan(&r.ID, &r.Group, &r.Category, &timestampStr, &r.DurationMinutes, &r.Description); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		r.Timestamp, err = time.Parse(time.RFC3339Nano, timestampStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) DeleteActivity(id string) error {
	result, err := s.db.Exec(`DELETE FROM activity_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("activity %s not found", id)
	}
	return nil
}

func (s *Store) CountActivities() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM activity_logs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return n, nil
}
