package store

import (
	"time"

	"activity-reports/internal/taxonomy"
)

// ActivityRecord is one logged activity. Records are append-only from the
// pipeline's point of view: the recording surface creates them, reports only
// read them.
type ActivityRecord struct {
	ID              string    `json:"id"`
	Group           string    `json:"group"`
	Category        string    `json:"category,omitempty"` // may be stale; reports recompute it
	Timestamp       time.Time `json:"timestamp"`
	DurationMinutes int       `json:"duration_minutes"`
	Description     string    `json:"description"`
}

// Settings is the persisted application settings row: where to reach the
// generation endpoint, which model to ask for, and the category taxonomy.
type Settings struct {
	GenerationEndpoint string            `json:"generation_endpoint"`
	GenerationModel    string            `json:"generation_model"`
	Taxonomy           taxonomy.Taxonomy `json:"taxonomy"`
}
