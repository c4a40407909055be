package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"activity-reports/internal/taxonomy"
)

// GetSettings returns the persisted settings row, or nil if none has been
// saved yet.
func (s *Store) GetSettings() (*Settings, error) {
	query := `SELECT generation_endpoint, generation_model, categories FROM settings WHERE id = 1`

	var settings Settings
	var categoriesJSON string
	err := s.db.QueryRow(query).Scan(&settings.GenerationEndpoint, &settings.GenerationModel, &categoriesJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	if err := json.Unmarshal([]byte(categoriesJSON), &settings.Taxonomy); err != nil {
		return nil, fmt.Errorf("failed to parse stored taxonomy: %w", err)
	}

	return &settings, nil
}

func (s *Store) SaveSettings(settings *Settings) error {
	categoriesJSON, err := json.Marshal(settings.Taxonomy)
	if err != nil {
		return fmt.Errorf("failed to marshal taxonomy: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO settings (id, generation_endpoint, generation_model, categories)
	VALUES (1, ?, ?, ?)
	`
	if _, err := s.db.Exec(query, settings.GenerationEndpoint, settings.GenerationModel, string(categoriesJSON)); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// EnsureSettings returns the stored settings, seeding the row from the given
// defaults when the table is empty.
func (s *Store) EnsureSettings(endpoint, model string, tax taxonomy.Taxonomy) (*Settings, error) {
	settings, err := s.GetSettings()
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	settings = &Settings{
		GenerationEndpoint: endpoint,
		GenerationModel:    model,
		Taxonomy:           tax,
	}
	if err := s.SaveSettings(settings); err != nil {
		return nil, err
	}
	return settings, nil
}
