// ABOUTME: Settings store for operator configuration
// ABOUTME: Persists the lead scoring configuration as a JSON document
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harperreed/leadflow/models"
)

const scoringSettingsKey = "lead_scoring"

// LoadScoringConfig returns the saved scoring configuration, or the defaults when
// none has been saved.
func (s *Store) LoadScoringConfig(ctx context.Context) (*models.ScoringConfig, error) {
	const op = "LoadScoringConfig"

	raw, err := withReadRetry(ctx, op, func() (string, error) {
		var value string
		err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, scoringSettingsKey).Scan(&value)
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return value, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load scoring config: %w", err)
	}
	if raw == "" {
		return models.DefaultScoringConfig(), nil
	}

	var cfg models.ScoringConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode scoring config: %w", err)
	}
	return &cfg, nil
}

// SaveScoringConfig validates and stores the scoring configuration, returning any
// non-fatal warnings from validation.
func (s *Store) SaveScoringConfig(ctx context.Context, cfg *models.ScoringConfig) ([]string, error) {
	const op = "SaveScoringConfig"

	warnings, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scoring config: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, scoringSettingsKey, string(raw), s.now())
	if err != nil {
		return nil, classify(op, err)
	}
	return warnings, nil
}
