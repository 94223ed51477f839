// ABOUTME: Tests for scoring config persistence
// ABOUTME: Covers defaults, round trip, and weight validation
package db

import (
	"context"
	"testing"

	"github.com/harperreed/leadflow/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScoringConfigDefaults(t *testing.T) {
	s := setupTestDB(t)

	cfg, err := s.LoadScoringConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultScoringConfig(), cfg)
}

func TestSaveScoringConfigRoundTrip(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	cfg := models.DefaultScoringConfig()
	cfg.Criteria.Industry[models.IndustryFinance] = 99
	cfg.Weights.Industry = 0.5

	warnings, err := s.SaveScoringConfig(ctx, cfg)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)

	loaded, err := s.LoadScoringConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	cfg.Enabled = false
	_, err = s.SaveScoringConfig(ctx, cfg)
	require.NoError(t, err)

	loaded, err = s.LoadScoringConfig(ctx)
	require.NoError(t, err)
	assert.False(t, loaded.Enabled)
}

func TestSaveScoringConfigRejectsNegativeWeight(t *testing.T) {
	s := setupTestDB(t)

	cfg := models.DefaultScoringConfig()
	cfg.Weights.CompanySize = -1

	_, err := s.SaveScoringConfig(context.Background(), cfg)
	assert.Error(t, err)
}
