// ABOUTME: Tests for pipeline board aggregates
// ABOUTME: Covers stage grouping, values, conversion, and distributions
package pipeline

import (
	"testing"

	"github.com/harperreed/leadflow/crmerr"
	"github.com/harperreed/leadflow/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(v float64) *float64 { return &v }

func sampleBoard() *Board {
	return NewBoard([]models.Deal{
		{ID: 1, Stage: models.StageLead, Value: value(1000)},
		{ID: 2, Stage: models.StageLead},
		{ID: 3, Stage: models.StageQualified, Value: value(500)},
		{ID: 4, Stage: models.StageClosedWon, Value: value(2500)},
	})
}

func TestStageValueTreatsMissingAsZero(t *testing.T) {
	b := NewBoard([]models.Deal{
		{Stage: models.StageLead, Value: value(1000)},
		{Stage: models.StageLead},
		{Stage: models.StageQualified, Value: value(500)},
	})

	assert.Equal(t, 1000.0, b.StageValue(models.StageLead))
	assert.Equal(t, 500.0, b.StageValue(models.StageQualified))
	assert.Zero(t, b.StageValue(models.StageProposal))
	assert.Equal(t, 1500.0, b.TotalPipelineValue())
}

func TestStageDeals(t *testing.T) {
	b := sampleBoard()

	leads := b.StageDeals(models.StageLead)
	require.Len(t, leads, 2)
	assert.Equal(t, int64(1), leads[0].ID)
	assert.Equal(t, int64(2), leads[1].ID)
	assert.Empty(t, b.StageDeals(models.StageNegotiation))
	assert.Empty(t, b.StageDeals("Won"))
}

func TestConversionRate(t *testing.T) {
	assert.Equal(t, 0, NewBoard(nil).ConversionRate())
	assert.Equal(t, 25, sampleBoard().ConversionRate())

	// 1 of 3 rounds to 33
	b := NewBoard([]models.Deal{
		{Stage: models.StageClosedWon},
		{Stage: models.StageClosedLost},
		{Stage: models.StageLead},
	})
	assert.Equal(t, 33, b.ConversionRate())
}

func TestDistributionsZeroGuard(t *testing.T) {
	empty := NewBoard(nil)
	for _, stage := range models.Stages() {
		assert.Zero(t, empty.StageDistribution()[stage])
		assert.Zero(t, empty.ValueDistribution()[stage])
	}

	noValue := NewBoard([]models.Deal{{Stage: models.StageLead}})
	assert.Equal(t, 100.0, noValue.StageDistribution()[models.StageLead])
	assert.Zero(t, noValue.ValueDistribution()[models.StageLead])
}

func TestStageDistribution(t *testing.T) {
	dist := sampleBoard().StageDistribution()

	assert.Len(t, dist, 6)
	assert.Equal(t, 50.0, dist[models.StageLead])
	assert.Equal(t, 25.0, dist[models.StageQualified])
	assert.Equal(t, 25.0, dist[models.StageClosedWon])
	assert.Zero(t, dist[models.StageClosedLost])

	values := sampleBoard().ValueDistribution()
	assert.InDelta(t, 25.0, values[models.StageLead], 1e-9)
	assert.InDelta(t, 62.5, values[models.StageClosedWon], 1e-9)
}

func TestSummary(t *testing.T) {
	s := sampleBoard().Summary()

	require.Len(t, s.Stages, 6)
	assert.Equal(t, models.StageLead, s.Stages[0].Stage)
	assert.Equal(t, models.StageClosedLost, s.Stages[5].Stage)
	assert.Equal(t, 2, s.Stages[0].Count)
	assert.Equal(t, 4, s.TotalDeals)
	assert.Equal(t, 4000.0, s.TotalValue)
	assert.Equal(t, 1500.0, s.OpenValue)
	assert.Equal(t, 25, s.ConversionRate)
}

func TestParseStage(t *testing.T) {
	for input, want := range map[string]models.Stage{
		"Lead":        models.StageLead,
		"closed won":  models.StageClosedWon,
		"closed_lost": models.StageClosedLost,
		" proposal ":  models.StageProposal,
	} {
		got, err := ParseStage(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseStage("NotAStage")
	require.Error(t, err)
	assert.True(t, crmerr.IsInvalidStage(err))
}
