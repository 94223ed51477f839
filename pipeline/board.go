// ABOUTME: Pipeline aggregates over a snapshot of deals
// ABOUTME: Per-stage counts and values, conversion rate, and distributions
package pipeline

import (
	"math"
	"strings"

	"github.com/harperreed/leadflow/crmerr"
	"github.com/harperreed/leadflow/models"
)

// ParseStage resolves user input to a stage, or returns an InvalidStage error.
func ParseStage(input string) (models.Stage, error) {
	stage, ok := models.LookupStage(input)
	if !ok {
		return "", crmerr.InvalidStage(strings.TrimSpace(input))
	}
	return stage, nil
}

// Board is a read-only snapshot of deals.
type Board struct {
	deals []models.Deal
}

func NewBoard(deals []models.Deal) *Board {
	return &Board{deals: deals}
}

// Len returns the number of deals on the board.
func (b *Board) Len() int {
	return len(b.deals)
}

// StageDeals returns the deals currently in stage, in snapshot order.
func (b *Board) StageDeals(stage models.Stage) []models.Deal {
	var out []models.Deal
	for _, d := range b.deals {
		if d.Stage == stage {
			out = append(out, d)
		}
	}
	return out
}

// StageValue sums deal values in stage. A missing value counts as 0.
func (b *Board) StageValue(stage models.Stage) float64 {
	var total float64
	for _, d := range b.StageDeals(stage) {
		total += d.Amount()
	}
	return total
}

func (b *Board) TotalPipelineValue() float64 {
	var total float64
	for _, d := range b.deals {
		total += d.Amount()
	}
	return total
}

// ConversionRate is the rounded percentage of deals that are Closed Won, or 0 for
// an empty board.
func (b *Board) ConversionRate() int {
	if len(b.deals) == 0 {
		return 0
	}
	won := len(b.StageDeals(models.StageClosedWon))
	return int(math.Round(float64(won) / float64(len(b.deals)) * 100))
}

// StageDistribution maps every stage to its percentage of the deal count.
func (b *Board) StageDistribution() map[models.Stage]float64 {
	out := make(map[models.Stage]float64, len(models.Stages()))
	total := float64(len(b.deals))
	for _, stage := range models.Stages() {
		out[stage] = percent(float64(len(b.StageDeals(stage))), total)
	}
	return out
}

// ValueDistribution maps every stage to its percentage of the total pipeline value.
func (b *Board) ValueDistribution() map[models.Stage]float64 {
	out := make(map[models.Stage]float64, len(models.Stages()))
	total := b.TotalPipelineValue()
	for _, stage := range models.Stages() {
		out[stage] = percent(b.StageValue(stage), total)
	}
	return out
}

func percent(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

// StageSummary is one row of the pipeline summary.
type StageSummary struct {
	Stage        models.Stage `json:"stage"`
	Count        int          `json:"count"`
	Value        float64      `json:"value"`
	CountPercent float64      `json:"count_percent"`
	ValuePercent float64      `json:"value_percent"`
}

// Summary is the whole board in stage order.
type Summary struct {
	Stages         []StageSummary `json:"stages"`
	TotalDeals     int            `json:"total_deals"`
	TotalValue     float64        `json:"total_value"`
	OpenValue      float64        `json:"open_value"`
	ConversionRate int            `json:"conversion_rate"`
}

func (b *Board) Summary() Summary {
	counts := b.StageDistribution()
	values := b.ValueDistribution()

	s := Summary{
		TotalDeals:     len(b.deals),
		TotalValue:     b.TotalPipelineValue(),
		ConversionRate: b.ConversionRate(),
	}
	for _, stage := range models.Stages() {
		value := b.StageValue(stage)
		s.Stages = append(s.Stages, StageSummary{
			Stage:        stage,
			Count:        len(b.StageDeals(stage)),
			Value:        value,
			CountPercent: counts[stage],
			ValuePercent: values[stage],
		})
		if !stage.IsClosed() {
			s.OpenValue += value
		}
	}
	return s
}
