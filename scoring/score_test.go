// ABOUTME: Tests for lead score calculation
// ABOUTME: Covers weights, fallbacks, rounding, and breakdowns
package scoring

import (
	"testing"

	"github.com/harperreed/leadflow/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateLeadScoreDefaults(t *testing.T) {
	contact := models.Contact{
		CompanySize:     models.CompanySizeEnterprise,
		Type:            models.ContactTypeCustomer,
		Industry:        models.IndustryTechnology,
		EngagementLevel: models.EngagementHigh,
	}

	cfg := models.DefaultScoringConfig()
	assert.Equal(t, 72, CalculateLeadScore(contact, cfg))
	assert.Equal(t, CalculateLeadScore(contact, cfg), CalculateLeadScore(contact, cfg))
}

func TestCalculateLeadScoreDisabled(t *testing.T) {
	contact := models.Contact{CompanySize: models.CompanySizeEnterprise, Industry: models.IndustryFinance}

	cfg := models.DefaultScoringConfig()
	cfg.Enabled = false

	assert.Equal(t, 0, CalculateLeadScore(contact, cfg))
	assert.Equal(t, 0, CalculateLeadScore(contact, nil))
	assert.False(t, Breakdown(contact, nil).Enabled)
}

func TestCalculateLeadScoreIndustryFallback(t *testing.T) {
	cfg := models.DefaultScoringConfig()

	unknown := models.Contact{Industry: "aerospace"}
	missing := models.Contact{}
	other := models.Contact{Industry: models.IndustryOther}

	// 40 * 0.3 = 12
	assert.Equal(t, 12, CalculateLeadScore(unknown, cfg))
	assert.Equal(t, 12, CalculateLeadScore(missing, cfg))
	assert.Equal(t, 12, CalculateLeadScore(other, cfg))

	b := Breakdown(unknown, cfg)
	require.Len(t, b.Contributions, 4)
	assert.True(t, b.Contributions[2].Fallback)
	assert.Equal(t, 40, b.Contributions[2].Points)
}

func TestCalculateLeadScoreOtherCategoriesDoNotFallBack(t *testing.T) {
	cfg := models.DefaultScoringConfig()

	contact := models.Contact{
		CompanySize:     "gigantic",
		Type:            "vendor",
		Industry:        models.IndustryRetail,
		EngagementLevel: "ecstatic",
	}

	// only industry contributes: 60 * 0.3 = 18
	assert.Equal(t, 18, CalculateLeadScore(contact, cfg))

	b := Breakdown(contact, cfg)
	for _, c := range b.Contributions {
		if c.Category != CategoryIndustry {
			assert.Zero(t, c.Points, c.Category)
			assert.False(t, c.Fallback, c.Category)
		}
	}
}

func TestCalculateLeadScoreMissingIndustryOtherScoresZero(t *testing.T) {
	cfg := models.DefaultScoringConfig()
	delete(cfg.Criteria.Industry, models.IndustryOther)

	assert.Equal(t, 0, CalculateLeadScore(models.Contact{Industry: "aerospace"}, cfg))
}

func TestCalculateLeadScoreIsNotClamped(t *testing.T) {
	cfg := models.DefaultScoringConfig()
	cfg.Weights = models.ScoringWeights{CompanySize: 1, ContactType: 1, Industry: 1, EngagementLevel: 1}

	contact := models.Contact{
		CompanySize:     models.CompanySizeEnterprise,
		Type:            models.ContactTypeCustomer,
		Industry:        models.IndustryFinance,
		EngagementLevel: models.EngagementHigh,
	}
	assert.Equal(t, 100+50+85+40, CalculateLeadScore(contact, cfg))
}

func TestCalculateLeadScoreRounding(t *testing.T) {
	cfg := &models.ScoringConfig{
		Enabled: true,
		Criteria: models.ScoringCriteria{
			CompanySize: map[models.CompanySize]int{models.CompanySizeSmall: 5},
		},
		Weights: models.ScoringWeights{CompanySize: 0.5},
	}

	// 2.5 rounds away from zero
	assert.Equal(t, 3, CalculateLeadScore(models.Contact{CompanySize: models.CompanySizeSmall}, cfg))

	cfg.Weights.CompanySize = 0.45
	assert.Equal(t, 2, CalculateLeadScore(models.Contact{CompanySize: models.CompanySizeSmall}, cfg))
}

func TestBreakdownSumsToRaw(t *testing.T) {
	contact := models.Contact{
		CompanySize:     models.CompanySizeMedium,
		Type:            models.ContactTypeLead,
		Industry:        models.IndustryHealthcare,
		EngagementLevel: models.EngagementLow,
	}
	b := Breakdown(contact, models.DefaultScoringConfig())

	var sum float64
	for _, c := range b.Contributions {
		sum += c.Weighted
	}
	assert.InDelta(t, b.Raw, sum, 1e-9)
	// 15 + 4 + 21 + 2
	assert.Equal(t, 42, b.Score)
}
