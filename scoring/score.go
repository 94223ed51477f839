// ABOUTME: Lead score calculation from weighted categorical criteria
// ABOUTME: Pure functions; the scoring config is always passed in by the caller
package scoring

import (
	"math"

	"github.com/harperreed/leadflow/models"
)

// Category names used in breakdowns.
const (
	CategoryCompanySize     = "company_size"
	CategoryContactType     = "contact_type"
	CategoryIndustry        = "industry"
	CategoryEngagementLevel = "engagement_level"
)

// Contribution is one category's share of a lead score.
type Contribution struct {
	Category string  `json:"category"`
	Value    string  `json:"value"`
	Points   int     `json:"points"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
	// Fallback is set when the industry was missing or unknown and the "other"
	// points were used instead.
	Fallback bool `json:"fallback,omitempty"`
}

// ScoreBreakdown explains how a score was reached.
type ScoreBreakdown struct {
	Enabled       bool           `json:"enabled"`
	Contributions []Contribution `json:"contributions"`
	Raw           float64        `json:"raw"`
	Score         int            `json:"score"`
}

// CalculateLeadScore returns the weighted, rounded lead score for a contact. Only
// company size, type, industry, and engagement level are read. A nil or disabled
// config scores 0. The result is not clamped.
func CalculateLeadScore(contact models.Contact, cfg *models.ScoringConfig) int {
	return Breakdown(contact, cfg).Score
}

// Breakdown computes the score along with each category's contribution.
func Breakdown(contact models.Contact, cfg *models.ScoringConfig) ScoreBreakdown {
	if cfg == nil || !cfg.Enabled {
		return ScoreBreakdown{}
	}

	// Only industry falls back to "other"; the remaining categories score 0 when
	// the value is missing or not in the criteria.
	industryPoints, ok := cfg.Criteria.Industry[contact.Industry]
	industryFallback := !ok
	if industryFallback {
		industryPoints = cfg.Criteria.Industry[models.IndustryOther]
	}

	parts := []Contribution{
		{
			Category: CategoryCompanySize,
			Value:    string(contact.CompanySize),
			Points:   cfg.Criteria.CompanySize[contact.CompanySize],
			Weight:   cfg.Weights.CompanySize,
		},
		{
			Category: CategoryContactType,
			Value:    string(contact.Type),
			Points:   cfg.Criteria.ContactType[contact.Type],
			Weight:   cfg.Weights.ContactType,
		},
		{
			Category: CategoryIndustry,
			Value:    string(contact.Industry),
			Points:   industryPoints,
			Weight:   cfg.Weights.Industry,
			Fallback: industryFallback,
		},
		{
			Category: CategoryEngagementLevel,
			Value:    string(contact.EngagementLevel),
			Points:   cfg.Criteria.EngagementLevel[contact.EngagementLevel],
			Weight:   cfg.Weights.EngagementLevel,
		},
	}

	var raw float64
	for i := range parts {
		parts[i].Weighted = float64(parts[i].Points) * parts[i].Weight
		raw += parts[i].Weighted
	}

	return ScoreBreakdown{
		Enabled:       true,
		Contributions: parts,
		Raw:           raw,
		Score:         int(math.Round(raw)),
	}
}
