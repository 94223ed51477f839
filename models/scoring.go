// ABOUTME: Lead scoring configuration model
// ABOUTME: Criteria point tables, category weights, and operator defaults
package models

import (
	"fmt"
	"math"
)

// ScoringConfig is the operator-controlled lead scoring configuration. It is passed
// explicitly into every scoring call; nothing holds it globally.
type ScoringConfig struct {
	Enabled  bool            `json:"enabled" yaml:"enabled"`
	Criteria ScoringCriteria `json:"criteria" yaml:"criteria"`
	Weights  ScoringWeights  `json:"weights" yaml:"weights"`
}

type ScoringCriteria struct {
	CompanySize     map[CompanySize]int     `json:"companySize" yaml:"company_size"`
	ContactType     map[ContactType]int     `json:"contactType" yaml:"contact_type"`
	Industry        map[Industry]int        `json:"industry" yaml:"industry"`
	EngagementLevel map[EngagementLevel]int `json:"engagementLevel" yaml:"engagement_level"`
}

// ScoringWeights are per-category multipliers. They nominally sum to 1.0; this is
// reported by Validate but never enforced.
type ScoringWeights struct {
	CompanySize     float64 `json:"companySize" yaml:"company_size"`
	ContactType     float64 `json:"contactType" yaml:"contact_type"`
	Industry        float64 `json:"industry" yaml:"industry"`
	EngagementLevel float64 `json:"engagementLevel" yaml:"engagement_level"`
}

// Sum returns the total of the four weights.
func (w ScoringWeights) Sum() float64 {
	return w.CompanySize + w.ContactType + w.Industry + w.EngagementLevel
}

// DefaultScoringConfig returns the stock criteria and weights shipped with the CRM.
func DefaultScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		Enabled: true,
		Criteria: ScoringCriteria{
			CompanySize: map[CompanySize]int{
				CompanySizeStartup:    10,
				CompanySizeSmall:      25,
				CompanySizeMedium:     50,
				CompanySizeLarge:      75,
				CompanySizeEnterprise: 100,
			},
			ContactType: map[ContactType]int{
				ContactTypeLead:     20,
				ContactTypeCustomer: 50,
				ContactTypePartner:  30,
			},
			Industry: map[Industry]int{
				IndustryTechnology:    80,
				IndustryHealthcare:    70,
				IndustryFinance:       85,
				IndustryRetail:        60,
				IndustryManufacturing: 65,
				IndustryEducation:     55,
				IndustryOther:         40,
			},
			EngagementLevel: map[EngagementLevel]int{
				EngagementHigh:   40,
				EngagementMedium: 25,
				EngagementLow:    10,
			},
		},
		Weights: ScoringWeights{
			CompanySize:     0.3,
			ContactType:     0.2,
			Industry:        0.3,
			EngagementLevel: 0.2,
		},
	}
}

// Clone returns a deep copy so callers can edit criteria without aliasing maps.
func (c *ScoringConfig) Clone() *ScoringConfig {
	if c == nil {
		return nil
	}
	out := &ScoringConfig{Enabled: c.Enabled, Weights: c.Weights}
	out.Criteria.CompanySize = cloneMap(c.Criteria.CompanySize)
	out.Criteria.ContactType = cloneMap(c.Criteria.ContactType)
	out.Criteria.Industry = cloneMap(c.Criteria.Industry)
	out.Criteria.EngagementLevel = cloneMap(c.Criteria.EngagementLevel)
	return out
}

func cloneMap[K comparable](m map[K]int) map[K]int {
	if m == nil {
		return nil
	}
	out := make(map[K]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Validate rejects negative weights and unknown criteria keys. A weight total other
// than 1.0 is returned as a warning, not an error.
func (c *ScoringConfig) Validate() (warnings []string, err error) {
	if c == nil {
		return nil, fmt.Errorf("scoring config is nil")
	}

	weights := map[string]float64{
		"company_size":     c.Weights.CompanySize,
		"contact_type":     c.Weights.ContactType,
		"industry":         c.Weights.Industry,
		"engagement_level": c.Weights.EngagementLevel,
	}
	for _, name := range []string{"company_size", "contact_type", "industry", "engagement_level"} {
		if weights[name] < 0 {
			return nil, fmt.Errorf("weight %s must not be negative (got %v)", name, weights[name])
		}
	}

	for k := range c.Criteria.CompanySize {
		if !k.Valid() {
			return nil, fmt.Errorf("unknown company size criterion: %q", k)
		}
	}
	for k := range c.Criteria.ContactType {
		if !k.Valid() {
			return nil, fmt.Errorf("unknown contact type criterion: %q", k)
		}
	}
	for k := range c.Criteria.Industry {
		if !k.Valid() {
			return nil, fmt.Errorf("unknown industry criterion: %q", k)
		}
	}
	for k := range c.Criteria.EngagementLevel {
		if !k.Valid() {
			return nil, fmt.Errorf("unknown engagement level criterion: %q", k)
		}
	}

	if sum := c.Weights.Sum(); math.Abs(sum-1.0) > 0.001 {
		warnings = append(warnings, fmt.Sprintf("weights sum to %.3f, not 1.0", sum))
	}
	if _, ok := c.Criteria.Industry[IndustryOther]; !ok {
		warnings = append(warnings, "industry criteria have no \"other\" entry; unknown industries score 0")
	}
	return warnings, nil
}
