// ABOUTME: Lead scoring MCP tool handlers
// ABOUTME: Score calculation, explanation, recalculation, and scoring config management
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/scoring"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ScoringHandlers struct {
	store  *db.Store
	engine *scoring.Engine
}

func NewScoringHandlers(store *db.Store, engine *scoring.Engine) *ScoringHandlers {
	return &ScoringHandlers{store: store, engine: engine}
}

type CalculateLeadScoreInput struct {
	CompanySize     string `json:"company_size,omitempty" jsonschema:"startup, small, medium, large, or enterprise"`
	Type            string `json:"type,omitempty" jsonschema:"lead, customer, or partner"`
	Industry        string `json:"industry,omitempty" jsonschema:"Industry; unknown values score as other"`
	EngagementLevel string `json:"engagement_level,omitempty" jsonschema:"high, medium, or low"`
}

type CalculateLeadScoreOutput struct {
	Score     int                    `json:"score"`
	Breakdown scoring.ScoreBreakdown `json:"breakdown"`
}

// CalculateLeadScore scores hypothetical attributes without touching any contact.
func (h *ScoringHandlers) CalculateLeadScore(ctx context.Context, _ *mcp.CallToolRequest, input CalculateLeadScoreInput) (*mcp.CallToolResult, CalculateLeadScoreOutput, error) {
	cfg, err := h.store.LoadScoringConfig(ctx)
	if err != nil {
		return nil, CalculateLeadScoreOutput{}, err
	}

	contact := models.Contact{
		CompanySize:     models.CompanySize(input.CompanySize),
		Type:            models.ContactType(input.Type),
		Industry:        models.Industry(input.Industry),
		EngagementLevel: models.EngagementLevel(input.EngagementLevel),
	}
	b := scoring.Breakdown(contact, cfg)
	return nil, CalculateLeadScoreOutput{Score: b.Score, Breakdown: b}, nil
}

type ContactIDInput struct {
	ID int64 `json:"id" jsonschema:"Contact ID (required)"`
}

type ExplainLeadScoreOutput struct {
	ContactID   int64                  `json:"contact_id"`
	Name        string                 `json:"name"`
	StoredScore *int                   `json:"stored_score,omitempty"`
	Current     bool                   `json:"current"`
	Breakdown   scoring.ScoreBreakdown `json:"breakdown"`
}

func (h *ScoringHandlers) ExplainLeadScore(ctx context.Context, _ *mcp.CallToolRequest, input ContactIDInput) (*mcp.CallToolResult, ExplainLeadScoreOutput, error) {
	contact, err := h.store.GetContact(ctx, input.ID)
	if err != nil {
		return nil, ExplainLeadScoreOutput{}, fmt.Errorf("failed to get contact: %w", err)
	}
	cfg, err := h.store.LoadScoringConfig(ctx)
	if err != nil {
		return nil, ExplainLeadScoreOutput{}, err
	}

	b := scoring.Breakdown(*contact, cfg)
	return nil, ExplainLeadScoreOutput{
		ContactID:   contact.ID,
		Name:        contact.Name,
		StoredScore: contact.LeadScore,
		Current:     contact.LeadScore != nil && *contact.LeadScore == b.Score,
		Breakdown:   b,
	}, nil
}

func (h *ScoringHandlers) RecalculateScore(ctx context.Context, _ *mcp.CallToolRequest, input ContactIDInput) (*mcp.CallToolResult, ContactOutput, error) {
	cfg, err := h.store.LoadScoringConfig(ctx)
	if err != nil {
		return nil, ContactOutput{}, err
	}
	contact, err := h.engine.RecalculateScore(ctx, input.ID, cfg)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to recalculate score: %w", err)
	}
	return nil, contactToOutput(contact), nil
}

type RecalculateAllScoresInput struct{}

type RecalculateAllScoresOutput struct {
	RunID      string        `json:"run_id"`
	Updated    int           `json:"updated"`
	Failed     int           `json:"failed"`
	Failures   []BulkFailure `json:"failures,omitempty"`
	DurationMS int64         `json:"duration_ms"`
}

func (h *ScoringHandlers) RecalculateAllScores(ctx context.Context, _ *mcp.CallToolRequest, _ RecalculateAllScoresInput) (*mcp.CallToolResult, RecalculateAllScoresOutput, error) {
	cfg, err := h.store.LoadScoringConfig(ctx)
	if err != nil {
		return nil, RecalculateAllScoresOutput{}, err
	}
	return h.recalculateAll(ctx, cfg)
}

func (h *ScoringHandlers) recalculateAll(ctx context.Context, cfg *models.ScoringConfig) (*mcp.CallToolResult, RecalculateAllScoresOutput, error) {
	result, err := h.engine.RecalculateAllScoresDetailed(ctx, cfg)
	if err != nil {
		return nil, RecalculateAllScoresOutput{}, err
	}

	failures := make(map[int64]error)
	for id, err := range result.Results {
		if err != nil {
			failures[id] = err
		}
	}
	return nil, RecalculateAllScoresOutput{
		RunID:      result.RunID.String(),
		Updated:    result.Updated,
		Failed:     result.Failed,
		Failures:   bulkFailures(failures),
		DurationMS: result.Duration.Milliseconds(),
	}, nil
}

type GetScoringConfigInput struct{}

type ScoringConfigOutput struct {
	Config   *models.ScoringConfig `json:"config"`
	Warnings []string              `json:"warnings,omitempty"`
}

func (h *ScoringHandlers) GetScoringConfig(ctx context.Context, _ *mcp.CallToolRequest, _ GetScoringConfigInput) (*mcp.CallToolResult, ScoringConfigOutput, error) {
	cfg, err := h.store.LoadScoringConfig(ctx)
	if err != nil {
		return nil, ScoringConfigOutput{}, err
	}
	warnings, _ := cfg.Validate()
	return nil, ScoringConfigOutput{Config: cfg, Warnings: warnings}, nil
}

type SetScoringConfigInput struct {
	Config      models.ScoringConfig `json:"config" jsonschema:"Complete scoring config: enabled, criteria, and weights"`
	Recalculate bool                 `json:"recalculate,omitempty" jsonschema:"Rescore every contact after saving"`
}

type SetScoringConfigOutput struct {
	Warnings      []string                    `json:"warnings,omitempty"`
	Recalculation *RecalculateAllScoresOutput `json:"recalculation,omitempty"`
}

func (h *ScoringHandlers) SetScoringConfig(ctx context.Context, _ *mcp.CallToolRequest, input SetScoringConfigInput) (*mcp.CallToolResult, SetScoringConfigOutput, error) {
	cfg := input.Config.Clone()
	warnings, err := h.store.SaveScoringConfig(ctx, cfg)
	if err != nil {
		return nil, SetScoringConfigOutput{}, fmt.Errorf("failed to save scoring config: %w", err)
	}

	out := SetScoringConfigOutput{Warnings: warnings}
	if input.Recalculate {
		_, recalc, err := h.recalculateAll(ctx, cfg)
		if err != nil {
			return nil, out, err
		}
		out.Recalculation = &recalc
	}
	return nil, out, nil
}
