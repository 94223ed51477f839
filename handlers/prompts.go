// ABOUTME: MCP prompt handlers for reusable CRM workflow templates
// ABOUTME: Lead review and pipeline review prompts built from live data
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/pipeline"
	"github.com/harperreed/leadflow/scoring"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	store *db.Store
}

func NewPromptHandlers(store *db.Store) *PromptHandlers {
	return &PromptHandlers{store: store}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "lead-review":
		return h.leadReview(ctx, request.Params.Arguments)
	case "pipeline-review":
		return h.pipelineReview(ctx)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) leadReview(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	idStr, ok := args["contact_id"]
	if !ok {
		return nil, fmt.Errorf("contact_id is required")
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid contact_id: %w", err)
	}

	contact, err := h.store.GetContact(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}
	cfg, err := h.store.LoadScoringConfig(ctx)
	if err != nil {
		return nil, err
	}
	deals, err := h.store.ListDeals(ctx, db.DealFilter{ContactID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}

	var text strings.Builder
	text.WriteString("Review this lead and suggest how to move it forward:\n\n")
	text.WriteString(fmt.Sprintf("Name: %s\n", contact.Name))
	if contact.Company != "" {
		text.WriteString(fmt.Sprintf("Company: %s\n", contact.Company))
	}
	text.WriteString(fmt.Sprintf("Type: %s\n", contact.Type))

	b := scoring.Breakdown(*contact, cfg)
	text.WriteString(fmt.Sprintf("\nLead score: %d\n", b.Score))
	for _, c := range b.Contributions {
		value := c.Value
		if value == "" {
			value = "(unset)"
		}
		text.WriteString(fmt.Sprintf("- %s: %s = %d points x %.2f\n", c.Category, value, c.Points, c.Weight))
	}

	if len(deals) > 0 {
		text.WriteString("\nDeals:\n")
		for _, d := range deals {
			text.WriteString(fmt.Sprintf("- %s (%s, %.2f)\n", d.Title, d.Stage, d.Amount()))
		}
	}

	text.WriteString("\nPlease cover:\n1. Which missing or weak attributes hold the score down")
	text.WriteString("\n2. Concrete next activities to raise engagement")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Lead review for %s", contact.Name),
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text.String()}},
		},
	}, nil
}

func (h *PromptHandlers) pipelineReview(ctx context.Context) (*mcp.GetPromptResult, error) {
	deals, err := h.store.ListDeals(ctx, db.DealFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}
	summary := pipeline.NewBoard(deals).Summary()

	var text strings.Builder
	text.WriteString("Analyze this sales pipeline and point out bottlenecks:\n\n")
	for _, row := range summary.Stages {
		text.WriteString(fmt.Sprintf("- %s: %d deals, %.2f total (%.0f%% of deals)\n",
			row.Stage, row.Count, row.Value, row.CountPercent))
	}
	text.WriteString(fmt.Sprintf("\nTotal value: %.2f, open value: %.2f, conversion rate: %d%%\n",
		summary.TotalValue, summary.OpenValue, summary.ConversionRate))

	return &mcp.GetPromptResult{
		Description: "Pipeline review",
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text.String()}},
		},
	}, nil
}
