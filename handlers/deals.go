// ABOUTME: Deal MCP tool handlers
// ABOUTME: Implements create_deal, list_deals, move_deal, bulk_update_deals, delete_deal, and pipeline_summary
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/events"
	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type DealHandlers struct {
	store     *db.Store
	mover     *pipeline.Mover
	publisher events.Publisher
}

func NewDealHandlers(store *db.Store, mover *pipeline.Mover, publisher events.Publisher) *DealHandlers {
	if publisher == nil {
		publisher = events.Nop
	}
	return &DealHandlers{store: store, mover: mover, publisher: publisher}
}

type CreateDealInput struct {
	Title             string   `json:"title" jsonschema:"Deal title (required)"`
	Value             *float64 `json:"value,omitempty" jsonschema:"Deal value, zero or more"`
	Stage             string   `json:"stage,omitempty" jsonschema:"Lead, Qualified, Proposal, Negotiation, Closed Won, or Closed Lost (default Lead)"`
	ContactID         *int64   `json:"contact_id,omitempty" jsonschema:"Contact this deal is with"`
	ExpectedCloseDate string   `json:"expected_close_date,omitempty" jsonschema:"Expected close date (YYYY-MM-DD)"`
	Notes             string   `json:"notes,omitempty" jsonschema:"Free-form notes"`
	Tags              []string `json:"tags,omitempty" jsonschema:"Tags"`
}

func (h *DealHandlers) CreateDeal(ctx context.Context, _ *mcp.CallToolRequest, input CreateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.Title == "" {
		return nil, DealOutput{}, fmt.Errorf("title is required")
	}

	stage := models.StageLead
	if input.Stage != "" {
		var err error
		if stage, err = pipeline.ParseStage(input.Stage); err != nil {
			return nil, DealOutput{}, err
		}
	}
	closeDate, err := parseDate("expected_close_date", input.ExpectedCloseDate)
	if err != nil {
		return nil, DealOutput{}, err
	}

	deal := &models.Deal{
		Title:             input.Title,
		Value:             input.Value,
		Stage:             stage,
		ContactID:         input.ContactID,
		ExpectedCloseDate: closeDate,
		Notes:             input.Notes,
		Tags:              input.Tags,
	}
	if err := h.store.CreateDeal(ctx, deal); err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to create deal: %w", err)
	}

	h.publisher.Publish(ctx, events.New(events.DealsChanged, "deal created", deal.ID))
	return nil, dealToOutput(deal), nil
}

type ListDealsInput struct {
	Stage     string `json:"stage,omitempty" jsonschema:"Only deals in this stage"`
	ContactID *int64 `json:"contact_id,omitempty" jsonschema:"Only deals with this contact"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default all)"`
}

type ListDealsOutput struct {
	Deals []DealOutput `json:"deals"`
}

func (h *DealHandlers) ListDeals(ctx context.Context, _ *mcp.CallToolRequest, input ListDealsInput) (*mcp.CallToolResult, ListDealsOutput, error) {
	filter := db.DealFilter{ContactID: input.ContactID, Limit: input.Limit}
	if input.Stage != "" {
		stage, err := pipeline.ParseStage(input.Stage)
		if err != nil {
			return nil, ListDealsOutput{}, err
		}
		filter.Stage = stage
	}

	deals, err := h.store.ListDeals(ctx, filter)
	if err != nil {
		return nil, ListDealsOutput{}, fmt.Errorf("failed to list deals: %w", err)
	}

	out := ListDealsOutput{Deals: make([]DealOutput, len(deals))}
	for i := range deals {
		out.Deals[i] = dealToOutput(&deals[i])
	}
	return nil, out, nil
}

type MoveDealInput struct {
	ID    int64  `json:"id" jsonschema:"Deal ID (required)"`
	Stage string `json:"stage" jsonschema:"Target stage (required)"`
}

// MoveDeal moves a deal to any stage. Moving to its current stage changes nothing.
func (h *DealHandlers) MoveDeal(ctx context.Context, _ *mcp.CallToolRequest, input MoveDealInput) (*mcp.CallToolResult, DealOutput, error) {
	stage, err := pipeline.ParseStage(input.Stage)
	if err != nil {
		return nil, DealOutput{}, err
	}
	deal, err := h.mover.MoveDealByID(ctx, input.ID, stage)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to move deal: %w", err)
	}
	return nil, dealToOutput(deal), nil
}

type BulkUpdateDealsOutput struct {
	UpdatedCount int           `json:"updated_count"`
	FailedCount  int           `json:"failed_count"`
	Failures     []BulkFailure `json:"failures,omitempty"`
	Deals        []DealOutput  `json:"deals"`
}

func (h *DealHandlers) BulkUpdateDeals(ctx context.Context, _ *mcp.CallToolRequest, input BulkUpdateInput) (*mcp.CallToolResult, BulkUpdateDealsOutput, error) {
	if len(input.IDs) == 0 {
		return nil, BulkUpdateDealsOutput{}, fmt.Errorf("ids is required")
	}

	patch := models.PatchFromMap(input.Fields)
	if d, ok := patch[models.FieldStage]; ok && d.Kind == models.Set {
		s, _ := d.Value.(string)
		stage, err := pipeline.ParseStage(s)
		if err != nil {
			return nil, BulkUpdateDealsOutput{}, err
		}
		patch.Set(models.FieldStage, stage)
	}

	result, err := h.store.BulkUpdateDeals(ctx, input.IDs, patch)
	if err != nil {
		return nil, BulkUpdateDealsOutput{}, fmt.Errorf("failed to update deals: %w", err)
	}

	out := BulkUpdateDealsOutput{
		UpdatedCount: result.UpdatedCount,
		FailedCount:  result.FailedCount,
		Failures:     bulkFailures(result.Failures),
		Deals:        make([]DealOutput, len(result.Records)),
	}
	ids := make([]int64, len(result.Records))
	for i := range result.Records {
		out.Deals[i] = dealToOutput(&result.Records[i])
		ids[i] = result.Records[i].ID
	}
	if len(ids) > 0 {
		h.publisher.Publish(ctx, events.New(events.DealsChanged, "bulk update", ids...))
	}
	return nil, out, nil
}

type DeleteDealInput struct {
	ID      int64 `json:"id" jsonschema:"Deal ID (required)"`
	Confirm bool  `json:"confirm" jsonschema:"Must be true; deletion cannot be undone"`
}

func (h *DealHandlers) DeleteDeal(ctx context.Context, _ *mcp.CallToolRequest, input DeleteDealInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if !input.Confirm {
		return nil, DeleteOutput{}, fmt.Errorf("delete_deal requires confirm: true")
	}
	if err := h.store.DeleteDeal(ctx, input.ID); err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete deal: %w", err)
	}
	h.publisher.Publish(ctx, events.New(events.DealsChanged, "deal deleted", input.ID))
	return nil, DeleteOutput{ID: input.ID, Deleted: true}, nil
}

type PipelineSummaryInput struct{}

func (h *DealHandlers) PipelineSummary(ctx context.Context, _ *mcp.CallToolRequest, _ PipelineSummaryInput) (*mcp.CallToolResult, pipeline.Summary, error) {
	deals, err := h.store.ListDeals(ctx, db.DealFilter{})
	if err != nil {
		return nil, pipeline.Summary{}, fmt.Errorf("failed to list deals: %w", err)
	}
	return nil, pipeline.NewBoard(deals).Summary(), nil
}
