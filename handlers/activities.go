// ABOUTME: Activity MCP tool handlers
// ABOUTME: Implements log_activity, list_activities, and complete_activity
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/events"
	"github.com/harperreed/leadflow/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ActivityHandlers struct {
	store     *db.Store
	publisher events.Publisher
}

func NewActivityHandlers(store *db.Store, publisher events.Publisher) *ActivityHandlers {
	if publisher == nil {
		publisher = events.Nop
	}
	return &ActivityHandlers{store: store, publisher: publisher}
}

type LogActivityInput struct {
	Type        string `json:"type" jsonschema:"call, meeting, task, or email (required)"`
	Title       string `json:"title" jsonschema:"Short title (required)"`
	Description string `json:"description,omitempty" jsonschema:"Details"`
	DueDate     string `json:"due_date,omitempty" jsonschema:"Due date (YYYY-MM-DD)"`
	ContactID   *int64 `json:"contact_id,omitempty" jsonschema:"Related contact"`
	DealID      *int64 `json:"deal_id,omitempty" jsonschema:"Related deal"`
}

func (h *ActivityHandlers) LogActivity(ctx context.Context, _ *mcp.CallToolRequest, input LogActivityInput) (*mcp.CallToolResult, ActivityOutput, error) {
	due, err := parseDate("due_date", input.DueDate)
	if err != nil {
		return nil, ActivityOutput{}, err
	}

	activity := &models.Activity{
		Type:        models.ActivityType(input.Type),
		Title:       input.Title,
		Description: input.Description,
		DueDate:     due,
		ContactID:   input.ContactID,
		DealID:      input.DealID,
	}
	if err := h.store.CreateActivity(ctx, activity); err != nil {
		return nil, ActivityOutput{}, fmt.Errorf("failed to log activity: %w", err)
	}

	h.publisher.Publish(ctx, events.New(events.ActivitiesChanged, "activity logged", activity.ID))
	return nil, activityToOutput(activity), nil
}

type ListActivitiesInput struct {
	ContactID   *int64 `json:"contact_id,omitempty" jsonschema:"Only activities for this contact"`
	DealID      *int64 `json:"deal_id,omitempty" jsonschema:"Only activities for this deal"`
	PendingOnly bool   `json:"pending_only,omitempty" jsonschema:"Hide completed activities and sort by due date"`
	Limit       int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 20)"`
}

type ListActivitiesOutput struct {
	Activities []ActivityOutput `json:"activities"`
}

func (h *ActivityHandlers) ListActivities(ctx context.Context, _ *mcp.CallToolRequest, input ListActivitiesInput) (*mcp.CallToolResult, ListActivitiesOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 20
	}

	activities, err := h.store.ListActivities(ctx, db.ActivityFilter{
		ContactID:   input.ContactID,
		DealID:      input.DealID,
		PendingOnly: input.PendingOnly,
		Limit:       limit,
	})
	if err != nil {
		return nil, ListActivitiesOutput{}, fmt.Errorf("failed to list activities: %w", err)
	}

	out := ListActivitiesOutput{Activities: make([]ActivityOutput, len(activities))}
	for i := range activities {
		out.Activities[i] = activityToOutput(&activities[i])
	}
	return nil, out, nil
}

type CompleteActivityInput struct {
	ID      int64  `json:"id" jsonschema:"Activity ID (required)"`
	Outcome string `json:"outcome,omitempty" jsonschema:"What happened"`
}

func (h *ActivityHandlers) CompleteActivity(ctx context.Context, _ *mcp.CallToolRequest, input CompleteActivityInput) (*mcp.CallToolResult, ActivityOutput, error) {
	patch := models.NewPatch().Set(models.FieldCompleted, true)
	if input.Outcome != "" {
		patch.Set(models.FieldOutcome, input.Outcome)
	}

	activity, err := h.store.UpdateActivity(ctx, input.ID, patch)
	if err != nil {
		return nil, ActivityOutput{}, fmt.Errorf("failed to complete activity: %w", err)
	}

	h.publisher.Publish(ctx, events.New(events.ActivitiesChanged, "activity completed", activity.ID))
	return nil, activityToOutput(activity), nil
}
