// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements add_contact, find_contacts, update_contact, delete_contact, and bulk_update_contacts
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/events"
	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/scoring"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ContactHandlers struct {
	store     *db.Store
	engine    *scoring.Engine
	publisher events.Publisher
}

func NewContactHandlers(store *db.Store, engine *scoring.Engine, publisher events.Publisher) *ContactHandlers {
	if publisher == nil {
		publisher = events.Nop
	}
	return &ContactHandlers{store: store, engine: engine, publisher: publisher}
}

type AddContactInput struct {
	Name            string   `json:"name" jsonschema:"Contact name (required)"`
	Company         string   `json:"company,omitempty" jsonschema:"Company name"`
	Email           string   `json:"email,omitempty" jsonschema:"Email address"`
	Phone           string   `json:"phone,omitempty" jsonschema:"Phone number"`
	Address         string   `json:"address,omitempty" jsonschema:"Postal address"`
	Type            string   `json:"type,omitempty" jsonschema:"lead, customer, or partner (default lead)"`
	Industry        string   `json:"industry,omitempty" jsonschema:"technology, healthcare, finance, retail, manufacturing, education, or other"`
	CompanySize     string   `json:"company_size,omitempty" jsonschema:"startup, small, medium, large, or enterprise"`
	EngagementLevel string   `json:"engagement_level,omitempty" jsonschema:"high, medium, or low"`
	Notes           string   `json:"notes,omitempty" jsonschema:"Free-form notes"`
	Tags            []string `json:"tags,omitempty" jsonschema:"Tags"`
}

func (h *ContactHandlers) AddContact(ctx context.Context, _ *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.Name == "" {
		return nil, ContactOutput{}, fmt.Errorf("name is required")
	}

	cfg, err := h.store.LoadScoringConfig(ctx)
	if err != nil {
		return nil, ContactOutput{}, err
	}

	contact := &models.Contact{
		Name:            input.Name,
		Company:         input.Company,
		Email:           input.Email,
		Phone:           input.Phone,
		Address:         input.Address,
		Type:            models.ContactType(input.Type),
		Industry:        models.Industry(input.Industry),
		CompanySize:     models.CompanySize(input.CompanySize),
		EngagementLevel: models.EngagementLevel(input.EngagementLevel),
		Notes:           input.Notes,
		Tags:            input.Tags,
	}
	if err := h.engine.CreateContact(ctx, contact, cfg); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type FindContactsInput struct {
	Query  string `json:"query,omitempty" jsonschema:"Matches name, company, or email"`
	Type   string `json:"type,omitempty" jsonschema:"Filter by contact type"`
	SortBy string `json:"sort_by,omitempty" jsonschema:"name, company, or created (default name)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
}

func (h *ContactHandlers) FindContacts(ctx context.Context, _ *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 10
	}

	contacts, err := h.store.ListContacts(ctx, db.ContactFilter{
		Query:  input.Query,
		Type:   models.ContactType(input.Type),
		SortBy: input.SortBy,
		Limit:  limit,
	})
	if err != nil {
		return nil, FindContactsOutput{}, fmt.Errorf("failed to find contacts: %w", err)
	}

	result := make([]ContactOutput, len(contacts))
	for i := range contacts {
		result[i] = contactToOutput(&contacts[i])
	}
	return nil, FindContactsOutput{Contacts: result}, nil
}

type UpdateContactInput struct {
	ID     int64          `json:"id" jsonschema:"Contact ID (required)"`
	Fields map[string]any `json:"fields" jsonschema:"Fields to change. A null value clears the field; omitted fields are left alone"`
}

func (h *ContactHandlers) UpdateContact(ctx context.Context, _ *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ID == 0 {
		return nil, ContactOutput{}, fmt.Errorf("id is required")
	}
	patch := models.PatchFromMap(input.Fields)
	if patch.IsEmpty() {
		return nil, ContactOutput{}, fmt.Errorf("fields must contain at least one change")
	}

	cfg, err := h.store.LoadScoringConfig(ctx)
	if err != nil {
		return nil, ContactOutput{}, err
	}

	contact, err := h.engine.UpdateContact(ctx, input.ID, patch, cfg)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to update contact: %w", err)
	}
	return nil, contactToOutput(contact), nil
}

type DeleteContactInput struct {
	ID      int64 `json:"id" jsonschema:"Contact ID (required)"`
	Confirm bool  `json:"confirm" jsonschema:"Must be true; deletion cannot be undone"`
}

func (h *ContactHandlers) DeleteContact(ctx context.Context, _ *mcp.CallToolRequest, input DeleteContactInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if !input.Confirm {
		return nil, DeleteOutput{}, fmt.Errorf("delete_contact requires confirm: true")
	}
	if err := h.store.DeleteContact(ctx, input.ID); err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete contact: %w", err)
	}
	h.publisher.Publish(ctx, events.New(events.ContactsChanged, "contact deleted", input.ID))
	return nil, DeleteOutput{ID: input.ID, Deleted: true}, nil
}

type BulkUpdateInput struct {
	IDs    []int64        `json:"ids" jsonschema:"Record IDs to update (required)"`
	Fields map[string]any `json:"fields" jsonschema:"Fields to change on every record. A null value clears the field"`
}

type BulkUpdateContactsOutput struct {
	UpdatedCount int             `json:"updated_count"`
	FailedCount  int             `json:"failed_count"`
	Failures     []BulkFailure   `json:"failures,omitempty"`
	Contacts     []ContactOutput `json:"contacts"`
}

func (h *ContactHandlers) BulkUpdateContacts(ctx context.Context, _ *mcp.CallToolRequest, input BulkUpdateInput) (*mcp.CallToolResult, BulkUpdateContactsOutput, error) {
	if len(input.IDs) == 0 {
		return nil, BulkUpdateContactsOutput{}, fmt.Errorf("ids is required")
	}

	result, err := h.store.BulkUpdateContacts(ctx, input.IDs, models.PatchFromMap(input.Fields))
	if err != nil {
		return nil, BulkUpdateContactsOutput{}, fmt.Errorf("failed to update contacts: %w", err)
	}

	out := BulkUpdateContactsOutput{
		UpdatedCount: result.UpdatedCount,
		FailedCount:  result.FailedCount,
		Failures:     bulkFailures(result.Failures),
		Contacts:     make([]ContactOutput, len(result.Records)),
	}
	ids := make([]int64, len(result.Records))
	for i := range result.Records {
		out.Contacts[i] = contactToOutput(&result.Records[i])
		ids[i] = result.Records[i].ID
	}
	if len(ids) > 0 {
		h.publisher.Publish(ctx, events.New(events.ContactsChanged, "bulk update", ids...))
	}
	return nil, out, nil
}
