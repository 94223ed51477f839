// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Read-only access to contacts, companies, deals, the pipeline, and scoring config via URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const resourceScheme = "leadflow://"

type ResourceHandlers struct {
	store *db.Store
}

func NewResourceHandlers(store *db.Store) *ResourceHandlers {
	return &ResourceHandlers{store: store}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")

	switch parts[0] {
	case "contacts":
		if len(parts) == 1 {
			contacts, err := h.store.ListContacts(ctx, db.ContactFilter{})
			return jsonResource(uri, contacts, err)
		}
		id, err := parseResourceID(parts[1])
		if err != nil {
			return nil, err
		}
		return h.readContact(ctx, uri, id)

	case "companies":
		if len(parts) == 1 {
			companies, err := h.store.ListCompanies(ctx, db.CompanyFilter{})
			return jsonResource(uri, companies, err)
		}
		id, err := parseResourceID(parts[1])
		if err != nil {
			return nil, err
		}
		return h.readCompany(ctx, uri, id)

	case "deals":
		if len(parts) == 1 {
			deals, err := h.store.ListDeals(ctx, db.DealFilter{})
			return jsonResource(uri, deals, err)
		}
		id, err := parseResourceID(parts[1])
		if err != nil {
			return nil, err
		}
		return h.readDeal(ctx, uri, id)

	case "pipeline":
		deals, err := h.store.ListDeals(ctx, db.DealFilter{})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch deals: %w", err)
		}
		return jsonResource(uri, pipeline.NewBoard(deals).Summary(), nil)

	case "scoring-config":
		cfg, err := h.store.LoadScoringConfig(ctx)
		return jsonResource(uri, cfg, err)

	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func parseResourceID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return id, nil
}

func (h *ResourceHandlers) readContact(ctx context.Context, uri string, id int64) (*mcp.ReadResourceResult, error) {
	contact, err := h.store.GetContact(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}
	deals, err := h.store.ListDeals(ctx, db.DealFilter{ContactID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact deals: %w", err)
	}
	activities, err := h.store.ListActivities(ctx, db.ActivityFilter{ContactID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact activities: %w", err)
	}

	return jsonResource(uri, struct {
		models.Contact
		Deals      []models.Deal     `json:"deals"`
		Activities []models.Activity `json:"activities"`
	}{*contact, deals, activities}, nil)
}

// readCompany includes the contacts whose company field names it.
func (h *ResourceHandlers) readCompany(ctx context.Context, uri string, id int64) (*mcp.ReadResourceResult, error) {
	company, err := h.store.GetCompany(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company: %w", err)
	}
	contacts, err := h.store.CompanyContacts(ctx, company)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company contacts: %w", err)
	}

	return jsonResource(uri, struct {
		models.Company
		Contacts []models.Contact `json:"contacts"`
	}{*company, contacts}, nil)
}

func (h *ResourceHandlers) readDeal(ctx context.Context, uri string, id int64) (*mcp.ReadResourceResult, error) {
	deal, err := h.store.GetDeal(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deal: %w", err)
	}
	activities, err := h.store.ListActivities(ctx, db.ActivityFilter{DealID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deal activities: %w", err)
	}

	return jsonResource(uri, struct {
		models.Deal
		Activities []models.Activity `json:"activities"`
	}{*deal, activities}, nil)
}

func jsonResource(uri string, v any, err error) (*mcp.ReadResourceResult, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", uri, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
