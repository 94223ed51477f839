// ABOUTME: Company MCP tool handlers
// ABOUTME: Implements add_company, find_companies, update_company, bulk_update_companies, and delete_company
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/events"
	"github.com/harperreed/leadflow/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type CompanyHandlers struct {
	store     *db.Store
	publisher events.Publisher
}

func NewCompanyHandlers(store *db.Store, publisher events.Publisher) *CompanyHandlers {
	if publisher == nil {
		publisher = events.Nop
	}
	return &CompanyHandlers{store: store, publisher: publisher}
}

type AddCompanyInput struct {
	Name         string   `json:"name" jsonschema:"Company name (required)"`
	Industry     string   `json:"industry,omitempty" jsonschema:"technology, healthcare, finance, retail, manufacturing, education, or other (default other)"`
	Website      string   `json:"website,omitempty" jsonschema:"Website (e.g., acme.com)"`
	ContactEmail string   `json:"contact_email,omitempty" jsonschema:"General contact email"`
	PhoneNumber  string   `json:"phone_number,omitempty" jsonschema:"Main phone number"`
	CompanySize  string   `json:"company_size,omitempty" jsonschema:"startup, small, medium, large, or enterprise (default small)"`
	Address      string   `json:"address,omitempty" jsonschema:"Postal address"`
	Description  string   `json:"description,omitempty" jsonschema:"What the company does"`
	Tags         []string `json:"tags,omitempty" jsonschema:"Tags"`
}

func (h *CompanyHandlers) AddCompany(ctx context.Context, _ *mcp.CallToolRequest, input AddCompanyInput) (*mcp.CallToolResult, CompanyOutput, error) {
	if input.Name == "" {
		return nil, CompanyOutput{}, fmt.Errorf("name is required")
	}

	company := &models.Company{
		Name:         input.Name,
		Industry:     models.Industry(input.Industry),
		Website:      input.Website,
		ContactEmail: input.ContactEmail,
		PhoneNumber:  input.PhoneNumber,
		CompanySize:  models.CompanySize(input.CompanySize),
		Address:      input.Address,
		Description:  input.Description,
		Tags:         input.Tags,
	}
	if err := h.store.CreateCompany(ctx, company); err != nil {
		return nil, CompanyOutput{}, fmt.Errorf("failed to create company: %w", err)
	}

	h.publisher.Publish(ctx, events.New(events.CompaniesChanged, "company created", company.ID))
	return nil, companyToOutput(company), nil
}

type FindCompaniesInput struct {
	Query    string `json:"query,omitempty" jsonschema:"Search name, industry, and contact email"`
	Industry string `json:"industry,omitempty" jsonschema:"Only companies in this industry"`
	SortBy   string `json:"sort_by,omitempty" jsonschema:"name, industry, or created (default name)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindCompaniesOutput struct {
	Companies []CompanyOutput `json:"companies"`
}

func (h *CompanyHandlers) FindCompanies(ctx context.Context, _ *mcp.CallToolRequest, input FindCompaniesInput) (*mcp.CallToolResult, FindCompaniesOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 10
	}

	companies, err := h.store.ListCompanies(ctx, db.CompanyFilter{
		Query:    input.Query,
		Industry: models.Industry(input.Industry),
		SortBy:   input.SortBy,
		Limit:    limit,
	})
	if err != nil {
		return nil, FindCompaniesOutput{}, fmt.Errorf("failed to find companies: %w", err)
	}

	result := make([]CompanyOutput, len(companies))
	for i := range companies {
		result[i] = companyToOutput(&companies[i])
	}
	return nil, FindCompaniesOutput{Companies: result}, nil
}

type UpdateCompanyInput struct {
	ID     int64          `json:"id" jsonschema:"Company ID (required)"`
	Fields map[string]any `json:"fields" jsonschema:"Fields to change. A null value clears the field; omitted fields are left alone"`
}

func (h *CompanyHandlers) UpdateCompany(ctx context.Context, _ *mcp.CallToolRequest, input UpdateCompanyInput) (*mcp.CallToolResult, CompanyOutput, error) {
	if input.ID == 0 {
		return nil, CompanyOutput{}, fmt.Errorf("id is required")
	}
	patch := models.PatchFromMap(input.Fields)
	if patch.IsEmpty() {
		return nil, CompanyOutput{}, fmt.Errorf("fields must contain at least one change")
	}

	company, err := h.store.UpdateCompany(ctx, input.ID, patch)
	if err != nil {
		return nil, CompanyOutput{}, fmt.Errorf("failed to update company: %w", err)
	}

	h.publisher.Publish(ctx, events.New(events.CompaniesChanged, "company updated", company.ID))
	return nil, companyToOutput(company), nil
}

type BulkUpdateCompaniesOutput struct {
	UpdatedCount int             `json:"updated_count"`
	FailedCount  int             `json:"failed_count"`
	Failures     []BulkFailure   `json:"failures,omitempty"`
	Companies    []CompanyOutput `json:"companies"`
}

func (h *CompanyHandlers) BulkUpdateCompanies(ctx context.Context, _ *mcp.CallToolRequest, input BulkUpdateInput) (*mcp.CallToolResult, BulkUpdateCompaniesOutput, error) {
	if len(input.IDs) == 0 {
		return nil, BulkUpdateCompaniesOutput{}, fmt.Errorf("ids is required")
	}

	result, err := h.store.BulkUpdateCompanies(ctx, input.IDs, models.PatchFromMap(input.Fields))
	if err != nil {
		return nil, BulkUpdateCompaniesOutput{}, fmt.Errorf("failed to update companies: %w", err)
	}

	out := BulkUpdateCompaniesOutput{
		UpdatedCount: result.UpdatedCount,
		FailedCount:  result.FailedCount,
		Failures:     bulkFailures(result.Failures),
		Companies:    make([]CompanyOutput, len(result.Records)),
	}
	ids := make([]int64, len(result.Records))
	for i := range result.Records {
		out.Companies[i] = companyToOutput(&result.Records[i])
		ids[i] = result.Records[i].ID
	}
	if len(ids) > 0 {
		h.publisher.Publish(ctx, events.New(events.CompaniesChanged, "bulk update", ids...))
	}
	return nil, out, nil
}

type DeleteCompanyInput struct {
	ID      int64 `json:"id" jsonschema:"Company ID (required)"`
	Confirm bool  `json:"confirm" jsonschema:"Must be true; deletion cannot be undone"`
}

func (h *CompanyHandlers) DeleteCompany(ctx context.Context, _ *mcp.CallToolRequest, input DeleteCompanyInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if !input.Confirm {
		return nil, DeleteOutput{}, fmt.Errorf("delete_company requires confirm: true")
	}
	if err := h.store.DeleteCompany(ctx, input.ID); err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete company: %w", err)
	}
	h.publisher.Publish(ctx, events.New(events.CompaniesChanged, "company deleted", input.ID))
	return nil, DeleteOutput{ID: input.ID, Deleted: true}, nil
}
