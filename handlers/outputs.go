// ABOUTME: Shared MCP tool output shapes and conversions
// ABOUTME: Flattens records to JSON-friendly outputs with RFC3339 timestamps
package handlers

import (
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/leadflow/models"
)

type ContactOutput struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Company         string   `json:"company,omitempty"`
	Email           string   `json:"email,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	Address         string   `json:"address,omitempty"`
	Type            string   `json:"type"`
	Industry        string   `json:"industry,omitempty"`
	CompanySize     string   `json:"company_size,omitempty"`
	EngagementLevel string   `json:"engagement_level,omitempty"`
	LeadScore       *int     `json:"lead_score,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

func contactToOutput(c *models.Contact) ContactOutput {
	return ContactOutput{
		ID:              c.ID,
		Name:            c.Name,
		Company:         c.Company,
		Email:           c.Email,
		Phone:           c.Phone,
		Address:         c.Address,
		Type:            string(c.Type),
		Industry:        string(c.Industry),
		CompanySize:     string(c.CompanySize),
		EngagementLevel: string(c.EngagementLevel),
		LeadScore:       c.LeadScore,
		Notes:           c.Notes,
		Tags:            c.Tags,
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       c.UpdatedAt.Format(time.RFC3339),
	}
}

type CompanyOutput struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Industry     string   `json:"industry,omitempty"`
	Website      string   `json:"website,omitempty"`
	ContactEmail string   `json:"contact_email,omitempty"`
	PhoneNumber  string   `json:"phone_number,omitempty"`
	CompanySize  string   `json:"company_size,omitempty"`
	Address      string   `json:"address,omitempty"`
	Description  string   `json:"description,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

func companyToOutput(c *models.Company) CompanyOutput {
	return CompanyOutput{
		ID:           c.ID,
		Name:         c.Name,
		Industry:     string(c.Industry),
		Website:      c.Website,
		ContactEmail: c.ContactEmail,
		PhoneNumber:  c.PhoneNumber,
		CompanySize:  string(c.CompanySize),
		Address:      c.Address,
		Description:  c.Description,
		Tags:         c.Tags,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    c.UpdatedAt.Format(time.RFC3339),
	}
}

type DealOutput struct {
	ID                int64    `json:"id"`
	Title             string   `json:"title"`
	Value             *float64 `json:"value,omitempty"`
	Stage             string   `json:"stage"`
	ExpectedCloseDate *string  `json:"expected_close_date,omitempty"`
	Notes             string   `json:"notes,omitempty"`
	ContactID         *int64   `json:"contact_id,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

func dealToOutput(d *models.Deal) DealOutput {
	return DealOutput{
		ID:                d.ID,
		Title:             d.Title,
		Value:             d.Value,
		Stage:             string(d.Stage),
		ExpectedCloseDate: formatDate(d.ExpectedCloseDate),
		Notes:             d.Notes,
		ContactID:         d.ContactID,
		Tags:              d.Tags,
		CreatedAt:         d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         d.UpdatedAt.Format(time.RFC3339),
	}
}

type ActivityOutput struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Completed   bool    `json:"completed"`
	Outcome     string  `json:"outcome,omitempty"`
	ContactID   *int64  `json:"contact_id,omitempty"`
	DealID      *int64  `json:"deal_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func activityToOutput(a *models.Activity) ActivityOutput {
	return ActivityOutput{
		ID:          a.ID,
		Type:        string(a.Type),
		Title:       a.Title,
		Description: a.Description,
		DueDate:     formatDate(a.DueDate),
		Completed:   a.Completed,
		Outcome:     a.Outcome,
		ContactID:   a.ContactID,
		DealID:      a.DealID,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// parseDate accepts YYYY-MM-DD or RFC3339. An empty string is no date.
func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid %s %q: use YYYY-MM-DD", field, value)
}

type DeleteOutput struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

type BulkFailure struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

func bulkFailures(failures map[int64]error) []BulkFailure {
	out := make([]BulkFailure, 0, len(failures))
	for id, err := range failures {
		out = append(out, BulkFailure{ID: id, Error: err.Error()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
