// ABOUTME: Data models for CRM entities
// ABOUTME: Defines Contact, Company, Deal, and Activity records plus their closed enums
package models

import (
	"time"
)

type Contact struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name" validate:"required,max=200"`
	Company         string          `json:"company,omitempty" validate:"max=200"`
	Email           string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone           string          `json:"phone,omitempty"`
	Address         string          `json:"address,omitempty"`
	Type            ContactType     `json:"type" validate:"omitempty,oneof=lead customer partner"`
	Industry        Industry        `json:"industry,omitempty" validate:"omitempty,oneof=technology healthcare finance retail manufacturing education other"`
	CompanySize     CompanySize     `json:"company_size,omitempty" validate:"omitempty,oneof=startup small medium large enterprise"`
	EngagementLevel EngagementLevel `json:"engagement_level,omitempty" validate:"omitempty,oneof=high medium low"`
	LeadScore       *int            `json:"lead_score,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Tags            []string        `json:"tags,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Score returns the stored lead score, or 0 when it has never been computed or was cleared.
func (c *Contact) Score() int {
	if c.LeadScore == nil {
		return 0
	}
	return *c.LeadScore
}

// Company is an account record. Contacts belong to a company by carrying its
// name in their Company field, matched without regard to case.
type Company struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name" validate:"required,max=200"`
	Industry     Industry    `json:"industry,omitempty" validate:"omitempty,oneof=technology healthcare finance retail manufacturing education other"`
	Website      string      `json:"website,omitempty" validate:"max=200"`
	ContactEmail string      `json:"contact_email,omitempty" validate:"omitempty,email"`
	PhoneNumber  string      `json:"phone_number,omitempty"`
	CompanySize  CompanySize `json:"company_size,omitempty" validate:"omitempty,oneof=startup small medium large enterprise"`
	Address      string      `json:"address,omitempty"`
	Description  string      `json:"description,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type Deal struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title" validate:"required,max=200"`
	Value             *float64   `json:"value,omitempty" validate:"omitempty,gte=0"`
	Stage             Stage      `json:"stage" validate:"required,oneof='Lead' 'Qualified' 'Proposal' 'Negotiation' 'Closed Won' 'Closed Lost'"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	ContactID         *int64     `json:"contact_id,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Amount returns the deal value with a missing value counted as zero.
func (d *Deal) Amount() float64 {
	if d.Value == nil {
		return 0
	}
	return *d.Value
}

type Activity struct {
	ID          int64        `json:"id"`
	Type        ActivityType `json:"type" validate:"required,oneof=call meeting task email"`
	Title       string       `json:"title" validate:"required,max=200"`
	Description string       `json:"description,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Completed   bool         `json:"completed"`
	Outcome     string       `json:"outcome,omitempty"`
	ContactID   *int64       `json:"contact_id,omitempty"`
	DealID      *int64       `json:"deal_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ContactType classifies the relationship with a contact.
type ContactType string

const (
	ContactTypeLead     ContactType = "lead"
	ContactTypeCustomer ContactType = "customer"
	ContactTypePartner  ContactType = "partner"
)

func (t ContactType) Valid() bool {
	switch t {
	case ContactTypeLead, ContactTypeCustomer, ContactTypePartner:
		return true
	}
	return false
}

type Industry string

const (
	IndustryTechnology    Industry = "technology"
	IndustryHealthcare    Industry = "healthcare"
	IndustryFinance       Industry = "finance"
	IndustryRetail        Industry = "retail"
	IndustryManufacturing Industry = "manufacturing"
	IndustryEducation     Industry = "education"
	IndustryOther         Industry = "other"
)

func (i Industry) Valid() bool {
	switch i {
	case IndustryTechnology, IndustryHealthcare, IndustryFinance, IndustryRetail,
		IndustryManufacturing, IndustryEducation, IndustryOther:
		return true
	}
	return false
}

type CompanySize string

const (
	CompanySizeStartup    CompanySize = "startup"
	CompanySizeSmall      CompanySize = "small"
	CompanySizeMedium     CompanySize = "medium"
	CompanySizeLarge      CompanySize = "large"
	CompanySizeEnterprise CompanySize = "enterprise"
)

func (s CompanySize) Valid() bool {
	switch s {
	case CompanySizeStartup, CompanySizeSmall, CompanySizeMedium, CompanySizeLarge, CompanySizeEnterprise:
		return true
	}
	return false
}

type EngagementLevel string

const (
	EngagementHigh   EngagementLevel = "high"
	EngagementMedium EngagementLevel = "medium"
	EngagementLow    EngagementLevel = "low"
)

func (e EngagementLevel) Valid() bool {
	switch e {
	case EngagementHigh, EngagementMedium, EngagementLow:
		return true
	}
	return false
}

type ActivityType string

const (
	ActivityCall    ActivityType = "call"
	ActivityMeeting ActivityType = "meeting"
	ActivityTask    ActivityType = "task"
	ActivityEmail   ActivityType = "email"
)

func (a ActivityType) Valid() bool {
	switch a {
	case ActivityCall, ActivityMeeting, ActivityTask, ActivityEmail:
		return true
	}
	return false
}

// Label returns a short human-readable label for CLI output.
func (a ActivityType) Label() string {
	switch a {
	case ActivityCall:
		return "Call"
	case ActivityMeeting:
		return "Meeting"
	case ActivityTask:
		return "Task"
	case ActivityEmail:
		return "Email"
	}
	return "Activity"
}
