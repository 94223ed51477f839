// ABOUTME: Tagged per-field update diffs for single and bulk edits
// ABOUTME: Distinguishes unchanged, set-to-value, and cleared fields explicitly
package models

import (
	"sort"
	"strings"
	"unicode"
)

// DiffKind tags a FieldDiff.
type DiffKind int

const (
	// Unchanged leaves the field as stored. It is the zero value.
	Unchanged DiffKind = iota
	// Set writes FieldDiff.Value to the field.
	Set
	// Cleared nulls the field.
	Cleared
)

func (k DiffKind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Set:
		return "set"
	case Cleared:
		return "cleared"
	}
	return "unknown"
}

// FieldDiff is the change applied to one field of a record.
type FieldDiff struct {
	Kind  DiffKind
	Value any
}

func SetTo(v any) FieldDiff { return FieldDiff{Kind: Set, Value: v} }

func Clear() FieldDiff { return FieldDiff{Kind: Cleared} }

// Patch maps store field names to their diffs. Fields missing from the map are
// unchanged.
type Patch map[string]FieldDiff

// NewPatch returns an empty patch.
func NewPatch() Patch { return Patch{} }

// Set records a SetTo diff for field and returns p for chaining.
func (p Patch) Set(field string, v any) Patch {
	p[NormalizeField(field)] = SetTo(v)
	return p
}

// Clear records a Cleared diff for field and returns p for chaining.
func (p Patch) Clear(field string) Patch {
	p[NormalizeField(field)] = Clear()
	return p
}

// Changed returns the sorted names of fields that are set or cleared.
func (p Patch) Changed() []string {
	out := make([]string, 0, len(p))
	for name, d := range p {
		if d.Kind != Unchanged {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (p Patch) IsEmpty() bool {
	return len(p.Changed()) == 0
}

// Touches reports whether any of fields is set or cleared by p.
func (p Patch) Touches(fields ...string) bool {
	for _, f := range fields {
		if d, ok := p[f]; ok && d.Kind != Unchanged {
			return true
		}
	}
	return false
}

// PatchFromMap builds a patch from loosely-typed input such as decoded JSON. A key
// mapped to nil clears the field; absent keys stay unchanged. Keys are normalized
// with NormalizeField so "leadScore_c" and "lead_score" name the same field.
func PatchFromMap(m map[string]any) Patch {
	p := make(Patch, len(m))
	for k, v := range m {
		if v == nil {
			p.Clear(k)
			continue
		}
		p.Set(k, v)
	}
	return p
}

// NormalizeField maps a field name to the store's snake_case column name. It drops
// the "_c" custom-field suffix used by hosted record backends and converts camelCase.
func NormalizeField(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(name, "_c")

	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Store field names for contacts.
const (
	FieldName            = "name"
	FieldCompany         = "company"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldAddress         = "address"
	FieldType            = "type"
	FieldIndustry        = "industry"
	FieldCompanySize     = "company_size"
	FieldEngagementLevel = "engagement_level"
	FieldLeadScore       = "lead_score"
	FieldNotes           = "notes"
	FieldTags            = "tags"
)

// Store field names for deals and activities.
const (
	FieldTitle             = "title"
	FieldValue             = "value"
	FieldStage             = "stage"
	FieldExpectedCloseDate = "expected_close_date"
	FieldContactID         = "contact_id"
	FieldDealID            = "deal_id"
	FieldDescription       = "description"
	FieldDueDate           = "due_date"
	FieldCompleted         = "completed"
	FieldOutcome           = "outcome"
)

// Store field names for companies, beyond the shared ones above.
const (
	FieldWebsite      = "website"
	FieldContactEmail = "contact_email"
	FieldPhoneNumber  = "phone_number"
)

// ScoringFields are the contact fields that feed the lead score.
var ScoringFields = []string{FieldCompanySize, FieldType, FieldIndustry, FieldEngagementLevel}
