// ABOUTME: Applies tagged field diffs to records before they are written
// ABOUTME: Coerces loosely-typed patch values and reports per-field errors
package db

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/leadflow/crmerr"
	"github.com/harperreed/leadflow/models"
)

func applyContactPatch(c *models.Contact, p models.Patch) []crmerr.FieldError {
	var errs []crmerr.FieldError
	for _, field := range p.Changed() {
		d := p[field]
		cleared := d.Kind == models.Cleared
		var err error

		switch field {
		case models.FieldName:
			c.Name, err = stringValue(d)
		case models.FieldCompany:
			c.Company, err = stringValue(d)
		case models.FieldEmail:
			c.Email, err = stringValue(d)
		case models.FieldPhone:
			c.Phone, err = stringValue(d)
		case models.FieldAddress:
			c.Address, err = stringValue(d)
		case models.FieldNotes:
			c.Notes, err = stringValue(d)
		case models.FieldType:
			var s string
			s, err = stringValue(d)
			c.Type = models.ContactType(s)
		case models.FieldIndustry:
			var s string
			s, err = stringValue(d)
			c.Industry = models.Industry(s)
		case models.FieldCompanySize:
			var s string
			s, err = stringValue(d)
			c.CompanySize = models.CompanySize(s)
		case models.FieldEngagementLevel:
			var s string
			s, err = stringValue(d)
			c.EngagementLevel = models.EngagementLevel(s)
		case models.FieldLeadScore:
			if cleared {
				c.LeadScore = nil
				break
			}
			var n int64
			n, err = intValue(d.Value)
			if err == nil {
				score := int(n)
				c.LeadScore = &score
			}
		case models.FieldTags:
			c.Tags, err = tagsValue(d)
		default:
			err = fmt.Errorf("unknown field")
		}

		if err != nil {
			errs = append(errs, crmerr.FieldError{Field: field, Message: err.Error()})
		}
	}
	return errs
}

func applyCompanyPatch(c *models.Company, p models.Patch) []crmerr.FieldError {
	var errs []crmerr.FieldError
	for _, field := range p.Changed() {
		d := p[field]
		var err error

		switch field {
		case models.FieldName:
			c.Name, err = stringValue(d)
		case models.FieldWebsite:
			c.Website, err = stringValue(d)
		case models.FieldContactEmail:
			c.ContactEmail, err = stringValue(d)
		case models.FieldPhoneNumber:
			c.PhoneNumber, err = stringValue(d)
		case models.FieldAddress:
			c.Address, err = stringValue(d)
		case models.FieldDescription:
			c.Description, err = stringValue(d)
		case models.FieldIndustry:
			var s string
			s, err = stringValue(d)
			c.Industry = models.Industry(s)
		case models.FieldCompanySize:
			var s string
			s, err = stringValue(d)
			c.CompanySize = models.CompanySize(s)
		case models.FieldTags:
			c.Tags, err = tagsValue(d)
		default:
			err = fmt.Errorf("unknown field")
		}

		if err != nil {
			errs = append(errs, crmerr.FieldError{Field: field, Message: err.Error()})
		}
	}
	return errs
}

func applyDealPatch(deal *models.Deal, p models.Patch) []crmerr.FieldError {
	var errs []crmerr.FieldError
	for _, field := range p.Changed() {
		d := p[field]
		cleared := d.Kind == models.Cleared
		var err error

		switch field {
		case models.FieldTitle:
			deal.Title, err = stringValue(d)
		case models.FieldNotes:
			deal.Notes, err = stringValue(d)
		case models.FieldStage:
			var s string
			s, err = stringValue(d)
			deal.Stage = models.Stage(s)
		case models.FieldValue:
			if cleared {
				deal.Value = nil
				break
			}
			var f float64
			f, err = floatValue(d.Value)
			if err == nil {
				deal.Value = &f
			}
		case models.FieldExpectedCloseDate:
			deal.ExpectedCloseDate, err = timeValue(d)
		case models.FieldContactID:
			deal.ContactID, err = idValue(d)
		case models.FieldTags:
			deal.Tags, err = tagsValue(d)
		default:
			err = fmt.Errorf("unknown field")
		}

		if err != nil {
			errs = append(errs, crmerr.FieldError{Field: field, Message: err.Error()})
		}
	}
	return errs
}

func applyActivityPatch(a *models.Activity, p models.Patch) []crmerr.FieldError {
	var errs []crmerr.FieldError
	for _, field := range p.Changed() {
		d := p[field]
		var err error

		switch field {
		case models.FieldType:
			var s string
			s, err = stringValue(d)
			a.Type = models.ActivityType(s)
		case models.FieldTitle:
			a.Title, err = stringValue(d)
		case models.FieldDescription:
			a.Description, err = stringValue(d)
		case models.FieldOutcome:
			a.Outcome, err = stringValue(d)
		case models.FieldDueDate:
			a.DueDate, err = timeValue(d)
		case models.FieldCompleted:
			if d.Kind == models.Cleared {
				a.Completed = false
				break
			}
			a.Completed, err = boolValue(d.Value)
		case models.FieldContactID:
			a.ContactID, err = idValue(d)
		case models.FieldDealID:
			a.DealID, err = idValue(d)
		default:
			err = fmt.Errorf("unknown field")
		}

		if err != nil {
			errs = append(errs, crmerr.FieldError{Field: field, Message: err.Error()})
		}
	}
	return errs
}

type stringer interface{ String() string }

func stringValue(d models.FieldDiff) (string, error) {
	if d.Kind == models.Cleared {
		return "", nil
	}
	switch v := d.Value.(type) {
	case string:
		return v, nil
	case *string:
		if v == nil {
			return "", nil
		}
		return *v, nil
	case models.ContactType:
		return string(v), nil
	case models.Industry:
		return string(v), nil
	case models.CompanySize:
		return string(v), nil
	case models.EngagementLevel:
		return string(v), nil
	case models.Stage:
		return string(v), nil
	case models.ActivityType:
		return string(v), nil
	case stringer:
		return v.String(), nil
	}
	return "", fmt.Errorf("expected text, got %T", d.Value)
}

func intValue(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case *int:
		if n != nil {
			return int64(*n), nil
		}
	case float64:
		if n == math.Trunc(n) {
			return int64(n), nil
		}
		return 0, fmt.Errorf("expected an integer, got %v", n)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %q", n)
		}
		return i, nil
	}
	return 0, fmt.Errorf("expected an integer, got %T", v)
}

func floatValue(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case *float64:
		if n != nil {
			return *n, nil
		}
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("expected a number, got %q", n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

func boolValue(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, fmt.Errorf("expected true or false, got %q", b)
		}
		return parsed, nil
	}
	return false, fmt.Errorf("expected a boolean, got %T", v)
}

func idValue(d models.FieldDiff) (*int64, error) {
	if d.Kind == models.Cleared {
		return nil, nil
	}
	if p, ok := d.Value.(*int64); ok {
		return p, nil
	}
	n, err := intValue(d.Value)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("must be a positive id")
	}
	return &n, nil
}

// dateLayouts are accepted for date fields given as text.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func timeValue(d models.FieldDiff) (*time.Time, error) {
	if d.Kind == models.Cleared {
		return nil, nil
	}
	switch v := d.Value.(type) {
	case time.Time:
		return &v, nil
	case *time.Time:
		return v, nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return &t, nil
			}
		}
		return nil, fmt.Errorf("expected a date (YYYY-MM-DD or RFC3339), got %q", v)
	}
	return nil, fmt.Errorf("expected a date, got %T", d.Value)
}

// tagsValue accepts a string slice or a comma-separated string.
func tagsValue(d models.FieldDiff) ([]string, error) {
	if d.Kind == models.Cleared {
		return nil, nil
	}
	switch v := d.Value.(type) {
	case []string:
		return cleanTags(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected text tags, got %T", item)
			}
			out = append(out, s)
		}
		return cleanTags(out), nil
	case string:
		return cleanTags(strings.Split(v, ",")), nil
	}
	return nil, fmt.Errorf("expected tags, got %T", d.Value)
}

func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
