// ABOUTME: Contact database operations
// ABOUTME: Handles CRUD, filtered listing, patch updates, and bulk edits
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/leadflow/crmerr"
	"github.com/harperreed/leadflow/models"
)

const contactColumns = `id, name, company, email, phone, address, type, industry, company_size,
	engagement_level, lead_score, notes, tags, created_at, updated_at`

// Contact sort orders.
const (
	SortByName    = "name"
	SortByCompany = "company"
	SortByCreated = "created"
)

// ContactFilter narrows ListContacts. The zero value lists everything by name.
type ContactFilter struct {
	// Query matches name, company, or email, case-insensitively.
	Query string
	Type  models.ContactType
	// Company matches the company field exactly, ignoring case.
	Company string
	SortBy  string
	Limit   int
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var c models.Contact
	var company, email, phone, address, notes, tags sql.NullString
	var contactType, industry, companySize, engagementLevel sql.NullString
	var leadScore sql.NullInt64

	err := row.Scan(&c.ID, &c.Name, &company, &email, &phone, &address, &contactType, &industry,
		&companySize, &engagementLevel, &leadScore, &notes, &tags, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.Company = company.String
	c.Email = email.String
	c.Phone = phone.String
	c.Address = address.String
	c.Notes = notes.String
	c.Type = models.ContactType(contactType.String)
	c.Industry = models.Industry(industry.String)
	c.CompanySize = models.CompanySize(companySize.String)
	c.EngagementLevel = models.EngagementLevel(engagementLevel.String)
	c.Tags = decodeTags(tags)
	if leadScore.Valid {
		score := int(leadScore.Int64)
		c.LeadScore = &score
	}
	return &c, nil
}

// CreateContact validates and inserts a contact, assigning its ID and timestamps.
// An empty Type defaults to lead.
func (s *Store) CreateContact(ctx context.Context, contact *models.Contact) error {
	const op = "CreateContact"

	if contact.Type == "" {
		contact.Type = models.ContactTypeLead
	}
	if err := s.checkStruct(op, contact); err != nil {
		return err
	}

	tags, err := encodeTags(contact.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	now := s.now()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (name, company, email, phone, address, type, industry, company_size,
			engagement_level, lead_score, notes, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, contact.Name, nullString(contact.Company), nullString(contact.Email), nullString(contact.Phone),
		nullString(contact.Address), nullString(string(contact.Type)), nullString(string(contact.Industry)),
		nullString(string(contact.CompanySize)), nullString(string(contact.EngagementLevel)),
		contact.LeadScore, nullString(contact.Notes), tags, contact.CreatedAt, contact.UpdatedAt)
	if err != nil {
		return classify(op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read contact id: %w", err)
	}
	contact.ID = id
	return nil
}

// GetContact returns the contact or a NotFound error.
func (s *Store) GetContact(ctx context.Context, id int64) (*models.Contact, error) {
	const op = "GetContact"
	return withReadRetry(ctx, op, func() (*models.Contact, error) {
		return s.getContact(ctx, s.db, op, id)
	})
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) getContact(ctx context.Context, q querier, op string, id int64) (*models.Contact, error) {
	row := q.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, crmerr.NotFound(op, "contact", id)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListContacts returns contacts matching the filter.
func (s *Store) ListContacts(ctx context.Context, filter ContactFilter) ([]models.Contact, error) {
	const op = "ListContacts"

	var (
		where []string
		args  []any
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(IFNULL(company, '')) LIKE ? OR LOWER(IFNULL(email, '')) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(filter.Type))
	}
	if c := strings.TrimSpace(filter.Company); c != "" {
		where = append(where, "company = ? COLLATE NOCASE")
		args = append(args, c)
	}

	query := `SELECT ` + contactColumns + ` FROM contacts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	switch filter.SortBy {
	case SortByCompany:
		query += " ORDER BY LOWER(IFNULL(company, '')), id"
	case SortByCreated:
		query += " ORDER BY created_at DESC, id DESC"
	default:
		query += " ORDER BY LOWER(name), id"
	}

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	return withReadRetry(ctx, op, func() ([]models.Contact, error) {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var contacts []models.Contact
		for rows.Next() {
			c, err := scanContact(rows)
			if err != nil {
				return nil, err
			}
			contacts = append(contacts, *c)
		}
		return contacts, rows.Err()
	})
}

// UpdateContact applies a patch to one contact and returns the stored result.
func (s *Store) UpdateContact(ctx context.Context, id int64, patch models.Patch) (*models.Contact, error) {
	return s.updateContact(ctx, s.db, "UpdateContact", id, patch)
}

func (s *Store) updateContact(ctx context.Context, q querier, op string, id int64, patch models.Patch) (*models.Contact, error) {
	contact, err := s.getContact(ctx, q, op, id)
	if err != nil {
		return nil, classify(op, err)
	}

	if fieldErrs := applyContactPatch(contact, patch); len(fieldErrs) > 0 {
		return nil, crmerr.Validation(op, fieldErrs...)
	}
	if err := s.checkStruct(op, contact); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return contact, nil
	}

	tags, err := encodeTags(contact.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	contact.UpdatedAt = s.now()

	_, err = q.ExecContext(ctx, `
		UPDATE contacts
		SET name = ?, company = ?, email = ?, phone = ?, address = ?, type = ?, industry = ?,
			company_size = ?, engagement_level = ?, lead_score = ?, notes = ?, tags = ?, updated_at = ?
		WHERE id = ?
	`, contact.Name, nullString(contact.Company), nullString(contact.Email), nullString(contact.Phone),
		nullString(contact.Address), nullString(string(contact.Type)), nullString(string(contact.Industry)),
		nullString(string(contact.CompanySize)), nullString(string(contact.EngagementLevel)),
		contact.LeadScore, nullString(contact.Notes), tags, contact.UpdatedAt, id)
	if err != nil {
		return nil, classify(op, err)
	}
	return contact, nil
}

// BulkUpdateContacts applies the same patch to every id. Each record succeeds or
// fails on its own; failures are counted and kept in Failures.
func (s *Store) BulkUpdateContacts(ctx context.Context, ids []int64, patch models.Patch) (*BulkResult[models.Contact], error) {
	const op = "BulkUpdateContacts"

	if patch.IsEmpty() {
		return nil, crmerr.Validation(op, crmerr.FieldError{Field: "patch", Message: "no changes specified"})
	}

	result := newBulkResult[models.Contact](len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		updated, err := s.updateContact(ctx, s.db, op, id, patch)
		if err != nil {
			result.FailedCount++
			result.Failures[id] = err
			continue
		}
		result.UpdatedCount++
		result.Records = append(result.Records, *updated)
	}
	return result, nil
}

// DeleteContact removes a contact and detaches deals and activities that point at it.
func (s *Store) DeleteContact(ctx context.Context, id int64) error {
	const op = "DeleteContact"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(op, fmt.Errorf("failed to start transaction: %w", err))
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	if _, err := tx.ExecContext(ctx, `UPDATE deals SET contact_id = NULL WHERE contact_id = ?`, id); err != nil {
		return classify(op, fmt.Errorf("failed to update deals: %w", err))
	}
	if _, err := tx.ExecContext(ctx, `UPDATE activities SET contact_id = NULL WHERE contact_id = ?`, id); err != nil {
		return classify(op, fmt.Errorf("failed to update activities: %w", err))
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return classify(op, fmt.Errorf("failed to delete contact: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return crmerr.NotFound(op, "contact", id)
	}

	return classify(op, tx.Commit())
}
