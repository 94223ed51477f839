// ABOUTME: Company database operations
// ABOUTME: Handles CRUD, filtered listing, name lookups, and bulk edits
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

const companyColumns = `id, name, industry, website, contact_email, phone_number, company_size,
	address, description, tags, created_at, updated_at`

// Company sort orders. SortByName and SortByCreated are shared with contacts.
const SortByIndustry = "industry"

// CompanyFilter narrows ListCompanies. The zero value lists everything by name.
type CompanyFilter struct {
	// Query matches name, industry, or contact email, case-insensitively.
	Query    string
	Industry models.Industry
	SortBy   string
	Limit    int
}

func scanCompany(row rowScanner) (*models.Company, error) {
	var c models.Company
	var industry, website, email, phone, size, address, description, tags sql.NullString

	err := row.Scan(&c.ID, &c.Name, &industry, &website, &email, &phone, &size,
		&address, &description, &tags, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.Industry = models.Industry(industry.String)
	c.Website = website.String
	c.ContactEmail = email.String
	c.PhoneNumber = phone.String
	c.CompanySize = models.CompanySize(size.String)
	c.Address = address.String
	c.Description = description.String
	c.Tags = decodeTags(tags)
	return &c, nil
}

// CreateCompany validates and inserts a company. A missing industry is stored as
// other and a missing size as small.
func (s *Store) CreateCompany(ctx context.Context, company *models.Company) error {
	const op = "CreateCompany"

	if company.Industry == "" {
		company.Industry = models.IndustryOther
	}
	if company.CompanySize == "" {
		company.CompanySize = models.CompanySizeSmall
	}
	if err := s.checkStruct(op, company); err != nil {
		return err
	}

	tags, err := encodeTags(company.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	now := s.now()
	company.CreatedAt = now
	company.UpdatedAt = now

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO companies (name, industry, website, contact_email, phone_number, company_size,
			address, description, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, company.Name, nullString(string(company.Industry)), nullString(company.Website),
		nullString(company.ContactEmail), nullString(company.PhoneNumber),
		nullString(string(company.CompanySize)), nullString(company.Address),
		nullString(company.Description), tags, company.CreatedAt, company.UpdatedAt)
	if err != nil {
		return classify(op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read company id: %w", err)
	}
	company.ID = id
	return nil
}

// GetCompany returns the company or a NotFound error.
func (s *Store) GetCompany(ctx context.Context, id int64) (*models.Company, error) {
	const op = "GetCompany"
	return withReadRetry(ctx, op, func() (*models.Company, error) {
		row := s.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = ?`, id)
		c, err := scanCompany(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, crmerr.NotFound(op, "company", id)
		}
		return c, err
	})
}

// FindCompanyByName returns the oldest company with this name, ignoring case,
// or a NotFound error.
func (s *Store) FindCompanyByName(ctx context.Context, name string) (*models.Company, error) {
	const op = "FindCompanyByName"
	return withReadRetry(ctx, op, func() (*models.Company, error) {
		row := s.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies
			WHERE name = ? COLLATE NOCASE ORDER BY id LIMIT 1`, strings.TrimSpace(name))
		c, err := scanCompany(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &crmerr.Error{Kind: crmerr.KindNotFound, Op: op, Message: fmt.Sprintf("company %q not found", name)}
		}
		return c, err
	})
}

// ListCompanies returns companies matching the filter.
func (s *Store) ListCompanies(ctx context.Context, filter CompanyFilter) ([]models.Company, error) {
	const op = "ListCompanies"

	var (
		where []string
		args  []any
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(IFNULL(industry, '')) LIKE ? OR LOWER(IFNULL(contact_email, '')) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Industry != "" {
		where = append(where, "industry = ?")
		args = append(args, string(filter.Industry))
	}

	query := `SELECT ` + companyColumns + ` FROM companies`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	switch filter.SortBy {
	case SortByIndustry:
		query += " ORDER BY IFNULL(industry, ''), LOWER(name), id"
	case SortByCreated:
		query += " ORDER BY created_at DESC, id DESC"
	default:
		query += " ORDER BY LOWER(name), id"
	}

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	return withReadRetry(ctx, op, func() ([]models.Company, error) {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var companies []models.Company
		for rows.Next() {
			c, err := scanCompany(rows)
			if err != nil {
				return nil, err
			}
			companies = append(companies, *c)
		}
		return companies, rows.Err()
	})
}

// CompanyContacts lists the contacts whose company field names this company.
func (s *Store) CompanyContacts(ctx context.Context, company *models.Company) ([]models.Contact, error) {
	return s.ListContacts(ctx, ContactFilter{Company: company.Name})
}

// UpdateCompany applies a patch to one company and returns the stored result.
func (s *Store) UpdateCompany(ctx context.Context, id int64, patch models.Patch) (*models.Company, error) {
	return s.updateCompany(ctx, "UpdateCompany", id, patch)
}

func (s *Store) updateCompany(ctx context.Context, op string, id int64, patch models.Patch) (*models.Company, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = ?`, id)
	company, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, crmerr.NotFound(op, "company", id)
	}
	if err != nil {
		return nil, classify(op, err)
	}

	if fieldErrs := applyCompanyPatch(company, patch); len(fieldErrs) > 0 {
		return nil, crmerr.Validation(op, fieldErrs...)
	}
	if err := s.checkStruct(op, company); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return company, nil
	}

	tags, err := encodeTags(company.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	company.UpdatedAt = s.now()

	_, err = s.db.ExecContext(ctx, `
		UPDATE companies
		SET name = ?, industry = ?, website = ?, contact_email = ?, phone_number = ?, company_size = ?,
			address = ?, description = ?, tags = ?, updated_at = ?
		WHERE id = ?
	`, company.Name, nullString(string(company.Industry)), nullString(company.Website),
		nullString(company.ContactEmail), nullString(company.PhoneNumber),
		nullString(string(company.CompanySize)), nullString(company.Address),
		nullString(company.Description), tags, company.UpdatedAt, id)
	if err != nil {
		return nil, classify(op, err)
	}
	return company, nil
}

// BulkUpdateCompanies applies the same patch to every id, counting per-record failures.
func (s *Store) BulkUpdateCompanies(ctx context.Context, ids []int64, patch models.Patch) (*BulkResult[models.Company], error) {
	const op = "BulkUpdateCompanies"

	if patch.IsEmpty() {
		return nil, crmerr.Validation(op, crmerr.FieldError{Field: "patch", Message: "no changes specified"})
	}

	result := newBulkResult[models.Company](len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		updated, err := s.updateCompany(ctx, op, id, patch)
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

// DeleteCompany removes a company. Contacts keep their company text.
func (s *Store) DeleteCompany(ctx context.Context, id int64) error {
	const op = "DeleteCompany"

	res, err := s.db.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id)
	if err != nil {
		return classify(op, fmt.Errorf("failed to delete company: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return crmerr.NotFound(op, "company", id)
	}
	return nil
}
