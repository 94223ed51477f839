// ABOUTME: Deal database operations
// ABOUTME: Handles deal lifecycle, stage filtering, patch updates, and bulk edits
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

const dealColumns = `id, title, value, stage, expected_close_date, notes, contact_id, tags, created_at, updated_at`

// DealFilter narrows ListDeals. The zero value lists every deal.
type DealFilter struct {
	Stage     models.Stage
	ContactID *int64
	Limit     int
}

func scanDeal(row rowScanner) (*models.Deal, error) {
	var d models.Deal
	var value sql.NullFloat64
	var closeDate sql.NullTime
	var notes, tags sql.NullString
	var contactID sql.NullInt64
	var stage string

	err := row.Scan(&d.ID, &d.Title, &value, &stage, &closeDate, &notes, &contactID, &tags, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}

	d.Stage = models.Stage(stage)
	d.Notes = notes.String
	d.Tags = decodeTags(tags)
	d.ContactID = nullInt64Ptr(contactID)
	d.ExpectedCloseDate = nullTimePtr(closeDate)
	if value.Valid {
		v := value.Float64
		d.Value = &v
	}
	return &d, nil
}

// CreateDeal validates and inserts a deal. An empty stage defaults to Lead.
func (s *Store) CreateDeal(ctx context.Context, deal *models.Deal) error {
	const op = "CreateDeal"

	if deal.Stage == "" {
		deal.Stage = models.StageLead
	}
	if err := s.checkStruct(op, deal); err != nil {
		return err
	}

	tags, err := encodeTags(deal.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	now := s.now()
	deal.CreatedAt = now
	deal.UpdatedAt = now

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO deals (title, value, stage, expected_close_date, notes, contact_id, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, deal.Title, deal.Value, string(deal.Stage), deal.ExpectedCloseDate, nullString(deal.Notes),
		deal.ContactID, tags, deal.CreatedAt, deal.UpdatedAt)
	if err != nil {
		return classify(op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read deal id: %w", err)
	}
	deal.ID = id
	return nil
}

// GetDeal returns the deal or a NotFound error.
func (s *Store) GetDeal(ctx context.Context, id int64) (*models.Deal, error) {
	const op = "GetDeal"
	return withReadRetry(ctx, op, func() (*models.Deal, error) {
		return s.getDeal(ctx, s.db, op, id)
	})
}

func (s *Store) getDeal(ctx context.Context, q querier, op string, id int64) (*models.Deal, error) {
	row := q.QueryRowContext(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = ?`, id)
	d, err := scanDeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, crmerr.NotFound(op, "deal", id)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListDeals returns deals in board order, oldest first within a stage.
func (s *Store) ListDeals(ctx context.Context, filter DealFilter) ([]models.Deal, error) {
	const op = "ListDeals"

	var (
		where []string
		args  []any
	)
	if filter.Stage != "" {
		if !filter.Stage.Valid() {
			return nil, crmerr.InvalidStage(string(filter.Stage))
		}
		where = append(where, "stage = ?")
		args = append(args, string(filter.Stage))
	}
	if filter.ContactID != nil {
		where = append(where, "contact_id = ?")
		args = append(args, *filter.ContactID)
	}

	query := `SELECT ` + dealColumns + ` FROM deals`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	return withReadRetry(ctx, op, func() ([]models.Deal, error) {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var deals []models.Deal
		for rows.Next() {
			d, err := scanDeal(rows)
			if err != nil {
				return nil, err
			}
			deals = append(deals, *d)
		}
		return deals, rows.Err()
	})
}

// UpdateDeal applies a patch to one deal and returns the stored result.
func (s *Store) UpdateDeal(ctx context.Context, id int64, patch models.Patch) (*models.Deal, error) {
	return s.updateDeal(ctx, "UpdateDeal", id, patch)
}

func (s *Store) updateDeal(ctx context.Context, op string, id int64, patch models.Patch) (*models.Deal, error) {
	deal, err := s.getDeal(ctx, s.db, op, id)
	if err != nil {
		return nil, classify(op, err)
	}

	if fieldErrs := applyDealPatch(deal, patch); len(fieldErrs) > 0 {
		return nil, crmerr.Validation(op, fieldErrs...)
	}
	if err := s.checkStruct(op, deal); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return deal, nil
	}

	tags, err := encodeTags(deal.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	deal.UpdatedAt = s.now()

	_, err = s.db.ExecContext(ctx, `
		UPDATE deals
		SET title = ?, value = ?, stage = ?, expected_close_date = ?, notes = ?, contact_id = ?, tags = ?, updated_at = ?
		WHERE id = ?
	`, deal.Title, deal.Value, string(deal.Stage), deal.ExpectedCloseDate, nullString(deal.Notes),
		deal.ContactID, tags, deal.UpdatedAt, id)
	if err != nil {
		return nil, classify(op, err)
	}
	return deal, nil
}

// BulkUpdateDeals applies the same patch to every id, counting per-record failures.
func (s *Store) BulkUpdateDeals(ctx context.Context, ids []int64, patch models.Patch) (*BulkResult[models.Deal], error) {
	const op = "BulkUpdateDeals"

	if patch.IsEmpty() {
		return nil, crmerr.Validation(op, crmerr.FieldError{Field: "patch", Message: "no changes specified"})
	}

	result := newBulkResult[models.Deal](len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		updated, err := s.updateDeal(ctx, op, id, patch)
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

// DeleteDeal removes a deal and detaches its activities.
func (s *Store) DeleteDeal(ctx context.Context, id int64) error {
	const op = "DeleteDeal"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(op, fmt.Errorf("failed to start transaction: %w", err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `UPDATE activities SET deal_id = NULL WHERE deal_id = ?`, id); err != nil {
		return classify(op, fmt.Errorf("failed to update activities: %w", err))
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM deals WHERE id = ?`, id)
	if err != nil {
		return classify(op, fmt.Errorf("failed to delete deal: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return crmerr.NotFound(op, "deal", id)
	}

	return classify(op, tx.Commit())
}
