// ABOUTME: Activity database operations
// ABOUTME: Calls, meetings, tasks, and emails linked to contacts and deals
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

const activityColumns = `id, type, title, description, due_date, completed, outcome, contact_id, deal_id, created_at, updated_at`

// ActivityFilter narrows ListActivities.
type ActivityFilter struct {
	ContactID *int64
	DealID    *int64
	// PendingOnly hides completed activities and orders by due date.
	PendingOnly bool
	Limit       int
}

func scanActivity(row rowScanner) (*models.Activity, error) {
	var a models.Activity
	var activityType string
	var description, outcome sql.NullString
	var dueDate sql.NullTime
	var contactID, dealID sql.NullInt64

	err := row.Scan(&a.ID, &activityType, &a.Title, &description, &dueDate, &a.Completed, &outcome,
		&contactID, &dealID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.Type = models.ActivityType(activityType)
	a.Description = description.String
	a.Outcome = outcome.String
	a.DueDate = nullTimePtr(dueDate)
	a.ContactID = nullInt64Ptr(contactID)
	a.DealID = nullInt64Ptr(dealID)
	return &a, nil
}

func (s *Store) CreateActivity(ctx context.Context, activity *models.Activity) error {
	const op = "CreateActivity"

	if err := s.checkStruct(op, activity); err != nil {
		return err
	}

	now := s.now()
	activity.CreatedAt = now
	activity.UpdatedAt = now

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (type, title, description, due_date, completed, outcome, contact_id, deal_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, string(activity.Type), activity.Title, nullString(activity.Description), activity.DueDate,
		activity.Completed, nullString(activity.Outcome), activity.ContactID, activity.DealID,
		activity.CreatedAt, activity.UpdatedAt)
	if err != nil {
		return classify(op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read activity id: %w", err)
	}
	activity.ID = id
	return nil
}

func (s *Store) GetActivity(ctx context.Context, id int64) (*models.Activity, error) {
	const op = "GetActivity"
	return withReadRetry(ctx, op, func() (*models.Activity, error) {
		row := s.db.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)
		a, err := scanActivity(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, crmerr.NotFound(op, "activity", id)
		}
		return a, err
	})
}

func (s *Store) ListActivities(ctx context.Context, filter ActivityFilter) ([]models.Activity, error) {
	const op = "ListActivities"

	var (
		where []string
		args  []any
	)
	if filter.ContactID != nil {
		where = append(where, "contact_id = ?")
		args = append(args, *filter.ContactID)
	}
	if filter.DealID != nil {
		where = append(where, "deal_id = ?")
		args = append(args, *filter.DealID)
	}
	if filter.PendingOnly {
		where = append(where, "completed = 0")
	}

	query := `SELECT ` + activityColumns + ` FROM activities`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.PendingOnly {
		query += " ORDER BY due_date IS NULL, due_date, id"
	} else {
		query += " ORDER BY created_at DESC, id DESC"
	}
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	return withReadRetry(ctx, op, func() ([]models.Activity, error) {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var activities []models.Activity
		for rows.Next() {
			a, err := scanActivity(rows)
			if err != nil {
				return nil, err
			}
			activities = append(activities, *a)
		}
		return activities, rows.Err()
	})
}

func (s *Store) UpdateActivity(ctx context.Context, id int64, patch models.Patch) (*models.Activity, error) {
	const op = "UpdateActivity"

	activity, err := s.GetActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	if fieldErrs := applyActivityPatch(activity, patch); len(fieldErrs) > 0 {
		return nil, crmerr.Validation(op, fieldErrs...)
	}
	if err := s.checkStruct(op, activity); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return activity, nil
	}

	activity.UpdatedAt = s.now()
	_, err = s.db.ExecContext(ctx, `
		UPDATE activities
		SET type = ?, title = ?, description = ?, due_date = ?, completed = ?, outcome = ?, contact_id = ?, deal_id = ?, updated_at = ?
		WHERE id = ?
	`, string(activity.Type), activity.Title, nullString(activity.Description), activity.DueDate,
		activity.Completed, nullString(activity.Outcome), activity.ContactID, activity.DealID,
		activity.UpdatedAt, id)
	if err != nil {
		return nil, classify(op, err)
	}
	return activity, nil
}

func (s *Store) DeleteActivity(ctx context.Context, id int64) error {
	const op = "DeleteActivity"

	res, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return classify(op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return crmerr.NotFound(op, "activity", id)
	}
	return nil
}
