// ABOUTME: Record store over SQLite with validation and error classification
// ABOUTME: Shared helpers for nullable columns, read retry, and bulk results
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-playground/validator/v10"
	"github.com/harperreed/leadflow/crmerr"
	"github.com/mattn/go-sqlite3"
)

// maxReadAttempts bounds retries of idempotent reads. Writes are never retried.
const maxReadAttempts = 3

// Store is the CRM record store. All methods are safe for concurrent use; SQLite
// serializes writers through the single pooled connection.
type Store struct {
	db       *sql.DB
	validate *validator.Validate
	now      func() time.Time
}

// NewStore wraps an open database.
func NewStore(database *sql.DB) *Store {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return &Store{
		db:       database,
		validate: v,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// BulkResult is the outcome of applying one patch to many records.
type BulkResult[T any] struct {
	UpdatedCount int             `json:"updated_count"`
	FailedCount  int             `json:"failed_count"`
	Records      []T             `json:"records"`
	Failures     map[int64]error `json:"-"`
}

// Success reports whether every targeted record was updated.
func (r *BulkResult[T]) Success() bool {
	return r.FailedCount == 0
}

func newBulkResult[T any](n int) *BulkResult[T] {
	return &BulkResult[T]{
		Records:  make([]T, 0, n),
		Failures: make(map[int64]error),
	}
}

// checkStruct runs the validator tags on a record and converts failures to field errors.
func (s *Store) checkStruct(op string, record any) error {
	err := s.validate.Struct(record)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]crmerr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, crmerr.FieldError{Field: fe.Field(), Message: validationMessage(fe)})
	}
	return crmerr.Validation(op, fields...)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "gte":
		return "must be >= " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	}
	return "failed " + fe.Tag() + " check"
}

// classify converts driver errors into domain errors.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var domainErr *crmerr.Error
	if errors.As(err, &domainErr) {
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrIoErr:
			return crmerr.Transient(op, err)
		case sqlite3.ErrConstraint:
			return crmerr.Validation(op, crmerr.FieldError{Field: "record", Message: sqliteErr.Error()})
		}
	}

	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return crmerr.Transient(op, err)
	}

	return err
}

// withReadRetry retries an idempotent read while it fails transiently.
func withReadRetry[T any](ctx context.Context, op string, read func() (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 25 * time.Millisecond
	policy.MaxInterval = 250 * time.Millisecond

	return backoff.Retry(ctx, func() (T, error) {
		v, err := read()
		if err == nil {
			return v, nil
		}
		err = classify(op, err)
		if !crmerr.IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(maxReadAttempts))
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func encodeTags(tags []string) (any, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func decodeTags(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw.String), &tags); err != nil {
		return nil
	}
	return tags
}

func nullInt64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullTimePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
