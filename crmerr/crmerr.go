// ABOUTME: Typed domain errors shared by the store, scoring engine, and pipeline
// ABOUTME: Kinds are NotFound, Validation, InvalidStage, and TransientStore
package crmerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the category of a domain error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound means a referenced record id does not exist. Not retried.
	KindNotFound
	// KindValidation means the store rejected one or more fields.
	KindValidation
	// KindInvalidStage means a transition target is not a pipeline stage.
	KindInvalidStage
	// KindTransientStore means a backend failure the user may retry.
	KindTransientStore
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindInvalidStage:
		return "invalid_stage"
	case KindTransientStore:
		return "transient_store"
	}
	return "unknown"
}

// FieldError is one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) String() string {
	return f.Field + ": " + f.Message
}

// Error is a domain error with a Kind.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.String()
		}
		msg = msg + ": " + strings.Join(parts, "; ")
	}
	if e.Err != nil && e.Kind == KindTransientStore {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports a missing record of the given entity type.
func NotFound(op, entity string, id int64) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf("%s %d not found", entity, id)}
}

// Validation reports field-level rejections.
func Validation(op string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: "validation failed", Fields: fields}
}

// InvalidStage reports a transition target outside the stage set.
func InvalidStage(value string) *Error {
	return &Error{Kind: KindInvalidStage, Message: fmt.Sprintf("invalid stage %q", value)}
}

// Transient wraps a backend failure.
func Transient(op string, err error) *Error {
	return &Error{Kind: KindTransientStore, Op: op, Message: "store unavailable", Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsInvalidStage(err error) bool { return KindOf(err) == KindInvalidStage }
func IsTransient(err error) bool    { return KindOf(err) == KindTransientStore }

// FieldErrors returns the field-level errors carried by a validation error.
func FieldErrors(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
