package model

import (
	"errors"
	"fmt"
)

// Sentinel errors, classified with errors.Is. Structured errors below wrap
// these so callers can branch on category while messages name the entity.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	// ErrFrozen is returned when a mutation targets a fixed livestream.
	ErrFrozen = errors.New("livestream is fixed")

	// ErrConcurrentModification is returned when an optimistic version check
	// fails on a livestream rewrite.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// ValidationError reports a business-rule violation detected before any
// write.
type ValidationError struct {
	Entity  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Entity, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError reports a missing entity referenced by id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError reports a state clash with an existing entity.
type ConflictError struct {
	Entity  string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Entity, e.Message)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// IsClientError reports whether the error is caused by invalid input or a
// rejected state transition rather than an infrastructure failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrFrozen) ||
		errors.Is(err, ErrConcurrentModification)
}
