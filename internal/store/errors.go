package store

import (
	"errors"
	"fmt"
)

// NotFoundError reports a record that does not exist.
type NotFoundError struct {
	Collection string
	ID         string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s/%s", e.Collection, e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ConflictError reports a create against an id that already exists.
// Composite ids make most conflicts meaningful: a second membership for
// the same (member, club) pair lands here rather than overwriting.
type ConflictError struct {
	Collection string
	ID         string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s/%s already exists", e.Collection, e.ID)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
