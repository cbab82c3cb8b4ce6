package storage

import (
	"errors"
	"fmt"
)

// Common storage errors
var (
	// ErrNotFound indicates that the record was not found in storage
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict indicates that the stored version differs from the expected one
	ErrVersionConflict = errors.New("version conflict")

	// ErrAlreadyExists indicates that a record with this id already exists
	ErrAlreadyExists = errors.New("record already exists")
)

// ConflictError is returned by conditional writes when another writer
// committed first. Current holds the stored record as it is now.
type ConflictError struct {
	Current        any
	ID             string
	CurrentVersion int64
	Expected       int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s: expected %d, current %d", e.ID, e.Expected, e.CurrentVersion)
}

// Is makes errors.Is(err, ErrVersionConflict) match.
func (e *ConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}
