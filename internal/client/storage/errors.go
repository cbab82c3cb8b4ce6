package storage

import "errors"

var (
	// ErrAuthNotFound is returned when no operator session is stored
	ErrAuthNotFound = errors.New("operator session not found")

	// ErrEntryNotFound is returned for a missing cache entry
	ErrEntryNotFound = errors.New("cache entry not found")
)
