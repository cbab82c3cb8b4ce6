package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrPreconditionFailed is returned for a 412 without a conflict body:
	// the If-Match tag is stale and the caller must re-fetch the resource.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrNotModified is returned for a 304 answer to If-None-Match.
	ErrNotModified = errors.New("not modified")
)

// ConflictError is a 409/412 answer that carries the server's current state.
type ConflictError struct {
	CurrentState   json.RawMessage
	StatusCode     int
	CurrentVersion int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict (%d): current version %d", e.StatusCode, e.CurrentVersion)
}

// StatusError is any other non-2xx answer.
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsClientError reports whether the server rejected the request as invalid
// (4xx other than the concurrency statuses).
func (e *StatusError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}
