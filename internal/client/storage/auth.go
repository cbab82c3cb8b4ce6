package storage

import (
	"context"
)

//go:generate moq -out auth_mock.go . AuthStorage

// AuthStorage defines interface for storing the operator session on client.
// The access token is an opaque bearer token issued by the board backend.
type AuthStorage interface {
	// SaveAuth stores the operator session, replacing any previous one
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves the stored session
	// Returns ErrAuthNotFound if nobody is logged in
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes the stored session (logout)
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated checks if a non-expired session exists
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData represents an operator session in storage
type AuthData struct {
	Operator    string `json:"operator"`
	AccessToken string `json:"access_token"`
	ServerURL   string `json:"server_url"`
	ExpiresAt   int64  `json:"expires_at"` // unix seconds, 0 means no expiry
}
