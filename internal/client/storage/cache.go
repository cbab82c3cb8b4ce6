package storage

import (
	"context"
	"encoding/json"
	"time"
)

//go:generate moq -out cache_mock.go . CacheStorage

// CacheEntry is the persisted form of a response cache entry
type CacheEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	Token     string          `json:"token"`
	Payload   json.RawMessage `json:"payload"`
}

// CacheStorage persists entity tags and payloads between CLI invocations
type CacheStorage interface {
	// SaveEntry stores the entry under key
	SaveEntry(ctx context.Context, key string, entry *CacheEntry) error

	// GetEntry returns the entry for key
	// Returns ErrEntryNotFound if nothing is stored
	GetEntry(ctx context.Context, key string) (*CacheEntry, error)

	// DeleteEntry removes the entry for key; missing keys are not an error
	DeleteEntry(ctx context.Context, key string) error

	// DeleteEntriesBefore removes every entry observed before cutoff
	DeleteEntriesBefore(ctx context.Context, cutoff time.Time) (int, error)
}
