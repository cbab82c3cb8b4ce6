package storage

import "context"

// MetadataStorage defines interface for storing client metadata
type MetadataStorage interface {
	// SaveLastBoardRefresh saves the unix timestamp of the last successful board load
	SaveLastBoardRefresh(ctx context.Context, timestamp int64) error

	// GetLastBoardRefresh retrieves the timestamp of the last successful board load
	// Returns 0 if the board has never been loaded
	GetLastBoardRefresh(ctx context.Context) (int64, error)
}
