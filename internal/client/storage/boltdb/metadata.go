package boltdb

import (
	"context"
	"errors"
	"fmt"
)

var keyLastBoardRefresh = []byte("last_board_refresh")

// errNoValue marks a metadata key that was never written.
var errNoValue = errors.New("metadata value not set")

// SaveLastBoardRefresh records when the board was last loaded from the server.
func (s *Storage) SaveLastBoardRefresh(ctx context.Context, timestamp int64) error {
	if err := s.putJSON(bucketMetadata, keyLastBoardRefresh, timestamp); err != nil {
		return fmt.Errorf("failed to save last board refresh: %w", err)
	}
	return nil
}

// GetLastBoardRefresh returns 0 until the board has been loaded once.
func (s *Storage) GetLastBoardRefresh(ctx context.Context) (int64, error) {
	ts, err := getJSON[int64](s, bucketMetadata, keyLastBoardRefresh, errNoValue)
	switch {
	case errors.Is(err, errNoValue):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("failed to get last board refresh: %w", err)
	}
	return *ts, nil
}
