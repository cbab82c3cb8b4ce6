package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/garageboard/internal/client/storage"
)

// SaveEntry stores a cache entry under key
func (s *Storage) SaveEntry(ctx context.Context, key string, entry *storage.CacheEntry) error {
	return s.putJSON(bucketCache, []byte(key), entry)
}

// GetEntry returns the entry for key or storage.ErrEntryNotFound
func (s *Storage) GetEntry(ctx context.Context, key string) (*storage.CacheEntry, error) {
	return getJSON[storage.CacheEntry](s, bucketCache, []byte(key), storage.ErrEntryNotFound)
}

// DeleteEntry removes the entry for key
func (s *Storage) DeleteEntry(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketCache)
		if err != nil {
			return err
		}

		if err := b.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete cache entry: %w", err)
		}

		return nil
	})
}

// DeleteEntriesBefore removes every entry observed before cutoff
func (s *Storage) DeleteEntriesBefore(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketCache)
		if err != nil {
			return err
		}

		// Ключи собираем заранее: удалять во время ForEach нельзя
		var stale [][]byte
		err = b.ForEach(func(k, v []byte) error {
			entry := &storage.CacheEntry{}
			if err := json.Unmarshal(v, entry); err != nil {
				return fmt.Errorf("failed to unmarshal cache entry: %w", err)
			}
			if entry.Timestamp.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return fmt.Errorf("failed to delete cache entry: %w", err)
			}
		}
		removed = len(stale)
		return nil
	})

	if err != nil {
		return 0, err
	}

	return removed, nil
}
