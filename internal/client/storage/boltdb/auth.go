package boltdb

import (
	"context"
	"errors"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/garageboard/internal/client/storage"
)

// Сессия оператора одна на рабочее место
var currentSessionKey = []byte("current")

// SaveAuth replaces the stored operator session.
func (s *Storage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	return s.putJSON(bucketAuth, currentSessionKey, auth)
}

// GetAuth returns the stored session or storage.ErrAuthNotFound.
func (s *Storage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	return getJSON[storage.AuthData](s, bucketAuth, currentSessionKey, storage.ErrAuthNotFound)
}

// DeleteAuth removes the session. Without one it returns storage.ErrAuthNotFound.
func (s *Storage) DeleteAuth(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketAuth)
		if err != nil {
			return err
		}
		if b.Get(currentSessionKey) == nil {
			return storage.ErrAuthNotFound
		}
		return b.Delete(currentSessionKey)
	})
}

// IsAuthenticated reports whether a session exists that has not expired.
func (s *Storage) IsAuthenticated(ctx context.Context) (bool, error) {
	auth, err := s.GetAuth(ctx)
	switch {
	case errors.Is(err, storage.ErrAuthNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return auth.ExpiresAt == 0 || time.Now().Unix() < auth.ExpiresAt, nil
}
