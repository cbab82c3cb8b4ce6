package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/garageboard/internal/models"
	"github.com/iudanet/garageboard/internal/server/storage"
)

func TestRecordStorage_Customer(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	customer, _ := createTestOwner(t, ctx, s)

	got, err := s.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", got.Name)
	assert.Equal(t, "+1 (555) 010-0100", got.Phone)
	assert.Equal(t, int64(1), got.Version)

	err = s.CreateCustomer(ctx, customer)
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	_, err = s.GetCustomer(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRecordStorage_UpdateCustomer(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	customer, _ := createTestOwner(t, ctx, s)

	tests := []struct {
		wantErr     error
		name        string
		newName     string
		expected    int64
		wantVersion int64
	}{
		{
			name:        "matching version",
			newName:     "Ann Smith",
			expected:    1,
			wantVersion: 2,
		},
		{
			name:     "stale version",
			newName:  "Ann Brown",
			expected: 1,
			wantErr:  storage.ErrVersionConflict,
		},
		{
			name:        "fresh version after conflict",
			newName:     "Ann Brown",
			expected:    2,
			wantVersion: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update := *customer
			update.Name = tt.newName

			got, err := s.UpdateCustomer(ctx, &update, tt.expected)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var conflict *storage.ConflictError
				require.True(t, errors.As(err, &conflict))
				assert.Equal(t, customer.ID, conflict.ID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.newName, got.Name)
			assert.Equal(t, tt.wantVersion, got.Version)
		})
	}

	missing := models.Customer{ID: "missing", Name: "Nobody"}
	_, err := s.UpdateCustomer(ctx, &missing, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRecordStorage_SearchCustomersByPhone(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	for _, c := range []models.Customer{
		{ID: uuid.NewString(), Name: "Carla", Phone: "555-0342"},
		{ID: uuid.NewString(), Name: "Boris", Phone: "555-0177"},
		{ID: uuid.NewString(), Name: "Ann", Phone: "+1 (555) 010-0100"},
	} {
		c := c
		require.NoError(t, s.CreateCustomer(ctx, &c))
	}

	tests := []struct {
		name  string
		query string
		want  []string
		limit int
	}{
		{name: "common prefix", query: "555", limit: 10, want: []string{"Ann", "Boris", "Carla"}},
		{name: "formatted query", query: "(555) 010-01", limit: 10, want: []string{"Ann"}},
		{name: "limit", query: "555", limit: 2, want: []string{"Ann", "Boris"}},
		{name: "no match", query: "999", limit: 10, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchCustomersByPhone(ctx, tt.query, tt.limit)
			require.NoError(t, err)

			names := make([]string, 0, len(got))
			for _, c := range got {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestRecordStorage_UpdateVehicle(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	customer, vehicle := createTestOwner(t, ctx, s)

	update := *vehicle
	update.Make = "Toyota"
	update.Model = "Camry"
	update.CustomerID = "someone-else"

	got, err := s.UpdateVehicle(ctx, &update, 1)
	require.NoError(t, err)
	assert.Equal(t, "Toyota", got.Make)
	assert.Equal(t, "Camry", got.Model)
	assert.Equal(t, int64(2), got.Version)
	// Владелец не меняется через обновление
	assert.Equal(t, customer.ID, got.CustomerID)

	_, err = s.UpdateVehicle(ctx, &update, 1)
	var conflict *storage.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, int64(2), conflict.CurrentVersion)
	current, ok := conflict.Current.(*models.Vehicle)
	require.True(t, ok)
	assert.Equal(t, "Camry", current.Model)

	_, err = s.GetVehicle(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
