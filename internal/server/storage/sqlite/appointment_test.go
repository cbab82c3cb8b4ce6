package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/garageboard/internal/models"
	"github.com/iudanet/garageboard/internal/server/storage"
)

func TestAppointmentStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	created := createTestAppointment(t, ctx, s, models.StatusScheduled, 0)
	assert.Equal(t, int64(1), created.Version)

	got, err := s.GetAppointment(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, models.StatusScheduled, got.Status)
	assert.Equal(t, "Ann Lee", got.CustomerName)
	assert.Equal(t, "2019 Ford Focus", got.VehicleLabel)
	assert.Equal(t, int64(1), got.Version)
	assert.True(t, created.ScheduledAt.Equal(got.ScheduledAt))

	err = s.CreateAppointment(ctx, created)
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestAppointmentStorage_GetNotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetAppointment(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAppointmentStorage_ListOrderedByColumn(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	ready := createTestAppointment(t, ctx, s, models.StatusReady, 0)
	second := createTestAppointment(t, ctx, s, models.StatusScheduled, 1)
	first := createTestAppointment(t, ctx, s, models.StatusScheduled, 0)
	progress := createTestAppointment(t, ctx, s, models.StatusInProgress, 0)

	list, err := s.ListAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)

	ids := make([]string, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{first.ID, second.ID, progress.ID, ready.ID}, ids)
}

func TestAppointmentStorage_MoveAppointment(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	a := createTestAppointment(t, ctx, s, models.StatusScheduled, 0)

	moved, err := s.MoveAppointment(ctx, a.ID, models.Placement{Status: models.StatusInProgress, Position: 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, moved.Status)
	assert.Equal(t, 2, moved.Position)
	assert.Equal(t, int64(2), moved.Version)

	// Повтор со старой версией возвращает конфликт с текущим состоянием
	_, err = s.MoveAppointment(ctx, a.ID, models.Placement{Status: models.StatusReady, Position: 0}, 1)
	require.ErrorIs(t, err, storage.ErrVersionConflict)

	var conflict *storage.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, int64(2), conflict.CurrentVersion)
	assert.Equal(t, int64(1), conflict.Expected)
	current, ok := conflict.Current.(*models.Appointment)
	require.True(t, ok)
	assert.Equal(t, models.StatusInProgress, current.Status)

	got, err := s.GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Equal(t, int64(2), got.Version)
}

func TestAppointmentStorage_MoveNotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.MoveAppointment(ctx, "missing", models.Placement{Status: models.StatusReady}, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAppointmentStorage_ConcurrentMovesOneWins(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	a := createTestAppointment(t, ctx, s, models.StatusScheduled, 0)

	const writers = 5
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(pos int) {
			defer wg.Done()
			_, err := s.MoveAppointment(ctx, a.ID, models.Placement{Status: models.StatusReady, Position: pos}, 1)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded, conflicts := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, storage.ErrVersionConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, writers-1, conflicts)

	got, err := s.GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
}

func TestAppointmentStorage_Stats(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Len(t, stats.ByStatus, len(models.BoardColumns))

	createTestAppointment(t, ctx, s, models.StatusScheduled, 0)
	createTestAppointment(t, ctx, s, models.StatusScheduled, 1)
	createTestAppointment(t, ctx, s, models.StatusReady, 0)

	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByStatus[models.StatusScheduled])
	assert.Equal(t, 1, stats.ByStatus[models.StatusReady])
	assert.Equal(t, 0, stats.ByStatus[models.StatusCompleted])
}

func TestStorage_Seed(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	created, err := s.Seed(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 7, created)

	list, err := s.ListAppointments(ctx)
	require.NoError(t, err)
	assert.Len(t, list, created)
	for _, a := range list {
		assert.Equal(t, int64(1), a.Version)
		assert.NotEmpty(t, a.CustomerName)
		assert.NotEmpty(t, a.VehicleLabel)
	}

	// Повторный запуск не дублирует данные
	created, err = s.Seed(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}
