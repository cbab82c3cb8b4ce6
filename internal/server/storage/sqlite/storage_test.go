package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/garageboard/internal/models"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	storage, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = storage.Close()
	}

	return storage, cleanup
}

// createTestOwner создает клиента с автомобилем
func createTestOwner(t *testing.T, ctx context.Context, s *Storage) (*models.Customer, *models.Vehicle) {
	customer := &models.Customer{
		ID:    uuid.New().String(),
		Name:  "Ann Lee",
		Phone: "+1 (555) 010-0100",
		Email: "ann@example.com",
	}
	require.NoError(t, s.CreateCustomer(ctx, customer))

	vehicle := &models.Vehicle{
		ID:         uuid.New().String(),
		CustomerID: customer.ID,
		Make:       "Ford",
		Model:      "Focus",
		Year:       2019,
	}
	require.NoError(t, s.CreateVehicle(ctx, vehicle))

	return customer, vehicle
}

func createTestAppointment(t *testing.T, ctx context.Context, s *Storage, status models.AppointmentStatus, position int) *models.Appointment {
	customer, vehicle := createTestOwner(t, ctx, s)

	a := &models.Appointment{
		ID:          uuid.New().String(),
		CustomerID:  customer.ID,
		VehicleID:   vehicle.ID,
		Service:     "Oil change",
		Status:      status,
		Position:    position,
		ScheduledAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, s.CreateAppointment(ctx, a))

	return a
}

func TestNew_RunsMigrations(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	for _, table := range []string{"customers", "vehicles", "appointments"} {
		var name string
		err := s.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}
