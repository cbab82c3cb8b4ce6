package storage

import (
	"context"

	"github.com/iudanet/garageboard/internal/models"
)

// RecordStorage defines interface for customer and vehicle records persistence.
// Update methods write the given record only if the stored version equals
// expected, and return the stored record with the incremented version.
// On mismatch they return *ConflictError.
type RecordStorage interface {
	CreateCustomer(ctx context.Context, c *models.Customer) error
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, c *models.Customer, expected int64) (*models.Customer, error)

	// SearchCustomersByPhone returns customers whose phone contains the given digits
	SearchCustomersByPhone(ctx context.Context, digits string, limit int) ([]*models.Customer, error)

	CreateVehicle(ctx context.Context, v *models.Vehicle) error
	GetVehicle(ctx context.Context, id string) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, v *models.Vehicle, expected int64) (*models.Vehicle, error)
}

// Storage combines everything the board backend persists
type Storage interface {
	AppointmentStorage
	RecordStorage
}
