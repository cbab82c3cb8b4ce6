package storage

import (
	"context"

	"github.com/iudanet/garageboard/internal/models"
)

// AppointmentStorage defines interface for board cards persistence
type AppointmentStorage interface {
	// CreateAppointment inserts a new card with version 1.
	// Returns ErrAlreadyExists if the id is taken.
	CreateAppointment(ctx context.Context, a *models.Appointment) error

	// GetAppointment retrieves a single card with customer name and vehicle label filled in.
	// Returns ErrNotFound if the card doesn't exist
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)

	// ListAppointments returns every card ordered by column and position
	ListAppointments(ctx context.Context) ([]*models.Appointment, error)

	// MoveAppointment places the card into a new column/position if its stored
	// version equals version, and increments the version.
	// Returns *ConflictError (matching ErrVersionConflict) with the current card otherwise.
	MoveAppointment(ctx context.Context, id string, to models.Placement, version int64) (*models.Appointment, error)

	// Stats counts cards per column
	Stats(ctx context.Context) (*models.BoardStats, error)
}
