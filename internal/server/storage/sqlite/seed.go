package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/garageboard/internal/models"
)

type seedCard struct {
	service string
	status  models.AppointmentStatus
	offset  time.Duration
}

type seedOwner struct {
	customer models.Customer
	vehicle  models.Vehicle
	cards    []seedCard
}

var demoOwners = []seedOwner{
	{
		customer: models.Customer{Name: "Ann Lee", Phone: "+1 555 010 0100", Email: "ann.lee@example.com"},
		vehicle:  models.Vehicle{Make: "Ford", Model: "Focus", Year: 2019, LicensePlate: "7ABC123", Mileage: 48210},
		cards: []seedCard{
			{service: "Oil change", status: models.StatusScheduled, offset: 2 * time.Hour},
			{service: "Brake inspection", status: models.StatusCompleted, offset: -48 * time.Hour},
		},
	},
	{
		customer: models.Customer{Name: "Boris Ivanov", Phone: "+1 555 010 0177", Notes: "prefers phone calls"},
		vehicle:  models.Vehicle{Make: "Toyota", Model: "Corolla", Year: 2015, VIN: "2T1BURHE0FC123456", Mileage: 120400},
		cards: []seedCard{
			{service: "Timing belt", status: models.StatusInProgress, offset: -3 * time.Hour},
		},
	},
	{
		customer: models.Customer{Name: "Carla Gomez", Phone: "+1 555 010 0342", Email: "carla@example.com"},
		vehicle:  models.Vehicle{Make: "Honda", Model: "Civic", Year: 2021, LicensePlate: "8XYZ991", Mileage: 15020},
		cards: []seedCard{
			{service: "Tire rotation", status: models.StatusCheckedIn, offset: -30 * time.Minute},
			{service: "AC recharge", status: models.StatusScheduled, offset: 26 * time.Hour},
		},
	},
	{
		customer: models.Customer{Name: "Dmitri Sokolov", Phone: "+1 555 010 0588"},
		vehicle:  models.Vehicle{Make: "Subaru", Model: "Outback", Year: 2017, Mileage: 88300},
		cards: []seedCard{
			{service: "Replace alternator", status: models.StatusWaitingParts, offset: -26 * time.Hour},
			{service: "Wheel alignment", status: models.StatusReady, offset: -5 * time.Hour},
		},
	},
}

// Seed fills an empty database with demo customers, vehicles and cards.
// It returns the number of created cards; a non-empty board is left untouched.
func (s *Storage) Seed(ctx context.Context, now time.Time) (int, error) {
	var existing int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&existing); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	positions := make(map[models.AppointmentStatus]int)
	created := 0
	for _, owner := range demoOwners {
		customer := owner.customer
		customer.ID = uuid.NewString()
		customer.UpdatedAt = now
		if err := insertCustomer(ctx, tx, &customer); err != nil {
			return 0, err
		}

		vehicle := owner.vehicle
		vehicle.ID = uuid.NewString()
		vehicle.CustomerID = customer.ID
		vehicle.UpdatedAt = now
		if err := insertVehicle(ctx, tx, &vehicle); err != nil {
			return 0, err
		}

		for _, card := range owner.cards {
			a := &models.Appointment{
				ID:          uuid.NewString(),
				CustomerID:  customer.ID,
				VehicleID:   vehicle.ID,
				Service:     card.service,
				Status:      card.status,
				Position:    positions[card.status],
				ScheduledAt: now.Add(card.offset).Truncate(15 * time.Minute),
				UpdatedAt:   now,
			}
			positions[card.status]++
			if err := insertAppointment(ctx, tx, a); err != nil {
				return 0, err
			}
			created++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}

	return created, nil
}
