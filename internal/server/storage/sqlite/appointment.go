package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iudanet/garageboard/internal/models"
	"github.com/iudanet/garageboard/internal/server/storage"
)

const appointmentColumns = `
	a.id, a.customer_id, a.vehicle_id, c.name, v.make, v.model, v.year,
	a.service, a.status, a.position, a.scheduled_at, a.version, a.updated_at
`

const appointmentFrom = `
	FROM appointments a
	JOIN customers c ON c.id = a.customer_id
	JOIN vehicles v ON v.id = a.vehicle_id
`

// CreateAppointment inserts a new card with version 1
func (s *Storage) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	return insertAppointment(ctx, s.db, a)
}

func insertAppointment(ctx context.Context, db execer, a *models.Appointment) error {
	if a.Version == 0 {
		a.Version = 1
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO appointments (id, customer_id, vehicle_id, service, status, position, scheduled_at, version, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		a.ID,
		a.CustomerID,
		a.VehicleID,
		a.Service,
		string(a.Status),
		a.Position,
		timeToUnix(a.ScheduledAt),
		a.Version,
		timeToUnix(a.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert appointment: %w", err)
	}

	return nil
}

// GetAppointment retrieves a single card
func (s *Storage) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + appointmentFrom + ` WHERE a.id = ?`

	a, err := scanAppointment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	return a, nil
}

// ListAppointments returns every card ordered by column and position
func (s *Storage) ListAppointments(ctx context.Context) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + appointmentFrom + ` ORDER BY a.position, a.scheduled_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	appointments := make([]*models.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appointments: %w", err)
	}

	// Порядок колонок задается доской, а не алфавитом
	sort.SliceStable(appointments, func(i, j int) bool {
		return columnIndex(appointments[i].Status) < columnIndex(appointments[j].Status)
	})

	return appointments, nil
}

// MoveAppointment places the card into a new column if the stored version matches
func (s *Storage) MoveAppointment(ctx context.Context, id string, to models.Placement, version int64) (*models.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = ?, position = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		string(to.Status),
		to.Position,
		timeToUnix(time.Now()),
		id,
		version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to move appointment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	current, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, &storage.ConflictError{
			Current:        current,
			ID:             id,
			CurrentVersion: current.Version,
			Expected:       version,
		}
	}

	return current, nil
}

// Stats counts cards per column
func (s *Storage) Stats(ctx context.Context) (*models.BoardStats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM appointments GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	stats := &models.BoardStats{ByStatus: make(map[models.AppointmentStatus]int, len(models.BoardColumns))}
	for _, c := range models.BoardColumns {
		stats.ByStatus[c] = 0
	}

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats.ByStatus[models.AppointmentStatus(status)] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats: %w", err)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (*models.Appointment, error) {
	a := &models.Appointment{}
	var vehicle models.Vehicle
	var status string
	var scheduledAt, updatedAt int64

	err := row.Scan(
		&a.ID,
		&a.CustomerID,
		&a.VehicleID,
		&a.CustomerName,
		&vehicle.Make,
		&vehicle.Model,
		&vehicle.Year,
		&a.Service,
		&status,
		&a.Position,
		&scheduledAt,
		&a.Version,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Status = models.AppointmentStatus(status)
	a.VehicleLabel = vehicle.Label()
	a.ScheduledAt = unixToTime(scheduledAt)
	a.UpdatedAt = unixToTime(updatedAt)

	return a, nil
}

func columnIndex(s models.AppointmentStatus) int {
	for i, c := range models.BoardColumns {
		if c == s {
			return i
		}
	}
	return len(models.BoardColumns)
}
