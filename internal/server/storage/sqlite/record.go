package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/garageboard/internal/models"
	"github.com/iudanet/garageboard/internal/server/storage"
	"github.com/iudanet/garageboard/internal/validation"
)

const customerColumns = `id, name, phone, email, notes, version, updated_at`

const vehicleColumns = `id, customer_id, make, model, year, vin, license_plate, mileage, version, updated_at`

// CreateCustomer inserts a new customer with version 1
func (s *Storage) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return insertCustomer(ctx, s.db, c)
}

func insertCustomer(ctx context.Context, db execer, c *models.Customer) error {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO customers (id, name, phone, phone_digits, email, notes, version, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.Phone,
		validation.PhoneDigits(c.Phone),
		c.Email,
		c.Notes,
		c.Version,
		timeToUnix(c.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert customer: %w", err)
	}

	return nil
}

// GetCustomer retrieves customer by ID
func (s *Storage) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = ?`

	c, err := scanCustomer(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return c, nil
}

// UpdateCustomer writes c if the stored version equals expected
func (s *Storage) UpdateCustomer(ctx context.Context, c *models.Customer, expected int64) (*models.Customer, error) {
	query := `
		UPDATE customers
		SET name = ?, phone = ?, phone_digits = ?, email = ?, notes = ?,
		    version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		c.Name,
		c.Phone,
		validation.PhoneDigits(c.Phone),
		c.Email,
		c.Notes,
		timeToUnix(time.Now()),
		c.ID,
		expected,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	if err := checkWritten(result); err != nil {
		if !errors.Is(err, storage.ErrVersionConflict) {
			return nil, err
		}
		current, getErr := s.GetCustomer(ctx, c.ID)
		if getErr != nil {
			return nil, getErr
		}
		return nil, &storage.ConflictError{Current: current, ID: c.ID, CurrentVersion: current.Version, Expected: expected}
	}

	return s.GetCustomer(ctx, c.ID)
}

// SearchCustomersByPhone returns customers whose phone contains digits
func (s *Storage) SearchCustomersByPhone(ctx context.Context, digits string, limit int) ([]*models.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE phone_digits LIKE '%' || ? || '%'
		ORDER BY name, id
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, validation.PhoneDigits(digits), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := make([]*models.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

// CreateVehicle inserts a new vehicle with version 1
func (s *Storage) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	return insertVehicle(ctx, s.db, v)
}

func insertVehicle(ctx context.Context, db execer, v *models.Vehicle) error {
	if v.Version == 0 {
		v.Version = 1
	}
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO vehicles (id, customer_id, make, model, year, vin, license_plate, mileage, version, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		v.ID,
		v.CustomerID,
		v.Make,
		v.Model,
		v.Year,
		v.VIN,
		v.LicensePlate,
		v.Mileage,
		v.Version,
		timeToUnix(v.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert vehicle: %w", err)
	}

	return nil
}

// GetVehicle retrieves vehicle by ID
func (s *Storage) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = ?`

	v, err := scanVehicle(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	return v, nil
}

// UpdateVehicle writes v if the stored version equals expected.
// The owner (customer_id) is never changed.
func (s *Storage) UpdateVehicle(ctx context.Context, v *models.Vehicle, expected int64) (*models.Vehicle, error) {
	query := `
		UPDATE vehicles
		SET make = ?, model = ?, year = ?, vin = ?, license_plate = ?, mileage = ?,
		    version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		v.Make,
		v.Model,
		v.Year,
		v.VIN,
		v.LicensePlate,
		v.Mileage,
		timeToUnix(time.Now()),
		v.ID,
		expected,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}

	if err := checkWritten(result); err != nil {
		if !errors.Is(err, storage.ErrVersionConflict) {
			return nil, err
		}
		current, getErr := s.GetVehicle(ctx, v.ID)
		if getErr != nil {
			return nil, getErr
		}
		return nil, &storage.ConflictError{Current: current, ID: v.ID, CurrentVersion: current.Version, Expected: expected}
	}

	return s.GetVehicle(ctx, v.ID)
}

// checkWritten returns ErrVersionConflict if the conditional update matched no row
func checkWritten(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return storage.ErrVersionConflict
	}
	return nil
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	c := &models.Customer{}
	var updatedAt int64

	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Notes, &c.Version, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt = unixToTime(updatedAt)

	return c, nil
}

func scanVehicle(row rowScanner) (*models.Vehicle, error) {
	v := &models.Vehicle{}
	var updatedAt int64

	err := row.Scan(
		&v.ID,
		&v.CustomerID,
		&v.Make,
		&v.Model,
		&v.Year,
		&v.VIN,
		&v.LicensePlate,
		&v.Mileage,
		&v.Version,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.UpdatedAt = unixToTime(updatedAt)

	return v, nil
}
