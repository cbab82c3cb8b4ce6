package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"github.com/iudanet/garageboard/internal/models"
)

// Поля, которые сервер выставляет сам и которые нельзя передавать в патче
var readOnlyFields = map[string]struct{}{
	"id":          {},
	"version":     {},
	"updated_at":  {},
	"customer_id": {},
}

const (
	minVehicleYear = 1900
	maxVehicleYear = 2100
)

// ValidatePatch rejects empty patches and patches that touch server-owned fields.
func ValidatePatch(p models.Patch) error {
	if len(p) == 0 {
		return fmt.Errorf("patch cannot be empty")
	}
	for _, k := range p.Keys() {
		if _, ok := readOnlyFields[k]; ok {
			return fmt.Errorf("field %q cannot be changed", k)
		}
	}
	return nil
}

// ValidateCustomer проверяет запись клиента после применения патча
func ValidateCustomer(c *models.Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("customer name cannot be empty")
	}
	if c.Phone != "" && len(PhoneDigits(c.Phone)) < 5 {
		return fmt.Errorf("phone %q is too short", c.Phone)
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return fmt.Errorf("invalid email %q", c.Email)
		}
	}
	return nil
}

// ValidateVehicle проверяет запись автомобиля после применения патча
func ValidateVehicle(v *models.Vehicle) error {
	if strings.TrimSpace(v.Make) == "" || strings.TrimSpace(v.Model) == "" {
		return fmt.Errorf("vehicle make and model cannot be empty")
	}
	if v.Year != 0 && (v.Year < minVehicleYear || v.Year > maxVehicleYear) {
		return fmt.Errorf("vehicle year %d is out of range", v.Year)
	}
	if v.Mileage < 0 {
		return fmt.Errorf("mileage cannot be negative")
	}
	if v.VIN != "" && len(v.VIN) != 17 {
		return fmt.Errorf("VIN must be 17 characters long")
	}
	return nil
}

// ValidatePlacement проверяет целевую колонку и позицию перемещения
func ValidatePlacement(p models.Placement) error {
	if !p.Status.Valid() {
		return fmt.Errorf("unknown status %q", p.Status)
	}
	if p.Position < 0 {
		return fmt.Errorf("position cannot be negative")
	}
	return nil
}

// PhoneDigits returns only the digits of a phone number.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
