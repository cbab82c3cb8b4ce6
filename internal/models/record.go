package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Customer представляет запись клиента, редактируемую через If-Match
type Customer struct {
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Notes     string    `json:"notes"`
	Version   int64     `json:"version"`
}

// Vehicle представляет автомобиль клиента
type Vehicle struct {
	UpdatedAt    time.Time `json:"updated_at"`
	ID           string    `json:"id"`
	CustomerID   string    `json:"customer_id"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	VIN          string    `json:"vin"`
	LicensePlate string    `json:"license_plate"`
	Year         int       `json:"year"`
	Mileage      int       `json:"mileage"`
	Version      int64     `json:"version"`
}

// Label returns a short human readable description, e.g. "2019 Ford Focus".
func (v Vehicle) Label() string {
	if v.Year == 0 {
		return fmt.Sprintf("%s %s", v.Make, v.Model)
	}
	return fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model)
}

// Patch is a partial update keyed by the JSON field names of the target record.
type Patch map[string]any

// Keys returns the patched field names in sorted order.
func (p Patch) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of the patch.
func (p Patch) Clone() Patch {
	out := make(Patch, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ToFields converts a record into a map keyed by its JSON field names.
func ToFields(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record fields: %w", err)
	}
	return fields, nil
}

// ApplyPatch returns a copy of v with the given fields overlaid.
// Unknown fields are ignored by the JSON decoder; v itself is not modified.
func ApplyPatch[T any](v T, fields map[string]any) (T, error) {
	var out T

	base, err := ToFields(v)
	if err != nil {
		return out, err
	}
	for k, val := range fields {
		base[k] = val
	}

	data, err := json.Marshal(base)
	if err != nil {
		return out, fmt.Errorf("failed to marshal patched record: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to apply patch: %w", err)
	}
	return out, nil
}
