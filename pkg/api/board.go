package api

import (
	"encoding/json"
	"time"
)

// Appointment представляет карточку доски в wire-формате
type Appointment struct {
	ScheduledAt  time.Time `json:"scheduled_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           string    `json:"id"`
	CustomerID   string    `json:"customer_id"`
	VehicleID    string    `json:"vehicle_id"`
	CustomerName string    `json:"customer_name"`
	VehicleLabel string    `json:"vehicle_label"`
	Service      string    `json:"service"`
	Status       string    `json:"status"`
	Position     int       `json:"position"`
	Version      int64     `json:"version"`
}

// BoardResponse представляет ответ GET /appointments/board
type BoardResponse struct {
	Appointments []Appointment `json:"appointments"`
}

// StatsResponse представляет ответ GET /appointments/stats
type StatsResponse struct {
	ByStatus map[string]int `json:"by_status"`
	Total    int            `json:"total"`
}

// MoveRequest представляет тело PATCH /appointments/{id}/move
type MoveRequest struct {
	Status   string `json:"status"`   // целевая колонка
	Position int    `json:"position"` // позиция внутри колонки
	Version  int64  `json:"version"`  // последняя известная клиенту версия
}

// MoveResponse представляет успешный ответ на перемещение
type MoveResponse struct {
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Position  int       `json:"position"`
	Version   int64     `json:"version"`
}

// ConflictResponse представляет тело 409/412 при несовпадении версии
type ConflictResponse struct {
	CurrentState   json.RawMessage `json:"current_state"`   // текущее состояние записи на сервере
	CurrentVersion int64           `json:"current_version"` // текущая версия на сервере
}

// DataResponse оборачивает запись в {data: ...}
type DataResponse[T any] struct {
	Data T `json:"data"`
}

// BoardEvent передается по websocket после каждой подтвержденной записи
type BoardEvent struct {
	Type     string `json:"type"`      // "appointment.moved", "customer.updated", "vehicle.updated"
	EntityID string `json:"entity_id"` // идентификатор измененной записи
	Version  int64  `json:"version"`   // новая версия
}

// Event types broadcast on the live board feed.
const (
	EventAppointmentMoved = "appointment.moved"
	EventCustomerUpdated  = "customer.updated"
	EventVehicleUpdated   = "vehicle.updated"
)
