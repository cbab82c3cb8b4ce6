package models

import "time"

// AppointmentStatus определяет колонку доски, в которой находится карточка
type AppointmentStatus string

// Колонки доски в порядке отображения
const (
	StatusScheduled    AppointmentStatus = "SCHEDULED"
	StatusCheckedIn    AppointmentStatus = "CHECKED_IN"
	StatusInProgress   AppointmentStatus = "IN_PROGRESS"
	StatusWaitingParts AppointmentStatus = "WAITING_PARTS"
	StatusReady        AppointmentStatus = "READY"
	StatusCompleted    AppointmentStatus = "COMPLETED"
)

// BoardColumns lists every status in the order the board renders them.
var BoardColumns = []AppointmentStatus{
	StatusScheduled,
	StatusCheckedIn,
	StatusInProgress,
	StatusWaitingParts,
	StatusReady,
	StatusCompleted,
}

// Valid reports whether s is one of the known board columns.
func (s AppointmentStatus) Valid() bool {
	for _, c := range BoardColumns {
		if c == s {
			return true
		}
	}
	return false
}

// Appointment представляет карточку на доске.
// Version увеличивается сервером при каждой успешной записи и должна
// сопровождать следующую попытку изменения.
type Appointment struct {
	ScheduledAt  time.Time         `json:"scheduled_at"`  // ScheduledAt запланированное время визита
	UpdatedAt    time.Time         `json:"updated_at"`    // UpdatedAt время последнего подтвержденного изменения
	ID           string            `json:"id"`            // ID непрозрачный идентификатор
	CustomerID   string            `json:"customer_id"`   // CustomerID владелец автомобиля
	VehicleID    string            `json:"vehicle_id"`    // VehicleID автомобиль
	CustomerName string            `json:"customer_name"` // CustomerName для отображения на карточке
	VehicleLabel string            `json:"vehicle_label"` // VehicleLabel например "2019 Ford Focus"
	Service      string            `json:"service"`       // Service описание работ
	Status       AppointmentStatus `json:"status"`        // Status колонка доски
	Position     int               `json:"position"`      // Position порядок внутри колонки
	Version      int64             `json:"version"`       // Version токен конкурентного доступа
}

// Placement is the subset of card fields a move mutates.
type Placement struct {
	Status   AppointmentStatus `json:"status"`
	Position int               `json:"position"`
}

// Placement returns the card's current column and position.
func (a Appointment) Placement() Placement {
	return Placement{Status: a.Status, Position: a.Position}
}

// Place overwrites the card's column and position.
func (a *Appointment) Place(p Placement) {
	a.Status = p.Status
	a.Position = p.Position
}

// MoveResult содержит авторитетные значения, возвращенные сервером после перемещения
type MoveResult struct {
	UpdatedAt time.Time         `json:"updated_at"`
	ID        string            `json:"id"`
	Status    AppointmentStatus `json:"status"`
	Position  int               `json:"position"`
	Version   int64             `json:"version"`
}

// BoardStats содержит счетчики карточек по колонкам
type BoardStats struct {
	ByStatus map[AppointmentStatus]int `json:"by_status"`
	Total    int                       `json:"total"`
}

// Clone returns a deep copy of the stats.
func (s *BoardStats) Clone() *BoardStats {
	if s == nil {
		return nil
	}
	byStatus := make(map[AppointmentStatus]int, len(s.ByStatus))
	for k, v := range s.ByStatus {
		byStatus[k] = v
	}
	return &BoardStats{ByStatus: byStatus, Total: s.Total}
}
