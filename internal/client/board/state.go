// Package board holds the client's view of the scheduling board: the
// authoritative cards as last fetched, overlaid with optimistic updates
// that are still waiting for the server.
package board

import (
	"time"

	"github.com/iudanet/garageboard/internal/models"
)

// OptimisticUpdate описывает локальное изменение карточки, еще не подтвержденное сервером.
// OriginalState достаточно, чтобы полностью отменить эффект PendingState.
type OptimisticUpdate struct {
	Timestamp     time.Time        // Timestamp момент применения
	EntityID      string           // EntityID идентификатор карточки
	OriginalState models.Placement // OriginalState значения до изменения
	PendingState  models.Placement // PendingState значения, которые хочет клиент
	RetryCount    int              // RetryCount номер автоматического повтора
}

// State is the observable board state. Values handed out by the Store are
// deep copies; mutating them does not affect the store.
type State struct {
	LastUpdated       time.Time
	Stats             *models.BoardStats
	Error             string
	StatsError        string
	Appointments      []models.Appointment
	OptimisticUpdates []OptimisticUpdate
	Moving            []string // карточки между MoveStart и терминальным действием
	Loading           bool
	StatsLoading      bool
	Refreshing        bool
}

// Appointment looks a card up by id.
func (s State) Appointment(id string) (models.Appointment, bool) {
	for _, a := range s.Appointments {
		if a.ID == id {
			return a, true
		}
	}
	return models.Appointment{}, false
}

// PendingUpdate returns the outstanding optimistic update for id, if any.
func (s State) PendingUpdate(id string) (OptimisticUpdate, bool) {
	for _, u := range s.OptimisticUpdates {
		if u.EntityID == id {
			return u, true
		}
	}
	return OptimisticUpdate{}, false
}

// IsMoving reports whether a move for id has started and not yet finished.
func (s State) IsMoving(id string) bool {
	for _, m := range s.Moving {
		if m == id {
			return true
		}
	}
	return false
}

// Column returns the cards of one status ordered by position.
func (s State) Column(status models.AppointmentStatus) []models.Appointment {
	var out []models.Appointment
	for _, a := range s.Appointments {
		if a.Status == status {
			out = append(out, a)
		}
	}
	sortByPosition(out)
	return out
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	if s.Appointments != nil {
		out.Appointments = append([]models.Appointment(nil), s.Appointments...)
	}
	if s.OptimisticUpdates != nil {
		out.OptimisticUpdates = append([]OptimisticUpdate(nil), s.OptimisticUpdates...)
	}
	if s.Moving != nil {
		out.Moving = append([]string(nil), s.Moving...)
	}
	out.Stats = s.Stats.Clone()
	return out
}

func sortByPosition(cards []models.Appointment) {
	// insertion sort: колонки короткие, порядок стабилен
	for i := 1; i < len(cards); i++ {
		for j := i; j > 0 && cards[j].Position < cards[j-1].Position; j-- {
			cards[j], cards[j-1] = cards[j-1], cards[j]
		}
	}
}
