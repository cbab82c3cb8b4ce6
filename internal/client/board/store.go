package board

import (
	"sync"

	"github.com/iudanet/garageboard/internal/models"
)

// Listener receives a copy of the state after every dispatch.
type Listener func(State)

// Store is the single owner of board State. All transitions go through
// Dispatch, which runs Reduce under a lock and then notifies listeners
// outside of it.
type Store struct {
	listeners map[int]Listener
	state     State
	nextID    int
	mu        sync.RWMutex
}

// NewStore creates a store seeded with initial.
func NewStore(initial State) *Store {
	return &Store{
		state:     initial.Clone(),
		listeners: make(map[int]Listener),
	}
}

// Dispatch applies a and returns the resulting state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	snapshot := s.state.Clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot.Clone())
	}
	return snapshot
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Appointment returns the card with id as currently displayed.
func (s *Store) Appointment(id string) (models.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Appointment(id)
}

// PendingCount returns the number of outstanding optimistic updates.
func (s *Store) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.OptimisticUpdates)
}
