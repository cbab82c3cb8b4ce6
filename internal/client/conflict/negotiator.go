package conflict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/garageboard/internal/telemetry"
)

// ErrNegotiationOpen is returned when a negotiation for the same entity is
// already waiting for an answer.
var ErrNegotiationOpen = errors.New("conflict negotiation already open")

// Session describes the latest negotiation of an entity.
type Session struct {
	StartedAt  time.Time
	FinishedAt time.Time
	ID         string
	Key        string
	State      State
	Choice     Choice
}

// Negotiator runs negotiations through a Prompter and tracks per-entity state.
type Negotiator struct {
	prompter Prompter
	logger   *slog.Logger
	metrics  *telemetry.Instruments
	sessions map[string]Session
	now      func() time.Time
	mu       sync.Mutex
}

// NewNegotiator creates a negotiator. metrics may be nil.
func NewNegotiator(prompter Prompter, logger *slog.Logger, metrics *telemetry.Instruments) *Negotiator {
	return &Negotiator{
		prompter: prompter,
		logger:   logger,
		metrics:  metrics,
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Negotiate opens the conflict on the prompter and waits for the answer.
// Prompter errors and unknown answers resolve to ChoiceCancel; the
// prompter error is returned alongside it.
func (n *Negotiator) Negotiate(ctx context.Context, p Payload) (Choice, error) {
	key := p.Key()

	session, err := n.begin(key)
	if err != nil {
		return ChoiceCancel, err
	}

	n.logger.Info("Conflict negotiation opened",
		"negotiation_id", session.ID,
		"entity", key,
		"fields", len(p.Fields),
	)

	choice, err := n.prompter.OpenConflict(ctx, p)
	if err != nil {
		n.logger.Warn("Conflict prompt failed", "negotiation_id", session.ID, "entity", key, "error", err)
		choice = ChoiceCancel
		err = fmt.Errorf("open conflict: %w", err)
	} else if _, perr := ParseChoice(string(choice)); perr != nil {
		n.logger.Warn("Unknown conflict choice", "negotiation_id", session.ID, "choice", choice)
		choice = ChoiceCancel
	}

	n.finish(key, choice)
	n.metrics.Negotiation(ctx, string(choice))
	n.logger.Info("Conflict negotiation resolved",
		"negotiation_id", session.ID,
		"entity", key,
		"choice", choice,
	)

	return choice, err
}

// State returns the negotiation state of the entity identified by key.
func (n *Negotiator) State(key string) State {
	n.mu.Lock()
	defer n.mu.Unlock()

	s, ok := n.sessions[key]
	if !ok {
		return StateIdle
	}
	return s.State
}

// Negotiating reports whether key has an open negotiation.
func (n *Negotiator) Negotiating(key string) bool {
	return n.State(key) == StateNegotiating
}

// Last returns the latest session for key.
func (n *Negotiator) Last(key string) (Session, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	s, ok := n.sessions[key]
	return s, ok
}

func (n *Negotiator) begin(key string) (Session, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if s, ok := n.sessions[key]; ok && s.State == StateNegotiating {
		return Session{}, ErrNegotiationOpen
	}

	s := Session{
		StartedAt: n.now(),
		ID:        uuid.NewString(),
		Key:       key,
		State:     StateNegotiating,
	}
	n.sessions[key] = s
	return s, nil
}

func (n *Negotiator) finish(key string, choice Choice) {
	n.mu.Lock()
	defer n.mu.Unlock()

	s := n.sessions[key]
	s.State = stateFor(choice)
	s.Choice = choice
	s.FinishedAt = n.now()
	n.sessions[key] = s
}
