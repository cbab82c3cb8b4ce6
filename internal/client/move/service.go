// Package move implements the optimistic move pipeline for board cards and
// the protection layer on top of it: per-card double-move prevention,
// bounded automatic retries on version conflicts and escalation to a human.
package move

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iudanet/garageboard/internal/client/api"
	"github.com/iudanet/garageboard/internal/client/board"
	"github.com/iudanet/garageboard/internal/client/conflict"
	"github.com/iudanet/garageboard/internal/client/mutation"
	"github.com/iudanet/garageboard/internal/client/notify"
	"github.com/iudanet/garageboard/internal/models"
	"github.com/iudanet/garageboard/internal/telemetry"
)

//go:generate moq -out api_mock.go . API
//go:generate moq -out negotiator_mock.go . Negotiator

// API sends a version-tagged move to the server.
type API interface {
	MoveAppointment(ctx context.Context, id string, to models.Placement, version int64) (*models.MoveResult, error)
}

// Negotiator asks a human how to resolve an exhausted conflict.
type Negotiator interface {
	Negotiate(ctx context.Context, p conflict.Payload) (conflict.Choice, error)
}

// ErrUnknownAppointment is returned for ids that are not on the board.
var ErrUnknownAppointment = errors.New("appointment is not on the board")

const resourceAppointments = "appointments"

var placementLabels = map[string]string{
	"status":   "Column",
	"position": "Position",
}

// Service moves cards. It is safe for concurrent use.
type Service struct {
	api        API
	store      *board.Store
	negotiator Negotiator
	notifier   notify.Notifier
	metrics    *telemetry.Instruments
	tracer     trace.Tracer
	logger     *slog.Logger
	now        func() time.Time
	inFlight   map[string]struct{}    // карточки с выполняющимся ProtectedMove
	starts     map[string][]time.Time // время начала недавних перемещений
	cfg        Config
	mu         sync.Mutex // защищает inFlight и starts
	pendingMu  sync.Mutex // проверка лимита и оптимистичное обновление атомарны
}

// Option configures a Service.
type Option func(*Service)

// WithNegotiator sets the human escalation surface. Without it an exhausted
// conflict is treated as cancelled.
func WithNegotiator(n Negotiator) Option {
	return func(s *Service) { s.negotiator = n }
}

// WithNotifier sets the toast surface.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithMetrics enables move counters.
func WithMetrics(m *telemetry.Instruments) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces time.Now for the double-move window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a move service bound to store.
func NewService(client API, store *board.Store, cfg Config, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		api:      client,
		store:    store,
		notifier: notify.Discard,
		tracer:   telemetry.Tracer(""),
		logger:   logger,
		now:      time.Now,
		inFlight: make(map[string]struct{}),
		starts:   make(map[string][]time.Time),
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MoveAppointment runs a single optimistic move: apply locally, send with
// the card's last known version, then confirm or roll back. A version
// conflict is returned to the caller as is.
func (s *Service) MoveAppointment(ctx context.Context, id string, status models.AppointmentStatus, position int) (*models.MoveResult, error) {
	to := models.Placement{Status: status, Position: position}
	if !status.Valid() {
		return nil, s.report(ctx, mutation.New(mutation.KindValidation, id, fmt.Errorf("unknown status %q", status)))
	}

	card, ok := s.store.Appointment(id)
	if !ok {
		return nil, s.report(ctx, mutation.New(mutation.KindValidation, id, ErrUnknownAppointment))
	}

	res, err := s.attempt(ctx, id, to, card.Version, 0)
	if err != nil {
		return nil, s.fail(ctx, id, err)
	}
	s.succeed(ctx, res)
	return res, nil
}

// ProtectedMove is MoveAppointment behind the protection layer. A second
// call for a card that is in flight, or that moved within the double-move
// window, is rejected without a request. Version conflicts are retried with
// the server's current version up to MaxAutoRetries times and then handed
// to the negotiator once.
func (s *Service) ProtectedMove(ctx context.Context, id string, status models.AppointmentStatus, position int) (*models.MoveResult, error) {
	to := models.Placement{Status: status, Position: position}
	if !status.Valid() {
		return nil, s.report(ctx, mutation.New(mutation.KindValidation, id, fmt.Errorf("unknown status %q", status)))
	}

	// Неизвестная карточка не должна открывать окно повторного перемещения
	if _, ok := s.store.Appointment(id); !ok {
		return nil, s.report(ctx, mutation.New(mutation.KindValidation, id, ErrUnknownAppointment))
	}

	if err := s.acquire(id); err != nil {
		s.logger.Info("Move rejected", "appointment_id", id, "reason", err)
		return nil, s.report(ctx, err)
	}
	defer s.release(id)

	card, ok := s.store.Appointment(id)
	if !ok {
		// карточку убрало обновление доски между проверкой и захватом
		s.dropStart(id)
		return nil, s.report(ctx, mutation.New(mutation.KindValidation, id, ErrUnknownAppointment))
	}

	version := card.Version
	attempts := 0
	var result *models.MoveResult

	operation := func() error {
		attempts++
		res, err := s.attempt(ctx, id, to, version, attempts-1)
		if err == nil {
			result = res
			return nil
		}

		var mErr *mutation.Error
		if errors.As(err, &mErr) && mErr.Kind == mutation.KindVersionConflict {
			s.metrics.Conflict(ctx, string(mutation.ConflictVersion))
			if mErr.Resolution != nil && mErr.Resolution.CurrentVersion > 0 {
				version = mErr.Resolution.CurrentVersion
				return err
			}
		}
		return backoff.Permanent(err)
	}

	schedule := backoff.WithContext(
		backoff.WithMaxRetries(&retrySchedule{base: s.cfg.BaseRetryDelay, max: s.cfg.MaxRetryDelay}, uint64(max(s.cfg.MaxAutoRetries, 0))),
		ctx,
	)
	err := backoff.RetryNotify(operation, schedule, func(err error, delay time.Duration) {
		s.metrics.Retry(ctx)
		s.logger.Info("Version conflict, retrying move",
			"appointment_id", id,
			"attempt", attempts,
			"version", version,
			"delay", delay,
		)
	})
	if err == nil {
		s.succeed(ctx, result)
		return result, nil
	}

	mErr := mutation.Classify(id, err)
	if mErr.Kind == mutation.KindVersionConflict {
		return s.escalate(ctx, id, to, mErr, attempts)
	}
	return nil, s.fail(ctx, id, mErr)
}

// HasDoubleMoveConflict reports whether starting a move for id now would
// exceed MaxConcurrentPerID within DoubleMoveWindow.
func (s *Service) HasDoubleMoveConflict(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doubleMoveLocked(id)
}

// InFlight reports whether a protected move for id is running.
func (s *Service) InFlight(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[id]
	return ok
}

// attempt performs one optimistic round trip. The returned error is always
// a *mutation.Error and the optimistic update is already rolled back.
func (s *Service) attempt(ctx context.Context, id string, to models.Placement, version int64, retry int) (*models.MoveResult, error) {
	ctx, span := s.tracer.Start(ctx, "move.attempt", trace.WithAttributes(
		attribute.String("appointment.id", id),
		attribute.String("appointment.status", string(to.Status)),
		attribute.Int64("appointment.version", version),
		attribute.Int("retry", retry),
	))
	defer span.End()

	if err := s.applyOptimistic(id, to, retry); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.logger.Debug("Sending move", "appointment_id", id, "status", to.Status, "position", to.Position, "version", version)

	res, err := s.send(ctx, id, to, version)
	if err != nil {
		mErr := mutation.Classify(id, err)
		if mErr.Kind == mutation.KindVersionConflict {
			mErr.Resolution = resolutionFrom(id, version, err)
		}
		s.rollback(ctx, id, mErr)
		span.RecordError(mErr)
		span.SetStatus(codes.Error, mErr.Error())
		return nil, mErr
	}

	s.store.Dispatch(board.MoveSucceeded(*res))
	span.SetAttributes(attribute.Int64("appointment.new_version", res.Version))
	return res, nil
}

// applyOptimistic checks the pending ceiling and applies the update.
func (s *Service) applyOptimistic(id string, to models.Placement, retry int) error {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	if s.store.PendingCount() >= s.cfg.MaxPending {
		return mutation.New(mutation.KindTooManyPending, id, mutation.ErrTooManyPending)
	}

	card, ok := s.store.Appointment(id)
	if !ok {
		return mutation.New(mutation.KindValidation, id, ErrUnknownAppointment)
	}

	original := card.Placement()
	// Если по карточке уже висит обновление, откатывать нужно к его исходному состоянию
	if pending, ok := s.store.Snapshot().PendingUpdate(id); ok {
		original = pending.OriginalState
	}

	s.store.Dispatch(board.MoveApplied(board.OptimisticUpdate{
		Timestamp:     s.now(),
		EntityID:      id,
		OriginalState: original,
		PendingState:  to,
		RetryCount:    retry,
	}))
	s.store.Dispatch(board.MoveStarted(id))
	return nil
}

type sendResult struct {
	res *models.MoveResult
	err error
}

// send races the write against the timeout. Whichever settles first wins;
// a late server answer is dropped and the request context is cancelled.
func (s *Service) send(ctx context.Context, id string, to models.Placement, version int64) (*models.MoveResult, error) {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan sendResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- sendResult{err: fmt.Errorf("move write panicked: %v", r)}
			}
		}()
		res, err := s.api.MoveAppointment(callCtx, id, to, version)
		done <- sendResult{res: res, err: err}
	}()

	timer := time.NewTimer(s.cfg.Timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err == nil && r.res == nil {
			return nil, errors.New("empty move response")
		}
		return r.res, r.err
	case <-timer.C:
		return nil, mutation.New(mutation.KindTimeout, id, mutation.ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) rollback(ctx context.Context, id string, mErr *mutation.Error) {
	if _, ok := s.store.Appointment(id); !ok {
		s.logger.Debug("Rollback target no longer on board", "appointment_id", id)
	}
	s.store.Dispatch(board.MoveRolledBack(id))
	s.metrics.Rollback(ctx, string(mErr.Kind))
	s.logger.Warn("Optimistic move rolled back", "appointment_id", id, "reason", mErr.Kind, "error", mErr.Err)
}

// escalate hands an exhausted conflict to the negotiator. It runs at most
// once per ProtectedMove call.
func (s *Service) escalate(ctx context.Context, id string, to models.Placement, mErr *mutation.Error, attempts int) (*models.MoveResult, error) {
	res := mErr.Resolution
	if res == nil {
		res = &mutation.Resolution{EntityID: id, Type: mutation.ConflictVersion}
		mErr.Resolution = res
	}

	s.logger.Warn("Move conflict escalated",
		"appointment_id", id,
		"attempts", attempts,
		"current_version", res.CurrentVersion,
		"provided_version", res.ProvidedVersion,
	)

	choice := conflict.ChoiceCancel
	if s.negotiator != nil {
		patch := models.Patch{"status": string(to.Status), "position": to.Position}
		local := map[string]any{}
		if card, ok := s.store.Appointment(id); ok {
			if fields, err := models.ToFields(card); err == nil {
				local = fields
			}
		}
		for k, v := range patch {
			local[k] = v
		}

		var err error
		choice, err = s.negotiator.Negotiate(ctx, conflict.Payload{
			Local:      local,
			Remote:     res.Details,
			Patch:      patch,
			Resolution: res,
			Resource:   resourceAppointments,
			EntityID:   id,
			Title:      "Appointment was moved by someone else",
			Fields:     conflict.Diff(patch, res.Details, placementLabels),
		})
		if err != nil {
			s.logger.Warn("Conflict negotiation failed", "appointment_id", id, "error", err)
		}
	}

	switch choice {
	case conflict.ChoiceDiscard:
		adopted := s.adoptServerState(id, res)
		s.metrics.Move(ctx, "discarded")
		s.notifier.Notify(ctx, notify.Notification{
			Type:    notify.TypeInfo,
			Title:   "Kept the current placement",
			Message: fmt.Sprintf("Appointment %s stays in %s", id, adopted.Status),
		})
		return &adopted, nil

	case conflict.ChoiceOverwrite:
		result, err := s.attempt(ctx, id, to, res.CurrentVersion, attempts)
		if err != nil {
			return nil, s.fail(ctx, id, err)
		}
		s.succeed(ctx, result)
		return result, nil

	default:
		handled := mutation.New(mutation.KindHandled, id, mutation.ErrHandled)
		handled.Resolution = res
		s.metrics.Move(ctx, string(mutation.KindHandled))
		s.logger.Info("Move conflict left unresolved", "appointment_id", id)
		return nil, handled
	}
}

// adoptServerState confirms the server's placement for id.
func (s *Service) adoptServerState(id string, res *mutation.Resolution) models.MoveResult {
	out := models.MoveResult{ID: id, Version: res.CurrentVersion}
	if card, ok := s.store.Appointment(id); ok {
		out.Status = card.Status
		out.Position = card.Position
		out.UpdatedAt = card.UpdatedAt
		if out.Version < card.Version {
			out.Version = card.Version
		}
	}
	if st, ok := res.Details["status"].(string); ok {
		out.Status = models.AppointmentStatus(st)
	}
	if pos, ok := res.Details["position"].(float64); ok {
		out.Position = int(pos)
	}

	s.store.Dispatch(board.MoveSucceeded(out))
	return out
}

func (s *Service) succeed(ctx context.Context, res *models.MoveResult) {
	s.metrics.Move(ctx, "success")
	s.logger.Info("Appointment moved",
		"appointment_id", res.ID,
		"status", res.Status,
		"position", res.Position,
		"version", res.Version,
	)
	s.notifier.Notify(ctx, notify.Notification{
		Type:    notify.TypeSuccess,
		Title:   "Appointment moved",
		Message: fmt.Sprintf("Appointment %s moved to %s", res.ID, res.Status),
	})
}

// fail records a terminal failure in the board state and reports it.
func (s *Service) fail(ctx context.Context, id string, err error) error {
	mErr := mutation.Classify(id, err)
	if mErr.Kind != mutation.KindHandled {
		s.store.Dispatch(board.MoveFailed(id, mErr))
	}
	return s.report(ctx, mErr)
}

// report notifies about err unless the operator already saw it.
func (s *Service) report(ctx context.Context, err error) error {
	var mErr *mutation.Error
	if !errors.As(err, &mErr) {
		return err
	}
	s.metrics.Move(ctx, string(mErr.Kind))
	if mErr.Kind == mutation.KindHandled {
		return err
	}

	s.logger.Warn("Move failed", "appointment_id", mErr.EntityID, "kind", mErr.Kind, "error", mErr.Err)
	s.notifier.Notify(ctx, failureNotification(mErr))
	return err
}

func failureNotification(mErr *mutation.Error) notify.Notification {
	n := notify.Notification{Type: notify.TypeError, Message: mErr.Error()}
	switch mErr.Kind {
	case mutation.KindDoubleMove, mutation.KindMoveInProgress:
		n.Type = notify.TypeWarning
		n.Title = "Move already in progress"
	case mutation.KindTooManyPending:
		n.Type = notify.TypeWarning
		n.Title = "Too many pending moves"
	case mutation.KindTimeout:
		n.Title = "Move timed out"
	case mutation.KindValidation:
		n.Title = "Move rejected"
	case mutation.KindVersionConflict:
		n.Title = "Move conflict"
	default:
		n.Title = "Could not reach the server"
	}
	return n
}

// resolutionFrom builds the conflict record from the server's answer.
func resolutionFrom(id string, provided int64, err error) *mutation.Resolution {
	res := &mutation.Resolution{
		EntityID:        id,
		Type:            mutation.ConflictVersion,
		ProvidedVersion: provided,
	}

	var ce *api.ConflictError
	if !errors.As(err, &ce) {
		return res
	}
	res.CurrentVersion = ce.CurrentVersion
	if len(ce.CurrentState) > 0 {
		details := make(map[string]any)
		if json.Unmarshal(ce.CurrentState, &details) == nil {
			res.Details = details
			if v, ok := details["version"].(float64); ok && res.CurrentVersion == 0 {
				res.CurrentVersion = int64(v)
			}
		}
	}
	return res
}

func (s *Service) acquire(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[id]; busy {
		return mutation.New(mutation.KindMoveInProgress, id, mutation.ErrInProgress)
	}
	if s.doubleMoveLocked(id) {
		return mutation.New(mutation.KindDoubleMove, id, mutation.ErrDoubleMove)
	}

	s.inFlight[id] = struct{}{}
	s.starts[id] = append(s.starts[id], s.now())
	return nil
}

// dropStart forgets the most recent start of id.
func (s *Service) dropStart(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	starts := s.starts[id]
	if len(starts) <= 1 {
		delete(s.starts, id)
		return
	}
	s.starts[id] = starts[:len(starts)-1]
}

func (s *Service) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}

// doubleMoveLocked prunes starts outside the window and checks the limit.
func (s *Service) doubleMoveLocked(id string) bool {
	cutoff := s.now().Add(-s.cfg.DoubleMoveWindow)

	var recent []time.Time
	for _, t := range s.starts[id] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) == 0 {
		delete(s.starts, id)
		return false
	}
	s.starts[id] = recent
	return len(recent) >= s.cfg.MaxConcurrentPerID
}
