// Package records edits single customer and vehicle records with entity
// tag preconditions. Edits are applied to the local view before the write
// and rolled back if the write ultimately fails.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iudanet/garageboard/internal/client/api"
	"github.com/iudanet/garageboard/internal/client/cache"
	"github.com/iudanet/garageboard/internal/client/conflict"
	"github.com/iudanet/garageboard/internal/client/mutation"
	"github.com/iudanet/garageboard/internal/models"
	"github.com/iudanet/garageboard/internal/telemetry"
)

//go:generate moq -out api_mock.go . API
//go:generate moq -out negotiator_mock.go . Negotiator

// API is the subset of the admin HTTP client the editor needs.
type API interface {
	GetRecord(ctx context.Context, resource, id string) (*api.Record, error)
	GetProfile(ctx context.Context, resource, id, ifNoneMatch string) (*api.Record, error)
	PatchRecord(ctx context.Context, resource, id string, patch models.Patch, ifMatch string) (*api.Record, error)
}

// Negotiator resolves a stale-tag conflict with a human.
type Negotiator interface {
	Negotiate(ctx context.Context, p conflict.Payload) (conflict.Choice, error)
	Negotiating(key string) bool
}

var (
	// ErrEmptyPatch is returned by Edit for a patch without fields.
	ErrEmptyPatch = errors.New("patch has no fields")
	// ErrNoEntityTag is returned by Edit when the server gives no tag to
	// condition the write on.
	ErrNoEntityTag = errors.New("server returned no entity tag for the record")
)

type settings struct {
	negotiator Negotiator
	metrics    *telemetry.Instruments
}

// Option configures an Editor.
type Option func(*settings)

// WithNegotiator sets the conflict negotiator. Without it every conflict
// is treated as cancelled.
func WithNegotiator(n Negotiator) Option {
	return func(s *settings) { s.negotiator = n }
}

// WithMetrics enables conflict and rollback counters.
func WithMetrics(m *telemetry.Instruments) Option {
	return func(s *settings) { s.metrics = m }
}

// Editor holds the local view of records of one type and edits them.
// It is safe for concurrent use; edits of the same id are rejected while
// one is in flight or negotiating.
type Editor[T any] struct {
	api        API
	cache      *cache.Cache
	negotiator Negotiator
	metrics    *telemetry.Instruments
	tracer     trace.Tracer
	logger     *slog.Logger
	views      map[string]T        // последнее известное клиенту представление
	inFlight   map[string]struct{} // записи с выполняющимся Edit
	resource   Resource[T]
	mu         sync.Mutex
}

// NewEditor creates an editor for resource.
func NewEditor[T any](client API, c *cache.Cache, resource Resource[T], logger *slog.Logger, opts ...Option) *Editor[T] {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return &Editor[T]{
		api:        client,
		cache:      c,
		negotiator: s.negotiator,
		metrics:    s.metrics,
		tracer:     telemetry.Tracer(""),
		logger:     logger,
		views:      make(map[string]T),
		inFlight:   make(map[string]struct{}),
		resource:   resource,
	}
}

// NewCustomers creates an editor for customer records.
func NewCustomers(client API, c *cache.Cache, logger *slog.Logger, opts ...Option) *Editor[models.Customer] {
	return NewEditor(client, c, CustomerRecords, logger, opts...)
}

// NewVehicles creates an editor for vehicle records.
func NewVehicles(client API, c *cache.Cache, logger *slog.Logger, opts ...Option) *Editor[models.Vehicle] {
	return NewEditor(client, c, VehicleRecords, logger, opts...)
}

// Load reads the record profile, revalidating the cached copy with
// If-None-Match. A 304 answer is served from the cache.
func (e *Editor[T]) Load(ctx context.Context, id string) (T, error) {
	var zero T
	key := e.key(id)

	entry, cached := e.cache.Get(ctx, key)
	ifNoneMatch := ""
	if cached && len(entry.Payload) > 0 {
		ifNoneMatch = entry.Token
	}

	rec, err := e.api.GetProfile(ctx, e.resource.Name, id, ifNoneMatch)
	if errors.Is(err, api.ErrNotModified) {
		v, derr := decode[T](entry.Payload)
		if derr != nil {
			return zero, derr
		}
		e.logger.Debug("Record not modified", "resource", e.resource.Name, "id", id, "etag", entry.Token)
		e.setIdleView(id, v)
		return v, nil
	}
	if err != nil {
		return zero, fmt.Errorf("failed to load %s %s: %w", e.resource.Name, id, err)
	}

	v, err := decode[T](rec.Data)
	if err != nil {
		return zero, err
	}
	e.cache.Observe(ctx, key, rec.ETag, rec.Data)
	e.setIdleView(id, v)
	return v, nil
}

// View returns the local view of id, including a pending optimistic edit.
func (e *Editor[T]) View(id string) (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.views[id]
	return v, ok
}

// InFlight reports whether an edit of id is running.
func (e *Editor[T]) InFlight(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.inFlight[id]
	return ok
}

// Edit applies patch to the local view and writes it with the cached tag
// as If-Match. A stale tag goes to the negotiator on the first conflict.
// Every failure other than a discard restores the pre-call view.
func (e *Editor[T]) Edit(ctx context.Context, id string, patch models.Patch) (T, error) {
	var zero T
	if len(patch) == 0 {
		return zero, mutation.New(mutation.KindValidation, id, ErrEmptyPatch)
	}

	if err := e.acquire(id); err != nil {
		return zero, err
	}
	defer e.release(id)

	ctx, span := e.tracer.Start(ctx, "records.edit", trace.WithAttributes(
		attribute.String("record.resource", e.resource.Name),
		attribute.String("record.id", id),
		attribute.StringSlice("record.fields", patch.Keys()),
	))
	defer span.End()

	base, token, err := e.current(ctx, id)
	if err != nil {
		mErr := mutation.Classify(id, err)
		span.SetStatus(codes.Error, mErr.Error())
		return zero, mErr
	}

	local, err := models.ApplyPatch(base, patch)
	if err != nil {
		return zero, mutation.New(mutation.KindValidation, id, err)
	}
	e.setView(id, local)

	e.logger.Debug("Sending record patch",
		"resource", e.resource.Name,
		"id", id,
		"fields", patch.Keys(),
		"if_match", token,
	)

	var out T
	rec, err := e.api.PatchRecord(ctx, e.resource.Name, id, patch, token)
	switch {
	case err == nil:
		out, err = e.commit(ctx, id, local, rec)
	case isStale(err):
		out, err = e.negotiate(ctx, id, base, local, patch)
	}
	if err != nil {
		mErr := mutation.Classify(id, err)
		e.rollback(ctx, id, base, mErr)
		span.RecordError(mErr)
		span.SetStatus(codes.Error, mErr.Error())
		return zero, mErr
	}

	e.logger.Info("Record updated", "resource", e.resource.Name, "id", id, "etag", e.cache.Token(ctx, e.key(id)))
	return out, nil
}

// negotiate handles a rejected If-Match: fetch the live record, ask the
// negotiator and act on its choice.
func (e *Editor[T]) negotiate(ctx context.Context, id string, base, local T, patch models.Patch) (T, error) {
	var zero T
	e.metrics.Conflict(ctx, string(mutation.ConflictConcurrentEdit))

	remote, err := e.api.GetRecord(ctx, e.resource.Name, id)
	if err != nil {
		return zero, fmt.Errorf("failed to fetch current %s %s: %w", e.resource.Name, id, err)
	}
	remoteFields, err := fieldsOf(remote.Data)
	if err != nil {
		return zero, err
	}
	localFields, err := models.ToFields(local)
	if err != nil {
		return zero, err
	}
	baseFields, err := models.ToFields(base)
	if err != nil {
		return zero, err
	}

	res := &mutation.Resolution{
		Details:         remoteFields,
		EntityID:        id,
		Type:            mutation.ConflictConcurrentEdit,
		CurrentVersion:  versionOf(remoteFields),
		ProvidedVersion: versionOf(baseFields),
	}

	e.logger.Warn("Record conflict",
		"resource", e.resource.Name,
		"id", id,
		"current_etag", remote.ETag,
		"fields", patch.Keys(),
	)

	choice := conflict.ChoiceCancel
	if e.negotiator != nil {
		choice, err = e.negotiator.Negotiate(ctx, conflict.Payload{
			Local:      localFields,
			Remote:     remoteFields,
			Patch:      patch.Clone(),
			Resolution: res,
			Resource:   e.resource.Name,
			EntityID:   id,
			Title:      e.resource.title(local),
			Fields:     conflict.Diff(patch, remoteFields, e.resource.Labels),
		})
		if err != nil {
			e.logger.Warn("Conflict negotiation failed", "resource", e.resource.Name, "id", id, "error", err)
		}
	}

	switch choice {
	case conflict.ChoiceDiscard:
		adopted, err := decode[T](remote.Data)
		if err != nil {
			return zero, err
		}
		e.cache.Observe(ctx, e.key(id), remote.ETag, remote.Data)
		e.setView(id, adopted)
		e.logger.Info("Local edit discarded", "resource", e.resource.Name, "id", id)
		return adopted, nil

	case conflict.ChoiceOverwrite:
		rec, err := e.api.PatchRecord(ctx, e.resource.Name, id, patch, "")
		if err != nil {
			return zero, err
		}
		e.logger.Info("Record overwritten", "resource", e.resource.Name, "id", id)
		return e.commit(ctx, id, local, rec)

	default:
		handled := mutation.New(mutation.KindHandled, id, mutation.ErrHandled)
		handled.Resolution = res
		return zero, handled
	}
}

// commit merges the server answer into the view and caches its tag.
func (e *Editor[T]) commit(ctx context.Context, id string, local T, rec *api.Record) (T, error) {
	var zero T
	fields, err := fieldsOf(rec.Data)
	if err != nil {
		return zero, err
	}
	merged, err := models.ApplyPatch(local, fields)
	if err != nil {
		return zero, err
	}

	e.cache.Observe(ctx, e.key(id), rec.ETag, rec.Data)
	e.setView(id, merged)
	return merged, nil
}

func (e *Editor[T]) rollback(ctx context.Context, id string, base T, mErr *mutation.Error) {
	e.setView(id, base)
	e.metrics.Rollback(ctx, string(mErr.Kind))
	if mErr.Kind == mutation.KindHandled {
		e.logger.Info("Record edit cancelled", "resource", e.resource.Name, "id", id)
		return
	}
	e.logger.Warn("Record edit rolled back",
		"resource", e.resource.Name,
		"id", id,
		"reason", mErr.Kind,
		"error", mErr.Err,
	)
}

// current returns the view the edit starts from together with the tag the
// write is conditioned on. Without a live cached tag the record is read
// from the server again, so a write never goes out unconditionally.
func (e *Editor[T]) current(ctx context.Context, id string) (T, string, error) {
	var zero T
	key := e.key(id)

	if entry, ok := e.cache.Get(ctx, key); ok && entry.Token != "" {
		if v, ok := e.View(id); ok {
			return v, entry.Token, nil
		}
		if len(entry.Payload) > 0 {
			if v, err := decode[T](entry.Payload); err == nil {
				e.setView(id, v)
				return v, entry.Token, nil
			}
		}
	}

	// Тег истек или не был получен: локальное представление ему уже не соответствует
	v, err := e.Load(ctx, id)
	if err != nil {
		return zero, "", err
	}
	token := e.cache.Token(ctx, key)
	if token == "" {
		return zero, "", ErrNoEntityTag
	}
	e.setView(id, v)
	return v, token, nil
}

func (e *Editor[T]) acquire(id string) error {
	key := e.key(id)
	if e.negotiator != nil && e.negotiator.Negotiating(key) {
		return mutation.New(mutation.KindMoveInProgress, id, conflict.ErrNegotiationOpen)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inFlight[id]; busy {
		return mutation.New(mutation.KindMoveInProgress, id, mutation.ErrInProgress)
	}
	e.inFlight[id] = struct{}{}
	return nil
}

func (e *Editor[T]) release(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, id)
}

func (e *Editor[T]) setView(id string, v T) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.views[id] = v
}

// setIdleView replaces the view unless an edit of id is in flight.
func (e *Editor[T]) setIdleView(id string, v T) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inFlight[id]; busy {
		return
	}
	e.views[id] = v
}

func (e *Editor[T]) key(id string) string {
	return cache.Key(e.resource.Name, id)
}

func isStale(err error) bool {
	var ce *api.ConflictError
	return errors.Is(err, api.ErrPreconditionFailed) || errors.As(err, &ce)
}

func decode[T any](data json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("failed to decode record: %w", err)
	}
	return v, nil
}

func fieldsOf(data json.RawMessage) (map[string]any, error) {
	fields := make(map[string]any)
	if len(data) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode record fields: %w", err)
	}
	return fields, nil
}

func versionOf(fields map[string]any) int64 {
	if v, ok := fields["version"].(float64); ok {
		return int64(v)
	}
	return 0
}
