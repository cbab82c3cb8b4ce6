package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instruments groups the counters recorded by the mutation pipeline.
// The zero value is not usable; create it with NewInstruments.
type Instruments struct {
	moves        metric.Int64Counter
	retries      metric.Int64Counter
	rollbacks    metric.Int64Counter
	conflicts    metric.Int64Counter
	negotiations metric.Int64Counter
}

// NewInstruments registers the counters on the global meter provider.
// Registration errors fall back to no-op counters inside the OTel API.
func NewInstruments() *Instruments {
	m := Meter("")
	moves, _ := m.Int64Counter("garageboard.moves",
		metric.WithDescription("Board moves by terminal outcome"),
	)
	retries, _ := m.Int64Counter("garageboard.move.retries",
		metric.WithDescription("Automatic move retries after a version conflict"),
	)
	rollbacks, _ := m.Int64Counter("garageboard.rollbacks",
		metric.WithDescription("Optimistic updates reverted"),
	)
	conflicts, _ := m.Int64Counter("garageboard.conflicts",
		metric.WithDescription("Writes rejected because of a stale concurrency token"),
	)
	negotiations, _ := m.Int64Counter("garageboard.negotiations",
		metric.WithDescription("Conflict negotiations by chosen resolution"),
	)
	return &Instruments{
		moves:        moves,
		retries:      retries,
		rollbacks:    rollbacks,
		conflicts:    conflicts,
		negotiations: negotiations,
	}
}

// Move counts a finished move.
func (i *Instruments) Move(ctx context.Context, outcome string) {
	if i == nil {
		return
	}
	i.moves.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Retry counts an automatic retry.
func (i *Instruments) Retry(ctx context.Context) {
	if i == nil {
		return
	}
	i.retries.Add(ctx, 1)
}

// Rollback counts a reverted optimistic update.
func (i *Instruments) Rollback(ctx context.Context, reason string) {
	if i == nil {
		return
	}
	i.rollbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// Conflict counts a stale-token rejection.
func (i *Instruments) Conflict(ctx context.Context, conflictType string) {
	if i == nil {
		return
	}
	i.conflicts.Add(ctx, 1, metric.WithAttributes(attribute.String("type", conflictType)))
}

// Negotiation counts a resolved negotiation.
func (i *Instruments) Negotiation(ctx context.Context, choice string) {
	if i == nil {
		return
	}
	i.negotiations.Add(ctx, 1, metric.WithAttributes(attribute.String("choice", choice)))
}
