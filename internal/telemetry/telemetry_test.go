package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DisabledInstallsNoop(t *testing.T) {
	t.Setenv("GARAGEBOARD_OTEL_ENABLED", "")

	require.NoError(t, Init(context.Background(), "garageboard-test", "dev"))
	assert.False(t, Enabled())

	_, span := Tracer("").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	Shutdown(context.Background())
}

func TestInstruments_NilSafe(t *testing.T) {
	var i *Instruments
	ctx := context.Background()
	assert.NotPanics(t, func() {
		i.Move(ctx, "success")
		i.Retry(ctx)
		i.Rollback(ctx, "timeout")
		i.Conflict(ctx, "version_conflict")
		i.Negotiation(ctx, "discard")
	})
}

func TestInstruments_Record(t *testing.T) {
	t.Setenv("GARAGEBOARD_OTEL_ENABLED", "")
	require.NoError(t, Init(context.Background(), "garageboard-test", "dev"))

	i := NewInstruments()
	assert.NotPanics(t, func() {
		i.Move(context.Background(), "success")
		i.Negotiation(context.Background(), "overwrite")
	})
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
