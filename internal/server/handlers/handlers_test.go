package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/garageboard/internal/models"
	"github.com/iudanet/garageboard/internal/server/storage/sqlite"
	"github.com/iudanet/garageboard/pkg/api"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// eventRecorder collects published board events
type eventRecorder struct {
	events []api.BoardEvent
	mu     sync.Mutex
}

func (r *eventRecorder) Publish(event api.BoardEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) All() []api.BoardEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]api.BoardEvent(nil), r.events...)
}

// setupTestStorage создает in-memory хранилище с одной карточкой:
// клиент c1, автомобиль v1, карточка 1 в SCHEDULED
func setupTestStorage(t *testing.T) *sqlite.Storage {
	t.Helper()
	ctx := context.Background()

	s, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.CreateCustomer(ctx, &models.Customer{
		ID:    "c1",
		Name:  "Ann Lee",
		Phone: "+1 555 010 0100",
		Email: "ann@example.com",
	}))
	require.NoError(t, s.CreateVehicle(ctx, &models.Vehicle{
		ID:         "v1",
		CustomerID: "c1",
		Make:       "Toyota",
		Model:      "Corolla",
		Year:       2015,
	}))
	require.NoError(t, s.CreateAppointment(ctx, &models.Appointment{
		ID:          "1",
		CustomerID:  "c1",
		VehicleID:   "v1",
		Service:     "Oil change",
		Status:      models.StatusScheduled,
		ScheduledAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}))

	return s
}

func newJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(WithOperator(req.Context(), "front-desk"))
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}
