package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientapi "github.com/iudanet/garageboard/internal/client/api"
	"github.com/iudanet/garageboard/internal/client/live"
	"github.com/iudanet/garageboard/internal/models"
	"github.com/iudanet/garageboard/internal/server/handlers"
	"github.com/iudanet/garageboard/internal/server/storage/sqlite"
	"github.com/iudanet/garageboard/pkg/api"
)

var testJWT = handlers.JWTConfig{Secret: []byte("integration-secret"), AccessTokenTTL: time.Hour}

// setupTestServer поднимает сервер на in-memory базе с одной карточкой
func setupTestServer(t *testing.T) (*httptest.Server, *clientapi.Client) {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, store.CreateCustomer(ctx, &models.Customer{ID: "c1", Name: "Ann Lee", Phone: "555-0100"}))
	require.NoError(t, store.CreateVehicle(ctx, &models.Vehicle{ID: "v1", CustomerID: "c1", Make: "Toyota", Model: "Corolla"}))
	require.NoError(t, store.CreateAppointment(ctx, &models.Appointment{
		ID:          "1",
		CustomerID:  "c1",
		VehicleID:   "v1",
		Status:      models.StatusScheduled,
		ScheduledAt: time.Now(),
	}))

	srv := New(Options{
		Addr:       "127.0.0.1:0",
		Version:    "test",
		JWT:        testJWT,
		RateLimit:  1000,
		RateWindow: time.Minute,
	}, store, logger)
	ts := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		srv.Close()
		ts.Close()
		_ = store.Close()
	})

	token, _, err := handlers.GenerateAccessToken(testJWT, "front-desk")
	require.NoError(t, err)

	client := clientapi.NewClient(ts.URL)
	client.SetToken(token)
	return ts, client
}

func TestServer_HealthWithoutToken(t *testing.T) {
	ts, _ := setupTestServer(t)

	health, err := clientapi.NewClient(ts.URL).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "test", health.Version)
}

func TestServer_RequiresToken(t *testing.T) {
	ts, _ := setupTestServer(t)

	_, err := clientapi.NewClient(ts.URL).GetBoard(context.Background())
	require.Error(t, err)
	assert.True(t, clientapi.IsUnauthorized(err))

	resp, err := http.Get(ts.URL + "/appointments/board")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestServer_MoveAndConflict(t *testing.T) {
	_, client := setupTestServer(t)
	ctx := context.Background()

	cards, err := client.GetBoard(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, int64(1), cards[0].Version)

	res, err := client.MoveAppointment(ctx, "1", models.Placement{Status: models.StatusInProgress, Position: 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, &models.MoveResult{
		UpdatedAt: res.UpdatedAt,
		ID:        "1",
		Status:    models.StatusInProgress,
		Position:  2,
		Version:   2,
	}, res)

	_, err = client.MoveAppointment(ctx, "1", models.Placement{Status: models.StatusReady}, 1)
	var conflict *clientapi.ConflictError
	require.True(t, errors.As(err, &conflict), "got %v", err)
	assert.Equal(t, http.StatusConflict, conflict.StatusCode)
	assert.Equal(t, int64(2), conflict.CurrentVersion)
	assert.Contains(t, string(conflict.CurrentState), `"IN_PROGRESS"`)

	stats, err := client.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[models.StatusInProgress])
}

func TestServer_ConditionalRecordEdits(t *testing.T) {
	_, client := setupTestServer(t)
	ctx := context.Background()

	profile, err := client.GetProfile(ctx, clientapi.ResourceVehicles, "v1", "")
	require.NoError(t, err)
	require.NotEmpty(t, profile.ETag)

	_, err = client.GetProfile(ctx, clientapi.ResourceVehicles, "v1", profile.ETag)
	assert.ErrorIs(t, err, clientapi.ErrNotModified)

	edited, err := client.PatchRecord(ctx, clientapi.ResourceVehicles, "v1", models.Patch{"make": "Ford"}, profile.ETag)
	require.NoError(t, err)
	assert.NotEqual(t, profile.ETag, edited.ETag)
	assert.Contains(t, string(edited.Data), `"Ford"`)

	// Старый тег больше не действует
	_, err = client.PatchRecord(ctx, clientapi.ResourceVehicles, "v1", models.Patch{"model": "Focus"}, profile.ETag)
	assert.ErrorIs(t, err, clientapi.ErrPreconditionFailed)

	fresh, err := client.GetRecord(ctx, clientapi.ResourceVehicles, "v1")
	require.NoError(t, err)
	assert.Equal(t, edited.ETag, fresh.ETag)

	customers, err := client.SearchCustomers(ctx, "555")
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Ann Lee", customers[0].Name)
}

func TestServer_LiveFeed(t *testing.T) {
	ts, client := setupTestServer(t)
	token, _, err := handlers.GenerateAccessToken(testJWT, "bay-1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connected := make(chan struct{}, 1)
	events := make(chan api.BoardEvent, 4)
	watcher := live.NewWatcher(ts.URL, token, slog.New(slog.NewTextHandler(io.Discard, nil)),
		live.WithOnConnect(func(context.Context) {
			select {
			case connected <- struct{}{}:
			default:
			}
		}))

	done := make(chan error, 1)
	go func() {
		done <- watcher.Watch(ctx, func(_ context.Context, ev api.BoardEvent) {
			events <- ev
		})
	}()

	select {
	case <-connected:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not connect")
	}

	_, err = client.MoveAppointment(context.Background(), "1", models.Placement{Status: models.StatusCheckedIn}, 1)
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, api.BoardEvent{Type: api.EventAppointmentMoved, EntityID: "1", Version: 2}, ev)
	case <-time.After(5 * time.Second):
		t.Fatal("no board event received")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
