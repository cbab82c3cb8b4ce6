package live

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/garageboard/pkg/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastBackOff() backoff.BackOff {
	return backoff.NewConstantBackOff(5 * time.Millisecond)
}

func TestNewWatcher_URL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{base: "http://localhost:8080", want: "ws://localhost:8080/appointments/events"},
		{base: "https://board.example.com/", want: "wss://board.example.com/appointments/events"},
	}

	for _, tt := range tests {
		w := NewWatcher(tt.base, "", testLogger())
		assert.Equal(t, tt.want, w.wsURL)
	}
}

func TestWatcher_DeliversEventsAndReconnects(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var connections atomic.Int32
	var authMu sync.Mutex
	var auth []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authMu.Lock()
		auth = append(auth, r.Header.Get("Authorization"))
		authMu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		n := connections.Add(1)
		_ = conn.WriteJSON(api.BoardEvent{
			Type:     api.EventAppointmentMoved,
			EntityID: fmt.Sprintf("a%d", n),
			Version:  int64(n),
		})
		if n == 1 {
			// Первое соединение обрывается сервером
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var connects atomic.Int32
	events := make(chan api.BoardEvent, 4)
	w := NewWatcher(srv.URL, "token-1", testLogger(),
		WithBackOff(fastBackOff),
		WithOnConnect(func(ctx context.Context) { connects.Add(1) }),
	)

	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(ctx context.Context, ev api.BoardEvent) {
			events <- ev
		})
	}()

	var got []api.BoardEvent
	for len(got) < 2 {
		select {
		case ev := <-events:
			got = append(got, ev)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for live events")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	assert.Equal(t, "a1", got[0].EntityID)
	assert.Equal(t, "a2", got[1].EntityID)
	assert.Equal(t, int64(2), got[1].Version)
	assert.Equal(t, int32(2), connects.Load())

	authMu.Lock()
	defer authMu.Unlock()
	require.NotEmpty(t, auth)
	assert.Equal(t, "Bearer token-1", auth[0])
}

func TestWatcher_SkipsMalformedEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		_ = conn.WriteJSON(api.BoardEvent{Type: api.EventVehicleUpdated, EntityID: "v1", Version: 4})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan api.BoardEvent, 4)
	done := make(chan error, 1)
	w := NewWatcher(srv.URL, "", testLogger(), WithBackOff(fastBackOff))
	go func() {
		done <- w.Watch(ctx, func(ctx context.Context, ev api.BoardEvent) { events <- ev })
	}()

	select {
	case ev := <-events:
		assert.Equal(t, api.EventVehicleUpdated, ev.Type)
		assert.Equal(t, "v1", ev.EntityID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for live event")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcher_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	w := NewWatcher(srv.URL, "expired", testLogger(), WithBackOff(fastBackOff))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := w.Watch(ctx, func(ctx context.Context, ev api.BoardEvent) {})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestWatcher_StopsWhileServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var connects atomic.Int32
	w := NewWatcher(url, "", testLogger(),
		WithBackOff(fastBackOff),
		WithOnConnect(func(ctx context.Context) { connects.Add(1) }),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := w.Watch(ctx, func(ctx context.Context, ev api.BoardEvent) {})
	assert.NoError(t, err)
	assert.Zero(t, connects.Load())
}
