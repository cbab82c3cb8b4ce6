// Package live subscribes to the board change feed and reconnects with
// exponential backoff when the connection drops.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/iudanet/garageboard/pkg/api"
)

// EventsPath is the websocket endpoint of the board feed.
const EventsPath = "/appointments/events"

const (
	pongWait         = 60 * time.Second
	writeWait        = 10 * time.Second
	handshakeTimeout = 10 * time.Second
)

// ErrUnauthorized is returned when the server rejects the operator token.
var ErrUnauthorized = errors.New("live feed: unauthorized")

// Handler receives board events in arrival order.
type Handler func(ctx context.Context, ev api.BoardEvent)

// Watcher streams board events from the server.
type Watcher struct {
	dialer     *websocket.Dialer
	logger     *slog.Logger
	onConnect  func(ctx context.Context)
	newBackOff func() backoff.BackOff
	wsURL      string
	token      string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithOnConnect registers fn to run after every successful (re)connect,
// e.g. to refresh the board and pick up events missed while offline.
func WithOnConnect(fn func(ctx context.Context)) Option {
	return func(w *Watcher) { w.onConnect = fn }
}

// WithBackOff replaces the reconnect policy. newBackOff must return a
// fresh instance on every call.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(w *Watcher) { w.newBackOff = newBackOff }
}

// NewWatcher creates a watcher. baseURL is the HTTP base of the server and
// is converted to ws:// or wss://.
func NewWatcher(baseURL, token string, logger *slog.Logger, opts ...Option) *Watcher {
	u := strings.TrimRight(baseURL, "/")
	u = strings.Replace(u, "https://", "wss://", 1)
	u = strings.Replace(u, "http://", "ws://", 1)

	w := &Watcher{
		dialer:     &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		logger:     logger,
		newBackOff: defaultBackOff,
		wsURL:      u + EventsPath,
		token:      token,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func defaultBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 30 * time.Second
	// Переподключаемся, пока не отменен контекст
	bo.MaxElapsedTime = 0
	return bo
}

// Watch blocks until ctx is cancelled, delivering every event to handle.
// It returns nil on cancellation and an error only when reconnecting can
// not help, e.g. ErrUnauthorized.
func (w *Watcher) Watch(ctx context.Context, handle Handler) error {
	for {
		conn, err := backoff.RetryNotifyWithData(
			func() (*websocket.Conn, error) { return w.dial(ctx) },
			backoff.WithContext(w.newBackOff(), ctx),
			func(err error, delay time.Duration) {
				w.logger.Warn("Live feed unavailable, reconnecting", "error", err, "delay", delay)
			},
		)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		w.logger.Info("Live feed connected", "url", w.wsURL)
		if w.onConnect != nil {
			w.onConnect(ctx)
		}

		err = w.read(ctx, conn, handle)
		if ctx.Err() != nil {
			return nil
		}
		w.logger.Warn("Live feed disconnected", "error", err)
	}
}

func (w *Watcher) dial(ctx context.Context) (*websocket.Conn, error) {
	hdr := http.Header{}
	if w.token != "" {
		hdr.Set("Authorization", "Bearer "+w.token)
	}

	conn, resp, err := w.dialer.DialContext(ctx, w.wsURL, hdr)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, backoff.Permanent(ErrUnauthorized)
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("live feed dial: %w", err)
	}
	return conn, nil
}

// read delivers events until the connection fails or ctx is cancelled.
func (w *Watcher) read(ctx context.Context, conn *websocket.Conn, handle Handler) error {
	stop := make(chan struct{})
	defer close(stop)
	defer func() {
		_ = conn.Close()
	}()

	// Отмена контекста прерывает блокирующее чтение
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("live feed read: %w", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var ev api.BoardEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			w.logger.Debug("Skipping malformed live event", "error", err)
			continue
		}
		handle(ctx, ev)
	}
}
