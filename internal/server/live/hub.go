// Package live fans committed board changes out to websocket subscribers.
package live

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/garageboard/pkg/api"
)

const (
	// writeWait time allowed to write a message to the peer
	writeWait = 10 * time.Second
	// pongWait time allowed to read the next pong from the peer
	pongWait = 60 * time.Second
	// clientBufferSize is the send buffer size per subscriber
	clientBufferSize = 16
)

// client is one websocket subscriber
type client struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	remote string
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Hub maintains the set of subscribers and broadcasts board events
type Hub struct {
	clients    map[*client]struct{}
	logger     *slog.Logger
	upgrader   websocket.Upgrader
	pingPeriod time.Duration
	mu         sync.RWMutex
	closed     bool
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CLI клиенты не присылают Origin; доступ ограничен токеном
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		pingPeriod: (pongWait * 9) / 10,
	}
}

// Publish sends the event to every subscriber without blocking.
// A subscriber whose buffer is full is disconnected; it reconnects and
// refreshes the whole board.
func (h *Hub) Publish(event api.BoardEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode board event", "error", err)
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow board subscriber", "remote_addr", c.remote)
		h.unregister(c)
	}
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every subscriber and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for c := range clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.close()
	}
}

// ServeHTTP обрабатывает GET /appointments/events: upgrade до websocket и подписка
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrader уже ответил клиенту
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan []byte, clientBufferSize),
		done:   make(chan struct{}),
		remote: r.RemoteAddr,
	}
	if !h.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	h.logger.Debug("board subscriber connected", "remote_addr", c.remote, "subscribers", h.ClientCount())

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// readPump держит соединение и обнаруживает его закрытие; входящие сообщения игнорируются
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("board subscriber read error", "error", err)
			}
			return
		}
	}
}

// writePump sends events and keepalive pings to the subscriber
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingPeriod)
	defer func() {
		ticker.Stop()
		h.unregister(c)
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
