package relay

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// DefaultClientBuffer is the per-client send queue length.
const DefaultClientBuffer = 64

// Hub tracks connected displays and fans frames out to them.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client
	closed  bool

	bufferSize int
	logger     *slog.Logger
}

// client is one connected display.
type client struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	connected time.Time
}

// NewHub creates an empty hub.
func NewHub(bufferSize int, logger *slog.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultClientBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[string]*client),
		bufferSize: bufferSize,
		logger:     logger,
	}
}

// register adds conn to the hub. It returns nil once the hub is closed.
func (h *Hub) register(conn *websocket.Conn) *client {
	c := &client{
		id:        uuid.NewString(),
		conn:      conn,
		send:      make(chan []byte, h.bufferSize),
		connected: time.Now(),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client registered", "client_id", c.id, "remote", conn.RemoteAddr().String(), "total", total)
	return c
}

// unregister removes c if it is still registered.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	if ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Info("client unregistered",
			"client_id", c.id,
			"connected_for", time.Since(c.connected).Round(time.Second),
			"total", total,
		)
	}
}

// Broadcast queues frame for every client. Clients whose queue is full are
// dropped. It returns how many clients accepted the frame and how many were
// connected.
func (h *Hub) Broadcast(frame []byte) (reached, total int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	total = len(h.clients)
	for id, c := range h.clients {
		select {
		case c.send <- frame:
			reached++
		default:
			h.logger.Warn("dropping client: send buffer full", "client_id", id)
			close(c.send)
			delete(h.clients, id)
		}
	}
	return reached, total
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
}
