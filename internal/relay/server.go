package relay

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fdvky1/sureyummy-sub000/internal/version"
)

// maxBroadcastBody caps POST /broadcast bodies.
const maxBroadcastBody = 1 << 20

// ErrMissingAPIKey is returned when the server has no key to check against.
var ErrMissingAPIKey = errors.New("relay server api key is required")

// ServerConfig configures a Server.
type ServerConfig struct {
	APIKey       string        // Required on POST /broadcast
	ClientBuffer int           // Per-client queue; 0 = DefaultClientBuffer
	PingInterval time.Duration // 0 = 30s
	WriteTimeout time.Duration // 0 = 10s
}

// Server serves /ws, /broadcast and /health.
type Server struct {
	cfg      ServerConfig
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
	mux      *http.ServeMux
}

// NewServer creates a relay server with its own hub.
func NewServer(cfg ServerConfig, logger *slog.Logger) (*Server, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "relay")

	s := &Server{
		cfg:    cfg,
		hub:    NewHub(cfg.ClientBuffer, logger),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Displays are served from other origins; /ws is unauthenticated.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		mux: http.NewServeMux(),
	}

	s.mux.HandleFunc("/ws", s.handleWS)
	s.mux.HandleFunc("/broadcast", s.handleBroadcast)
	s.mux.HandleFunc("/health", s.handleHealth)

	return s, nil
}

// Hub returns the server's hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Close disconnects all displays.
func (s *Server) Close() {
	s.hub.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type broadcastReply struct {
	Success        bool   `json:"success"`
	ClientsReached *int   `json:"clients_reached,omitempty"`
	TotalClients   *int   `json:"total_clients,omitempty"`
	Error          string `json:"error,omitempty"`
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, broadcastReply{Error: "method not allowed"})
		return
	}

	key := r.Header.Get("X-API-Key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.APIKey)) != 1 {
		s.logger.Warn("broadcast rejected: bad api key", "remote", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, broadcastReply{Error: "invalid api key"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBroadcastBody+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, broadcastReply{Error: "read body: " + err.Error()})
		return
	}
	if len(body) > maxBroadcastBody {
		writeJSON(w, http.StatusRequestEntityTooLarge, broadcastReply{Error: "body too large"})
		return
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		writeJSON(w, http.StatusBadRequest, broadcastReply{Error: "body must be a JSON object"})
		return
	}

	reached, total := s.hub.Broadcast(body)

	s.logger.Info("broadcast",
		"request_id", r.Header.Get("X-Request-ID"),
		"clients_reached", reached,
		"total_clients", total,
		"size", len(body),
	)

	writeJSON(w, http.StatusOK, broadcastReply{
		Success:        true,
		ClientsReached: &reached,
		TotalClients:   &total,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"clients": s.hub.Count(),
		"version": version.Version,
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("upgrade failed", "error", err)
		return
	}

	c := s.hub.register(conn)
	if c == nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "relay shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}

	go s.writePump(c)
	s.readPump(c)
}

// readPump discards inbound frames and unregisters the client on error.
func (s *Server) readPump(c *client) {
	defer func() {
		s.hub.unregister(c)
		c.conn.Close()
	}()

	timeout := 2 * s.cfg.PingInterval
	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(timeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(timeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("client read error", "client_id", c.id, "error", err)
			}
			return
		}
		// Client frames are ignored but count as liveness.
		c.conn.SetReadDeadline(time.Now().Add(timeout))
	}
}

// writePump sends queued frames and pings until the queue is closed.
func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.logger.Debug("client write error", "client_id", c.id, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
