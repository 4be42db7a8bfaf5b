package realtime

import (
	"errors"
	"time"

	"github.com/fdvky1/sureyummy-sub000/internal/event"
)

// Errors
var (
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
	ErrConnectTimeout    = errors.New("connect timeout")
)

// State is the position of the client in its connection state machine.
type State int

const (
	StateIdle                   State = iota // Before the first Connect
	StateConnecting                          // One dial in flight
	StateOpen                                // Transport open
	StateClosedPendingReconnect              // Dropped, reconnect timer armed
	StateClosedExhausted                     // Dropped, attempt budget spent
	StateDisconnected                        // Explicit Disconnect
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosedPendingReconnect:
		return "closed_pending_reconnect"
	case StateClosedExhausted:
		return "closed_exhausted"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// MarshalText lets State render by name in JSON status responses.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is a point-in-time snapshot of the connection.
type Status struct {
	Connected         bool  `json:"connected"`
	ReconnectAttempts int   `json:"reconnectAttempts"`
	State             State `json:"state"`
}

// Stats are cumulative dispatch counters.
type Stats struct {
	Received      int64 `json:"received"`      // Frames read from the transport
	Dispatched    int64 `json:"dispatched"`    // Frames decoded and fanned out
	ParseErrors   int64 `json:"parseErrors"`   // Frames dropped as malformed
	HandlerErrors int64 `json:"handlerErrors"` // Subscriber errors and panics
}

// Handler receives every event dispatched by a Client.
type Handler interface {
	HandleEvent(evt event.Event) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(event.Event) error

func (f HandlerFunc) HandleEvent(evt event.Event) error {
	return f(evt)
}

// Config configures a Client.
type Config struct {
	URL                  string        // Relay base URL (http, https, ws or wss); empty disables the client
	MaxReconnectAttempts int           // Attempts after a drop before giving up
	ReconnectBaseDelay   time.Duration // Base delay fed to Backoff
	ConnectTimeout       time.Duration // Dial deadline; expiry counts as a failure
	Backoff              Backoff       // nil = LinearBackoff{Base: ReconnectBaseDelay}
}

// DefaultConfig returns the production defaults with no URL.
func DefaultConfig() Config {
	return Config{
		MaxReconnectAttempts: 5,
		ReconnectBaseDelay:   3 * time.Second,
		ConnectTimeout:       10 * time.Second,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.MaxReconnectAttempts <= 0 {
		c.MaxReconnectAttempts = d.MaxReconnectAttempts
	}
	if c.ReconnectBaseDelay <= 0 {
		c.ReconnectBaseDelay = d.ReconnectBaseDelay
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if c.Backoff == nil {
		c.Backoff = LinearBackoff{Base: c.ReconnectBaseDelay}
	}
}
