package broadcast

import (
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds one relay call.
const DefaultTimeout = 10 * time.Second

// Errors
var (
	ErrMissingRelayURL = errors.New("relay url is required")
	ErrMissingAPIKey   = errors.New("relay api key is required")
	ErrInvalidRelayURL = errors.New("invalid relay url")
	ErrRelayRejected   = errors.New("relay rejected broadcast")
)

// Config configures a Gateway.
type Config struct {
	URL     string        // Relay base URL, e.g. https://push.example.com
	APIKey  string        // Sent as X-API-Key
	Timeout time.Duration // Per call; 0 = DefaultTimeout
}

// Result reports the outcome of one broadcast.
type Result struct {
	Success        bool
	ClientsReached *int // Nil when the relay did not report it
	TotalClients   *int
	Err            error
}

// RelayError is a non-2xx response from the relay.
type RelayError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay error %d: %s", e.StatusCode, e.Message)
}

// broadcastResponse is the relay's JSON reply. All fields are optional.
type broadcastResponse struct {
	Success        *bool  `json:"success"`
	ClientsReached *int   `json:"clients_reached"`
	TotalClients   *int   `json:"total_clients"`
	Error          string `json:"error"`
}
