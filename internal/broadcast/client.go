package broadcast

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Gateway posts events to the push relay. It holds no mutable state and is
// safe for concurrent use.
type Gateway struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Gateway.
type Option func(*Gateway)

// New creates a Gateway. A missing URL or API key is a configuration error.
func New(cfg Config, opts ...Option) (*Gateway, error) {
	if cfg.URL == "" {
		return nil, ErrMissingRelayURL
	}
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRelayURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRelayURL, cfg.URL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	g := &Gateway{
		endpoint: strings.TrimRight(cfg.URL, "/") + "/broadcast",
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	g.logger = g.logger.With("component", "broadcast")

	return g, nil
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *Gateway) {
		g.httpClient = hc
	}
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// Endpoint returns the broadcast URL.
func (g *Gateway) Endpoint() string {
	return g.endpoint
}
