package config

import "time"

// Environment variables consulted when the file leaves a field empty.
const (
	EnvRealtimeURL = "REALTIME_PUBLIC_URL"
	EnvRelayURL    = "RELAY_URL"
	EnvRelayAPIKey = "RELAY_API_KEY"
)

// Backoff names accepted by realtime.backoff.
const (
	BackoffLinear      = "linear"
	BackoffExponential = "exponential"
)

// Config is the root configuration shared by all binaries.
type Config struct {
	Realtime RealtimeConfig `yaml:"realtime"`
	Relay    RelayConfig    `yaml:"relay"`
	Database DBConfig       `yaml:"database"`
	Poller   PollerConfig   `yaml:"poller"`
	Server   ServerConfig   `yaml:"server"`
	Health   HealthConfig   `yaml:"health"`
}

// RealtimeConfig holds display-side push connection settings.
type RealtimeConfig struct {
	URL                  string        `yaml:"url"` // Relay base URL; empty = polling only
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	ReconnectBaseDelay   time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay    time.Duration `yaml:"reconnect_max_delay"` // Exponential backoff cap
	ConnectTimeout       time.Duration `yaml:"connect_timeout"`
	Backoff              string        `yaml:"backoff"` // "linear" or "exponential"
}

// RelayConfig holds the gateway's relay endpoint.
type RelayConfig struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"` // Sent as X-API-Key
	Timeout time.Duration `yaml:"timeout"`
}

// DBConfig holds the order database connection. An empty host disables it.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Enabled reports whether a database is configured.
func (db DBConfig) Enabled() bool {
	return db.Host != ""
}

// PollerConfig holds the disconnected-mode poll settings.
type PollerConfig struct {
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"` // Per fetch
}

// ServerConfig holds reference relay server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	APIKey       string        `yaml:"api_key"`
	ClientBuffer int           `yaml:"client_buffer"`
	PingInterval time.Duration `yaml:"ping_interval"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"`
}
