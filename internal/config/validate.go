package config

import (
	"errors"
	"fmt"
)

// Validate checks value ranges. Component-specific requirements are checked
// by ValidateGateway and ValidateRelayServer.
func (c *Config) Validate() error {
	if c.Realtime.MaxReconnectAttempts < 1 {
		return errors.New("realtime.max_reconnect_attempts must be >= 1")
	}
	if c.Realtime.ReconnectBaseDelay <= 0 {
		return errors.New("realtime.reconnect_base_delay must be > 0")
	}
	if c.Realtime.ConnectTimeout <= 0 {
		return errors.New("realtime.connect_timeout must be > 0")
	}
	switch c.Realtime.Backoff {
	case BackoffLinear, BackoffExponential:
	default:
		return fmt.Errorf("realtime.backoff must be %q or %q, got %q", BackoffLinear, BackoffExponential, c.Realtime.Backoff)
	}

	if c.Database.Enabled() {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	}

	if c.Poller.Interval <= 0 {
		return errors.New("poller.interval must be > 0")
	}
	if c.Poller.Timeout <= 0 {
		return errors.New("poller.timeout must be > 0")
	}

	if c.Server.ClientBuffer < 1 {
		return errors.New("server.client_buffer must be >= 1")
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}

	return nil
}

// ValidateGateway checks what the broadcast gateway needs at startup.
func (c *Config) ValidateGateway() error {
	if c.Relay.URL == "" {
		return errors.New("relay.url is required")
	}
	if c.Relay.APIKey == "" {
		return errors.New("relay.api_key is required")
	}
	return nil
}

// ValidateRelayServer checks what the reference relay needs at startup.
func (c *Config) ValidateRelayServer() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.APIKey == "" {
		return errors.New("server.api_key is required")
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
