package config

import (
	"github.com/fdvky1/sureyummy-sub000/internal/broadcast"
	"github.com/fdvky1/sureyummy-sub000/internal/realtime"
)

// ClientConfig converts the realtime section for realtime.New.
func (r RealtimeConfig) ClientConfig() realtime.Config {
	cfg := realtime.Config{
		URL:                  r.URL,
		MaxReconnectAttempts: r.MaxReconnectAttempts,
		ReconnectBaseDelay:   r.ReconnectBaseDelay,
		ConnectTimeout:       r.ConnectTimeout,
	}
	if r.Backoff == BackoffExponential {
		cfg.Backoff = realtime.ExponentialBackoff{
			Base:   r.ReconnectBaseDelay,
			Max:    r.ReconnectMaxDelay,
			Jitter: true,
		}
	}
	return cfg
}

// GatewayConfig converts the relay section for broadcast.New.
func (r RelayConfig) GatewayConfig() broadcast.Config {
	return broadcast.Config{
		URL:     r.URL,
		APIKey:  r.APIKey,
		Timeout: r.Timeout,
	}
}
