package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file and expands environment variables.
// An empty path yields an empty config, leaving everything to the
// environment fallbacks and defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		cfg.applyEnv()
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	cfg.applyEnv()
	return &cfg, nil
}

// LoadWithDefaults loads config and applies default values.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.Realtime.URL == "" {
		c.Realtime.URL = os.Getenv(EnvRealtimeURL)
	}
	if c.Relay.URL == "" {
		c.Relay.URL = os.Getenv(EnvRelayURL)
	}
	if c.Relay.APIKey == "" {
		c.Relay.APIKey = os.Getenv(EnvRelayAPIKey)
	}
	// The reference relay checks the same key the gateway sends.
	if c.Server.APIKey == "" {
		c.Server.APIKey = c.Relay.APIKey
	}
}
