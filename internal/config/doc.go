// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Relay settings fall back to REALTIME_PUBLIC_URL, RELAY_URL and RELAY_API_KEY
// when the file leaves them empty.
package config
