// Package config provides unified configuration for the SDK's command
// line tools.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (CURSOR_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the command line tools.
type Config struct {
	Auth     AuthConfig     `yaml:"auth"`
	Backend  BackendConfig  `yaml:"backend"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// AuthConfig holds the session credential.
type AuthConfig struct {
	Token     string `yaml:"token"`      // session token, any accepted form
	TokenFile string `yaml:"token_file"` // _file variant for token
}

// BackendConfig holds backend endpoint settings.
type BackendConfig struct {
	URL     string        `yaml:"url"`     // default: https://api2.cursor.sh
	Timeout time.Duration `yaml:"timeout"` // non-streaming requests, default: 120s
}

// DefaultsConfig holds per-request defaults the CLI applies when flags
// are absent.
type DefaultsConfig struct {
	Model  string `yaml:"model"`  // default: "gpt-4o"
	Stream bool   `yaml:"stream"` // default: false
}

// MetricsConfig holds the optional Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: false
	Addr    string `yaml:"addr"`    // default: ":9090"
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Backend: BackendConfig{
			URL:     "https://api2.cursor.sh",
			Timeout: 120 * time.Second,
		},
		Defaults: DefaultsConfig{
			Model: "gpt-4o",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
			Path: "/metrics",
		},
	}
}
