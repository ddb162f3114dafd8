package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, CURSOR_CONFIG env, ./config.yaml,
//     ~/.config/cursor/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
//  1. Explicit configPath argument
//  2. CURSOR_CONFIG environment variable
//  3. ./config.yaml in the current directory
//  4. ~/.config/cursor/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("CURSOR_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{"config.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "cursor", "config.yaml"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps CURSOR_* environment variables to config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CURSOR_API_KEY"); v != "" {
		cfg.Auth.Token = v
	}
	if v := os.Getenv("CURSOR_TOKEN"); v != "" {
		cfg.Auth.Token = v
	}
	if v := os.Getenv("CURSOR_BASE_URL"); v != "" {
		cfg.Backend.URL = v
	}
	if v := os.Getenv("CURSOR_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Backend.Timeout = d
		}
	}
	if v := os.Getenv("CURSOR_MODEL"); v != "" {
		cfg.Defaults.Model = v
	}
	if v := os.Getenv("CURSOR_METRICS_ADDR"); v != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = v
	}
}

// resolveFileReferences reads _file fields and populates the
// corresponding value fields. An explicit value wins over its _file
// variant.
func resolveFileReferences(cfg *Config) error {
	if cfg.Auth.Token == "" && cfg.Auth.TokenFile != "" {
		data, err := os.ReadFile(cfg.Auth.TokenFile)
		if err != nil {
			return fmt.Errorf("reading auth.token_file: %w", err)
		}
		cfg.Auth.Token = strings.TrimSpace(string(data))
	}
	return nil
}
