package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.Token == "" {
		errs = append(errs, fmt.Errorf("auth.token is required (set auth.token, auth.token_file, or CURSOR_API_KEY)"))
	}

	if c.Backend.URL == "" {
		errs = append(errs, fmt.Errorf("backend.url is required"))
	}

	if c.Backend.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("backend.timeout must be > 0, got %s", c.Backend.Timeout))
	}

	if c.Defaults.Model == "" {
		errs = append(errs, fmt.Errorf("defaults.model is required"))
	}

	if c.Metrics.Enabled {
		if c.Metrics.Addr == "" {
			errs = append(errs, fmt.Errorf("metrics.addr is required when metrics.enabled is true"))
		}
		if c.Metrics.Path == "" {
			errs = append(errs, fmt.Errorf("metrics.path is required when metrics.enabled is true"))
		}
	}

	return errors.Join(errs...)
}
