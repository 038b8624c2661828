// Package config loads and validates the optional YAML configuration for
// the taskloop CLI. The file supplies defaults for the run command; flags
// given on the command line take precedence.
package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Stop policies for the run command.
const (
	// UntilSuccess stops the loop the first time the command exits 0.
	UntilSuccess = "success"
	// UntilFailure stops the loop the first time the command exits non-zero.
	UntilFailure = "failure"
	// UntilForever never stops on exit status; only --max-runs or a
	// signal ends the loop.
	UntilForever = "forever"
)

// Config holds defaults for the run command.
type Config struct {
	// DelayMS is the pause between runs in milliseconds. The first run
	// is always immediate.
	DelayMS int `yaml:"delay_ms"`

	// MaxRuns stops the loop after N runs. Zero means unlimited.
	MaxRuns int `yaml:"max_runs"`

	// Until is the stop policy: success, failure or forever.
	Until string `yaml:"until"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		DelayMS: 0,
		MaxRuns: 0,
		Until:   UntilForever,
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// LoadConfig reads and parses a YAML config file. An empty path or a
// missing file yields the defaults. Fields absent from the file keep
// their default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, errors.Wrap(err, "unable to read config file")
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "unable to parse config file")
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateConfig checks that all config values are valid.
func ValidateConfig(cfg *Config) error {
	if cfg.DelayMS < 0 {
		return ValidationError{Field: "delay_ms", Message: "must be non-negative"}
	}
	if cfg.MaxRuns < 0 {
		return ValidationError{Field: "max_runs", Message: "must be non-negative"}
	}
	return ValidateUntil(cfg.Until)
}

// ValidateUntil checks that a stop policy is one of the known values.
func ValidateUntil(until string) error {
	switch until {
	case UntilSuccess, UntilFailure, UntilForever:
		return nil
	default:
		return ValidationError{
			Field:   "until",
			Message: fmt.Sprintf("must be %q, %q or %q", UntilSuccess, UntilFailure, UntilForever),
		}
	}
}
