package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override YAML settings.
const (
	EnvTimeout      = "TIMER_TOGGLE_TIMEOUT"
	EnvPollInterval = "TIMER_TOGGLE_POLL_INTERVAL"
	EnvLogLevel     = "TIMER_TOGGLE_LOG_LEVEL"
)

// LoadDotEnv loads environment variables from path. Missing files are ignored.
// Variables already present in the environment are not overwritten.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("load env file: %w", err)
	}

	return nil
}

// ApplyEnv overrides settings with values found via lookup and validates the result.
// Pass os.LookupEnv for the process environment.
func ApplyEnv(settings *Config, lookup func(string) (string, bool)) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if value, ok := lookup(EnvTimeout); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvTimeout, err)
		}

		settings.Timeout = d
	}

	if value, ok := lookup(EnvPollInterval); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvPollInterval, err)
		}

		settings.PollInterval = d
	}

	if value, ok := lookup(EnvLogLevel); ok && value != "" {
		settings.LogLevel = value
	}

	return Validate(settings)
}
