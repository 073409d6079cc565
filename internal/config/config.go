package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/timer-toggle/internal/logger"
)

// Config holds the tunables of the timed switch.
type Config struct {
	// Timeout is how long the switch may stay on before it is turned off automatically.
	Timeout time.Duration `yaml:"timeout"`
	// PollInterval is the cadence at which the timer driver samples elapsed time.
	PollInterval time.Duration `yaml:"poll_interval"`
	// LogLevel is the minimum level of written log lines.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for switch settings.
	DefaultConfigFilename = "timer-toggle.yaml"

	// DefaultTimeout is the default on-state lifetime.
	DefaultTimeout = 3 * time.Second

	// DefaultPollInterval is the default timer sampling cadence.
	DefaultPollInterval = time.Second

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegativeDuration is returned when a duration setting is below zero.
	errNegativeDuration = errors.New("duration must not be negative")
	// errPollTooSlow is returned when the timer would sample less often than it expires.
	errPollTooSlow = errors.New("poll interval must not exceed timeout")
	// errUnknownLogLevel is returned for a level name zap does not know.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns settings matching the classic three second switch.
func Default() *Config {
	return &Config{
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
		LogLevel:     DefaultLogLevel,
	}
}

// Load reads configuration from the provided path and validates it.
// A missing file at the default location yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultConfigFilename {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills unset fields with defaults and checks the rest.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.Timeout < 0 || settings.PollInterval < 0 {
		return errNegativeDuration
	}

	if settings.Timeout == 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.PollInterval == 0 {
		settings.PollInterval = DefaultPollInterval
	}

	if settings.PollInterval > settings.Timeout {
		return fmt.Errorf("%w: %s > %s", errPollTooSlow, settings.PollInterval, settings.Timeout)
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, settings.LogLevel)
	}

	return nil
}
