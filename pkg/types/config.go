package types

import (
	"errors"
	"fmt"
)

// Config holds backend selection and logging parameters for a registry.
type Config struct {
	Backend   string `json:"backend" yaml:"backend" mapstructure:"backend"`
	LogLevel  string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" mapstructure:"log_format"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Supported log settings.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrLogLevelUnknown  = errors.New("unknown log level")
	ErrLogFormatUnknown = errors.New("unknown log format")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendSQLite: true,
}

var knownLogLevels = map[string]bool{
	"":            true,
	LogLevelDebug: true,
	LogLevelInfo:  true,
	LogLevelWarn:  true,
	LogLevelError: true,
}

var knownLogFormats = map[string]bool{
	"":            true,
	LogFormatText: true,
	LogFormatJSON: true,
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Backend:   BackendMemory,
		LogLevel:  LogLevelInfo,
		LogFormat: LogFormatText,
	}
}

// Validate checks that the Config is well-formed. Empty log settings are
// allowed and mean the defaults.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return fmt.Errorf("%w: %q", ErrBackendUnknown, c.Backend)
	}
	if !knownLogLevels[c.LogLevel] {
		return fmt.Errorf("%w: %q", ErrLogLevelUnknown, c.LogLevel)
	}
	if !knownLogFormats[c.LogFormat] {
		return fmt.Errorf("%w: %q", ErrLogFormatUnknown, c.LogFormat)
	}
	return nil
}
