// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/procio/supervise"
)

// EnvVariable names the environment variable that points at the
// config file when --config is not passed.
const EnvVariable = "PROCIO_CONFIG"

// Config is the procio configuration.
type Config struct {
	// Defaults are the supervision defaults applied when the
	// corresponding flag is not passed.
	Defaults Defaults `yaml:"defaults"`

	// Log configures the structured logger.
	Log Log `yaml:"log"`
}

// Defaults holds per-invocation supervision defaults. Durations are
// authored as Go duration strings ("30s", "2m"); they are validated at
// load time, not at use.
type Defaults struct {
	// With is the default redirection mode (inherit, null, piped,
	// piped-drained).
	With string `yaml:"with"`

	// Timeout bounds the run ("0" or empty means unbounded).
	Timeout string `yaml:"timeout"`

	// GracePeriod is the SIGTERM→SIGKILL escalation window applied on
	// timeout or interruption.
	GracePeriod string `yaml:"grace_period"`

	// MemoryLimit is the per-stream in-memory capture limit in bytes
	// before spilling to a zstd spool file. Zero keeps the built-in
	// default; negative disables spooling.
	MemoryLimit int `yaml:"memory_limit"`

	// SpoolDir is where capture spool files are created.
	SpoolDir string `yaml:"spool_dir"`

	// TailSize is the per-stream tail ring capacity in bytes.
	TailSize int `yaml:"tail_size"`
}

// Log configures the structured logger.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is one of auto, json, text. Auto picks text when stderr
	// is a terminal and json otherwise.
	Format string `yaml:"format"`
}

// Default returns the built-in configuration used when no file is
// specified.
func Default() Config {
	return Config{
		Defaults: Defaults{
			With:        "inherit",
			GracePeriod: "5s",
		},
		Log: Log{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads and validates the config file at path. Unknown fields are
// rejected so that typos fail loud instead of silently applying
// defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	config := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

// Resolve loads configuration from the explicit --config path, the
// PROCIO_CONFIG environment variable, or the built-in defaults, in
// that order of preference. Exactly one source applies.
func Resolve(explicitPath string) (Config, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(EnvVariable)
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks every field that is parsed lazily elsewhere, so a
// bad config fails at startup rather than mid-run.
func (c Config) Validate() error {
	if c.Defaults.With != "" {
		if _, err := supervise.ParseMode(c.Defaults.With); err != nil {
			return fmt.Errorf("defaults.with: %w", err)
		}
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.GraceDuration(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "auto", "json", "text":
	default:
		return fmt.Errorf("log.format: unknown format %q (want auto, json, or text)", c.Log.Format)
	}
	return nil
}

// TimeoutDuration parses the default timeout. Empty means unbounded.
func (c Config) TimeoutDuration() (time.Duration, error) {
	return parseDuration("defaults.timeout", c.Defaults.Timeout)
}

// GraceDuration parses the default grace period.
func (c Config) GraceDuration() (time.Duration, error) {
	return parseDuration("defaults.grace_period", c.Defaults.GracePeriod)
}

// LogLevel parses the configured log level.
func (c Config) LogLevel() (slog.Level, error) {
	switch c.Log.Level {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level: unknown level %q (want debug, info, warn, or error)", c.Log.Level)
	}
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" || value == "0" {
		return 0, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("%s: must not be negative, got %s", field, value)
	}
	return parsed, nil
}
