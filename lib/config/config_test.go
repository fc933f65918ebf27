// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "procio.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	if err := Default().Validate(); err != nil {
		t.Errorf("built-in default config invalid: %v", err)
	}
}

func TestLoadFullConfig(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
defaults:
  with: piped-drained
  timeout: 2m
  grace_period: 10s
  memory_limit: 1048576
  spool_dir: /tmp/procio
  tail_size: 4096
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Defaults.With != "piped-drained" {
		t.Errorf("with: got %q", cfg.Defaults.With)
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil || timeout != 2*time.Minute {
		t.Errorf("timeout: got %v, %v; want 2m", timeout, err)
	}
	grace, err := cfg.GraceDuration()
	if err != nil || grace != 10*time.Second {
		t.Errorf("grace: got %v, %v; want 10s", grace, err)
	}
	level, err := cfg.LogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("level: got %v, %v; want debug", level, err)
	}
	if cfg.Defaults.MemoryLimit != 1048576 {
		t.Errorf("memory_limit: got %d", cfg.Defaults.MemoryLimit)
	}
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "log:\n  level: warn\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Untouched sections keep the built-in defaults.
	if cfg.Defaults.With != "inherit" {
		t.Errorf("with: got %q, want inherit default", cfg.Defaults.With)
	}
	if cfg.Defaults.GracePeriod != "5s" {
		t.Errorf("grace_period: got %q, want 5s default", cfg.Defaults.GracePeriod)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		content string
		wantIn  string
	}{
		{"bad mode", "defaults:\n  with: sideways\n", "defaults.with"},
		{"bad timeout", "defaults:\n  timeout: soon\n", "defaults.timeout"},
		{"negative grace", "defaults:\n  grace_period: -3s\n", "defaults.grace_period"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"unknown field", "defaults:\n  wth: inherit\n", "wth"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tc.content))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tc.wantIn) {
				t.Errorf("error %q does not mention %q", err, tc.wantIn)
			}
		})
	}
}

func TestResolvePrecedence(t *testing.T) {
	explicit := writeConfig(t, "log:\n  level: error\n")
	fromEnv := writeConfig(t, "log:\n  level: debug\n")
	t.Setenv(EnvVariable, fromEnv)

	// Explicit path wins over the environment.
	cfg, err := Resolve(explicit)
	if err != nil {
		t.Fatalf("Resolve(explicit): %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("explicit config not used: level %q", cfg.Log.Level)
	}

	// Without an explicit path, the environment applies.
	cfg, err = Resolve("")
	if err != nil {
		t.Fatalf("Resolve(env): %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("env config not used: level %q", cfg.Log.Level)
	}

	// With neither, built-in defaults and no disk access.
	t.Setenv(EnvVariable, "")
	cfg, err = Resolve("")
	if err != nil {
		t.Fatalf("Resolve(defaults): %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default config not used: level %q", cfg.Log.Level)
	}
}

func TestResolveMissingFileFails(t *testing.T) {
	t.Parallel()
	if _, err := Resolve("/nonexistent/procio.yaml"); err == nil {
		t.Fatal("Resolve of missing file succeeded")
	}
}
