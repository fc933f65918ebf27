// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package profile provides named supervision profiles for the procio
// command. Profiles bundle the per-stream redirection dispositions —
// what to do with the child's stdout, stderr, and stdin, whether to
// capture, whether to forward — under a memorable name, so diagnostic
// setups can be selected with --profile instead of a pile of flags.
//
// Profiles are authored as JSONC (JSON extended with // line comments,
// /* block comments */, and trailing commas). A built-in set covers
// the standard diagnostic setups; a profiles file extends or shadows
// them.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/procio/supervise"
)

// Profile is one named supervision setup.
type Profile struct {
	// Description explains when to use the profile. Shown by lookup
	// errors and help output.
	Description string `json:"description,omitempty"`

	// Stdout and Stderr are redirection mode names (inherit, null,
	// piped, piped-drained).
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`

	// Stdin is "inherit" (default) or "null".
	Stdin string `json:"stdin,omitempty"`

	// Capture retains drained bytes on the outcome.
	Capture bool `json:"capture,omitempty"`

	// Forward copies drained bytes to the parent's own streams.
	Forward bool `json:"forward,omitempty"`

	// Timeout bounds the run, as a Go duration string. Empty means
	// the invocation's own default applies.
	Timeout string `json:"timeout,omitempty"`

	// GracePeriod is the SIGTERM→SIGKILL escalation window.
	GracePeriod string `json:"grace_period,omitempty"`
}

// File is a parsed profiles file: a name → profile map.
type File struct {
	Profiles map[string]Profile `json:"profiles"`
}

// builtinJSONC is the built-in profile set. Authored in the same JSONC
// format as user files so there is exactly one schema.
const builtinJSONC = `{
  "profiles": {
    // The safe default for running a noisy child: drained pipes,
    // output passed through to the parent's own streams.
    "relay": {
      "description": "drain both streams and forward them to the parent",
      "stdout": "piped-drained",
      "stderr": "piped-drained",
      "forward": true,
    },

    // Full capture for programmatic inspection; nothing is printed.
    "capture": {
      "description": "drain and capture both streams without forwarding",
      "stdout": "piped-drained",
      "stderr": "piped-drained",
      "capture": true,
      "stdin": "null",
    },

    // Discard everything; only the exit code matters.
    "silent": {
      "description": "discard both streams via the null device",
      "stdout": "null",
      "stderr": "null",
      "stdin": "null",
    },

    // The deliberate misuse case: pipes nobody reads. A child writing
    // more than the pipe capacity will hang until the timeout kill.
    "repro-hang": {
      "description": "undrained pipes reproducing the pipe-buffer hang",
      "stdout": "piped",
      "stderr": "piped",
      "stdin": "null",
      "timeout": "30s",
    },
  },
}`

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals and validates the result.
func Parse(data []byte) (*File, error) {
	stripped := jsonc.ToJSON(data)

	var file File
	if err := json.Unmarshal(stripped, &file); err != nil {
		return nil, fmt.Errorf("parsing profiles: %w", err)
	}
	for name, prof := range file.Profiles {
		if err := prof.Validate(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", name, err)
		}
	}
	return &file, nil
}

// ReadFile reads and parses a JSONC profiles file from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles %s: %w", path, err)
	}
	file, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Builtin returns the built-in profile set.
func Builtin() *File {
	file, err := Parse([]byte(builtinJSONC))
	if err != nil {
		// The built-in source is a compile-time constant; failing to
		// parse it is a programming error, not a runtime condition.
		panic(fmt.Sprintf("built-in profiles invalid: %v", err))
	}
	return file
}

// Lookup finds a profile by name, checking file (when non-nil) before
// the built-ins so user files can shadow built-in names. The error for
// an unknown name lists everything available.
func Lookup(file *File, name string) (Profile, error) {
	if file != nil {
		if prof, ok := file.Profiles[name]; ok {
			return prof, nil
		}
	}
	builtin := Builtin()
	if prof, ok := builtin.Profiles[name]; ok {
		return prof, nil
	}

	available := make([]string, 0, len(builtin.Profiles))
	for profileName := range builtin.Profiles {
		available = append(available, profileName)
	}
	if file != nil {
		for profileName := range file.Profiles {
			available = append(available, profileName)
		}
	}
	sort.Strings(available)
	return Profile{}, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(available, ", "))
}

// Validate checks the mode names and durations once at parse time.
func (p Profile) Validate() error {
	if _, err := supervise.ParseMode(p.Stdout); err != nil {
		return fmt.Errorf("stdout: %w", err)
	}
	if _, err := supervise.ParseMode(p.Stderr); err != nil {
		return fmt.Errorf("stderr: %w", err)
	}
	switch p.Stdin {
	case "", "inherit", "null":
	default:
		return fmt.Errorf("stdin: unknown policy %q (want inherit or null)", p.Stdin)
	}
	for field, value := range map[string]string{"timeout": p.Timeout, "grace_period": p.GracePeriod} {
		if value == "" {
			continue
		}
		if parsed, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		} else if parsed < 0 {
			return fmt.Errorf("%s: must not be negative, got %s", field, value)
		}
	}
	return nil
}

// Modes returns the parsed stream modes and stdin policy. Validate
// must have accepted the profile first (Parse guarantees this).
func (p Profile) Modes() (stdout, stderr supervise.Mode, stdin supervise.StdinPolicy, err error) {
	stdout, err = supervise.ParseMode(p.Stdout)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("stdout: %w", err)
	}
	stderr, err = supervise.ParseMode(p.Stderr)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("stderr: %w", err)
	}
	stdin = supervise.StdinInherit
	if p.Stdin == "null" {
		stdin = supervise.StdinNull
	}
	return stdout, stderr, stdin, nil
}
