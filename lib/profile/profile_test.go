// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/procio/supervise"
)

func TestBuiltinProfilesAreValid(t *testing.T) {
	t.Parallel()
	file := Builtin()
	for _, name := range []string{"relay", "capture", "silent", "repro-hang"} {
		if _, ok := file.Profiles[name]; !ok {
			t.Errorf("built-in profile %q missing", name)
		}
	}
	for name, prof := range file.Profiles {
		if err := prof.Validate(); err != nil {
			t.Errorf("built-in profile %q invalid: %v", name, err)
		}
	}
}

func TestParseAcceptsJSONC(t *testing.T) {
	t.Parallel()
	const src = `{
		// Comments and trailing commas are fine.
		"profiles": {
			"build": {
				"stdout": "piped-drained",
				"stderr": "piped-drained",
				"capture": true,
				"timeout": "2m", /* CI budget */
			},
		},
	}`
	file, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	prof, ok := file.Profiles["build"]
	if !ok {
		t.Fatal("profile build missing after parse")
	}
	if !prof.Capture {
		t.Error("capture flag not parsed")
	}
	if prof.Timeout != "2m" {
		t.Errorf("timeout = %q, want 2m", prof.Timeout)
	}
}

func TestParseRejectsInvalidProfiles(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unknown stdout mode",
			src:  `{"profiles": {"p": {"stdout": "tee", "stderr": "null"}}}`,
			want: "stdout",
		},
		{
			name: "unknown stdin policy",
			src:  `{"profiles": {"p": {"stdout": "null", "stderr": "null", "stdin": "closed"}}}`,
			want: "stdin",
		},
		{
			name: "malformed timeout",
			src:  `{"profiles": {"p": {"stdout": "null", "stderr": "null", "timeout": "soon"}}}`,
			want: "timeout",
		},
		{
			name: "negative grace period",
			src:  `{"profiles": {"p": {"stdout": "null", "stderr": "null", "grace_period": "-1s"}}}`,
			want: "grace_period",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tc.src))
			if err == nil {
				t.Fatal("Parse accepted invalid profile")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLookupPrefersFileOverBuiltin(t *testing.T) {
	t.Parallel()
	file := &File{Profiles: map[string]Profile{
		"silent": {Stdout: "piped-drained", Stderr: "piped-drained", Capture: true},
	}}
	prof, err := Lookup(file, "silent")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !prof.Capture {
		t.Error("file profile did not shadow the built-in")
	}
}

func TestLookupFallsBackToBuiltin(t *testing.T) {
	t.Parallel()
	prof, err := Lookup(&File{Profiles: map[string]Profile{}}, "relay")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !prof.Forward {
		t.Error("built-in relay profile should forward")
	}
}

func TestLookupUnknownListsAvailable(t *testing.T) {
	t.Parallel()
	_, err := Lookup(nil, "nope")
	if err == nil {
		t.Fatal("Lookup accepted an unknown name")
	}
	if !strings.Contains(err.Error(), "relay") {
		t.Errorf("error %q does not list the built-in names", err)
	}
}

func TestModes(t *testing.T) {
	t.Parallel()
	prof := Profile{Stdout: "piped-drained", Stderr: "inherit", Stdin: "null"}
	stdout, stderr, stdin, err := prof.Modes()
	if err != nil {
		t.Fatalf("Modes: %v", err)
	}
	if stdout != supervise.ModePipedDrained {
		t.Errorf("stdout = %v, want piped-drained", stdout)
	}
	if stderr != supervise.ModeInherit {
		t.Errorf("stderr = %v, want inherit", stderr)
	}
	if stdin != supervise.StdinNull {
		t.Errorf("stdin = %v, want null", stdin)
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.jsonc")
	const src = `{
		"profiles": {
			"quiet-check": {
				"stdout": "null",
				"stderr": "piped-drained",
				"forward": true, // stderr only
			},
		},
	}`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	file, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if _, ok := file.Profiles["quiet-check"]; !ok {
		t.Error("quiet-check profile missing")
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.jsonc")); err == nil {
		t.Error("ReadFile accepted a missing file")
	}
}
