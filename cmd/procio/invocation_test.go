// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/procio/lib/config"
	"github.com/bureau-foundation/procio/supervise"
)

// parsePlan runs the full parse-then-resolve path against the default
// config, the way run() does.
func parsePlan(t *testing.T, args ...string) (*plan, error) {
	t.Helper()
	inv, flagSet, err := parseInvocation(args)
	if err != nil {
		t.Fatalf("parseInvocation(%q): %v", args, err)
	}
	return buildPlan(inv, flagSet.Changed, config.Default())
}

func TestParseStopsAtCommand(t *testing.T) {
	t.Parallel()
	inv, _, err := parseInvocation([]string{"--with", "null", "grep", "-q", "pattern"})
	if err != nil {
		t.Fatalf("parseInvocation: %v", err)
	}
	want := []string{"grep", "-q", "pattern"}
	if len(inv.command) != len(want) {
		t.Fatalf("command = %q, want %q", inv.command, want)
	}
	for i := range want {
		if inv.command[i] != want[i] {
			t.Errorf("command[%d] = %q, want %q", i, inv.command[i], want[i])
		}
	}
	if inv.withMode != "null" {
		t.Errorf("withMode = %q, want null", inv.withMode)
	}
}

func TestParseDashDashSeparator(t *testing.T) {
	t.Parallel()
	inv, _, err := parseInvocation([]string{"-w", "piped-drained", "--", "sh", "-c", "true"})
	if err != nil {
		t.Fatalf("parseInvocation: %v", err)
	}
	if len(inv.command) != 3 || inv.command[0] != "sh" {
		t.Errorf("command = %q, want [sh -c true]", inv.command)
	}
}

func TestWithFlagSetsBothStreams(t *testing.T) {
	t.Parallel()
	plan, err := parsePlan(t, "--with", "piped-drained", "--", "true")
	if err != nil {
		t.Fatalf("buildPlan: %v", err)
	}
	if plan.supervisor.Stdout.Mode != supervise.ModePipedDrained {
		t.Errorf("stdout mode = %v, want piped-drained", plan.supervisor.Stdout.Mode)
	}
	if plan.supervisor.Stderr.Mode != supervise.ModePipedDrained {
		t.Errorf("stderr mode = %v, want piped-drained", plan.supervisor.Stderr.Mode)
	}
	if plan.supervisor.Stdout.Forward != os.Stdout {
		t.Error("drained stdout via --with should forward to the parent's stdout")
	}
	if plan.supervisor.Stderr.Forward != os.Stderr {
		t.Error("drained stderr via --with should forward to the parent's stderr")
	}
	if plan.supervisor.Stdout.Capture {
		t.Error("capture should be off without --capture")
	}
}

func TestConfigDefaultModeApplies(t *testing.T) {
	t.Parallel()
	plan, err := parsePlan(t, "--", "true")
	if err != nil {
		t.Fatalf("buildPlan: %v", err)
	}
	if plan.supervisor.Stdout.Mode != supervise.ModeInherit {
		t.Errorf("stdout mode = %v, want the config default inherit", plan.supervisor.Stdout.Mode)
	}
	if plan.supervisor.Stdout.Forward != nil {
		t.Error("inherit mode must not set a forward writer")
	}
	if plan.supervisor.GracePeriod != 5*time.Second {
		t.Errorf("grace period = %v, want the config default 5s", plan.supervisor.GracePeriod)
	}
}

func TestProfileResolvesModes(t *testing.T) {
	t.Parallel()
	plan, err := parsePlan(t, "--profile", "capture", "--", "true")
	if err != nil {
		t.Fatalf("buildPlan: %v", err)
	}
	if plan.supervisor.Stdout.Mode != supervise.ModePipedDrained {
		t.Errorf("stdout mode = %v, want piped-drained", plan.supervisor.Stdout.Mode)
	}
	if !plan.supervisor.Stdout.Capture {
		t.Error("capture profile should enable capture")
	}
	if plan.supervisor.Stdout.Forward != nil {
		t.Error("capture profile does not forward")
	}
	if plan.supervisor.Stdin != supervise.StdinNull {
		t.Errorf("stdin = %v, want null", plan.supervisor.Stdin)
	}
}

func TestFlagOverridesProfile(t *testing.T) {
	t.Parallel()
	plan, err := parsePlan(t, "--profile", "repro-hang", "--with", "null", "--timeout", "1s", "--", "true")
	if err != nil {
		t.Fatalf("buildPlan: %v", err)
	}
	if plan.supervisor.Stdout.Mode != supervise.ModeNull {
		t.Errorf("stdout mode = %v, want null (flag over profile)", plan.supervisor.Stdout.Mode)
	}
	if plan.supervisor.Timeout != time.Second {
		t.Errorf("timeout = %v, want 1s (flag over profile)", plan.supervisor.Timeout)
	}
}

func TestProfileTimeoutApplies(t *testing.T) {
	t.Parallel()
	plan, err := parsePlan(t, "--profile", "repro-hang", "--", "true")
	if err != nil {
		t.Fatalf("buildPlan: %v", err)
	}
	if plan.supervisor.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want the profile's 30s", plan.supervisor.Timeout)
	}
}

func TestProfilesFileExtendsBuiltins(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.jsonc")
	const src = `{
		"profiles": {
			"stderr-only": {
				"stdout": "null",
				"stderr": "piped-drained",
				"forward": true,
			},
		},
	}`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	plan, err := parsePlan(t, "--profiles-file", path, "--profile", "stderr-only", "--", "true")
	if err != nil {
		t.Fatalf("buildPlan: %v", err)
	}
	if plan.supervisor.Stdout.Mode != supervise.ModeNull {
		t.Errorf("stdout mode = %v, want null", plan.supervisor.Stdout.Mode)
	}
	if plan.supervisor.Stderr.Forward != os.Stderr {
		t.Error("stderr should forward to the parent's stderr")
	}
	if plan.supervisor.Stdout.Forward != nil {
		t.Error("null stdout must not forward")
	}
}

func TestBuildPlanErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"unknown with mode", []string{"--with", "tee", "--", "true"}, "--with"},
		{"unknown profile", []string{"--profile", "nope", "--", "true"}, "unknown profile"},
		{"profiles file without profile", []string{"--profiles-file", "/nonexistent", "--", "true"}, "--profile"},
		{"bad timeout", []string{"--timeout", "soon", "--", "true"}, "--timeout"},
		{"negative grace", []string{"--grace-period", "-1s", "--", "true"}, "--grace-period"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := parsePlan(t, tc.args...)
			if err == nil {
				t.Fatalf("buildPlan(%q) accepted invalid input", tc.args)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}
