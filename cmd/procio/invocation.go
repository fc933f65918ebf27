// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/procio/lib/config"
	"github.com/bureau-foundation/procio/lib/profile"
	"github.com/bureau-foundation/procio/supervise"
)

// invocation is the parsed command line.
type invocation struct {
	withMode     string
	profileName  string
	profilesPath string
	configPath   string
	timeout      string
	gracePeriod  string
	capture      bool
	quiet        bool
	showVersion  bool
	command      []string
}

// parseInvocation parses args into an invocation. The returned FlagSet
// is needed by callers to distinguish flags the user actually passed
// (FlagSet.Changed) from defaults, and to render help.
func parseInvocation(args []string) (*invocation, *pflag.FlagSet, error) {
	inv := &invocation{}
	flagSet := pflag.NewFlagSet("procio", pflag.ContinueOnError)

	// Stop at the first non-flag argument so the child's own flags
	// are never parsed as procio's.
	flagSet.SetInterspersed(false)

	flagSet.StringVarP(&inv.withMode, "with", "w", "", "redirection mode for both output streams (inherit, null, piped, piped-drained)")
	flagSet.StringVar(&inv.profileName, "profile", "", "named supervision profile")
	flagSet.StringVar(&inv.profilesPath, "profiles-file", "", "JSONC file of additional profiles")
	flagSet.StringVar(&inv.configPath, "config", "", "path to the procio config file")
	flagSet.StringVar(&inv.timeout, "timeout", "", "kill the child's process group after this duration (0 = unbounded)")
	flagSet.StringVar(&inv.gracePeriod, "grace-period", "", "SIGTERM to SIGKILL escalation window")
	flagSet.BoolVar(&inv.capture, "capture", false, "retain drained output for the exit summary digest")
	flagSet.BoolVarP(&inv.quiet, "quiet", "q", false, "suppress the exit summary line")
	flagSet.BoolVar(&inv.showVersion, "version", false, "print version and exit")

	if err := flagSet.Parse(args); err != nil {
		return nil, flagSet, err
	}
	inv.command = flagSet.Args()
	return inv, flagSet, nil
}

// plan is an invocation resolved against the profile set and the
// config file, ready to hand to the supervisor.
type plan struct {
	supervisor supervise.Config
}

// buildPlan resolves the effective supervision config. Precedence per
// setting: explicit flag, then profile, then config file defaults.
// changed reports whether a named flag was passed explicitly.
func buildPlan(inv *invocation, changed func(string) bool, cfg config.Config) (*plan, error) {
	var prof *profile.Profile
	if inv.profileName != "" {
		var file *profile.File
		if inv.profilesPath != "" {
			loaded, err := profile.ReadFile(inv.profilesPath)
			if err != nil {
				return nil, err
			}
			file = loaded
		}
		found, err := profile.Lookup(file, inv.profileName)
		if err != nil {
			return nil, err
		}
		prof = &found
	} else if inv.profilesPath != "" {
		return nil, fmt.Errorf("--profiles-file given without --profile")
	}

	supConfig := supervise.Config{
		MemoryLimit: cfg.Defaults.MemoryLimit,
		SpoolDir:    cfg.Defaults.SpoolDir,
		TailSize:    cfg.Defaults.TailSize,
	}

	// Stream modes and stdin.
	stdout, stderr, stdin, err := resolveModes(inv, changed, prof, cfg)
	if err != nil {
		return nil, err
	}
	supConfig.Stdout.Mode = stdout
	supConfig.Stderr.Mode = stderr
	supConfig.Stdin = stdin

	// Capture and forwarding. Mode selection via --with forwards
	// drained output to the parent's streams, matching what inherit
	// shows the user; profiles state forwarding explicitly.
	captureStreams := inv.capture
	forward := stdout == supervise.ModePipedDrained || stderr == supervise.ModePipedDrained
	if prof != nil {
		forward = prof.Forward
		if !changed("capture") {
			captureStreams = prof.Capture
		}
	}
	if supConfig.Stdout.Mode == supervise.ModePipedDrained {
		supConfig.Stdout.Capture = captureStreams
		if forward {
			supConfig.Stdout.Forward = os.Stdout
		}
	}
	if supConfig.Stderr.Mode == supervise.ModePipedDrained {
		supConfig.Stderr.Capture = captureStreams
		if forward {
			supConfig.Stderr.Forward = os.Stderr
		}
	}

	// Timeout and grace period.
	supConfig.Timeout, err = resolveDuration("timeout", inv.timeout, profileField(prof, func(p *profile.Profile) string { return p.Timeout }), cfg.TimeoutDuration)
	if err != nil {
		return nil, err
	}
	supConfig.GracePeriod, err = resolveDuration("grace-period", inv.gracePeriod, profileField(prof, func(p *profile.Profile) string { return p.GracePeriod }), cfg.GraceDuration)
	if err != nil {
		return nil, err
	}

	return &plan{supervisor: supConfig}, nil
}

func resolveModes(inv *invocation, changed func(string) bool, prof *profile.Profile, cfg config.Config) (stdout, stderr supervise.Mode, stdin supervise.StdinPolicy, err error) {
	switch {
	case changed("with"):
		mode, parseErr := supervise.ParseMode(inv.withMode)
		if parseErr != nil {
			return 0, 0, 0, fmt.Errorf("--with: %w", parseErr)
		}
		return mode, mode, supervise.StdinInherit, nil
	case prof != nil:
		return prof.Modes()
	default:
		mode, parseErr := supervise.ParseMode(cfg.Defaults.With)
		if parseErr != nil {
			return 0, 0, 0, fmt.Errorf("config defaults.with: %w", parseErr)
		}
		return mode, mode, supervise.StdinInherit, nil
	}
}

// resolveDuration picks the first non-empty source: the flag value,
// the profile value, then the config accessor.
func resolveDuration(flag, flagValue, profileValue string, fromConfig func() (time.Duration, error)) (time.Duration, error) {
	if flagValue != "" {
		parsed, err := time.ParseDuration(flagValue)
		if err != nil {
			return 0, fmt.Errorf("--%s: %w", flag, err)
		}
		if parsed < 0 {
			return 0, fmt.Errorf("--%s: must not be negative, got %s", flag, flagValue)
		}
		return parsed, nil
	}
	if profileValue != "" {
		// Validated at profile parse time.
		return time.ParseDuration(profileValue)
	}
	return fromConfig()
}

func profileField(prof *profile.Profile, get func(*profile.Profile) string) string {
	if prof == nil {
		return ""
	}
	return get(prof)
}
