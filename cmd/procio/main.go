// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// procio runs a child command under stream supervision. It decides,
// before the child spawns, what happens to the child's stdout and
// stderr — inherit the parent's descriptors, discard via the null
// device, or attach pipes — and for piped streams it guarantees a
// drain worker is reading before the first child write, so a child
// that outruns the kernel pipe buffer can never block.
//
// Usage:
//
//	procio [flags] -- <command> [args...]
//
// The redirection mode comes from --with, a named --profile, or the
// config file's defaults, in that order of precedence. Exit codes:
// the child's own exit code on a normal run, 126 when the child could
// not be spawned, 125 for any other supervision failure.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/procio/lib/config"
	"github.com/bureau-foundation/procio/lib/process"
	"github.com/bureau-foundation/procio/lib/version"
	"github.com/bureau-foundation/procio/supervise"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	inv, flagSet, err := parseInvocation(args)
	if err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return 0
		}
		return process.Fail(err)
	}
	if inv.showVersion {
		version.Print("procio")
		return 0
	}
	if len(inv.command) == 0 {
		printHelp(flagSet)
		return process.Fail(fmt.Errorf("no command given"))
	}

	cfg, err := config.Resolve(inv.configPath)
	if err != nil {
		return process.Fail(err)
	}

	logger, err := newLogger(cfg, inv.quiet)
	if err != nil {
		return process.Fail(err)
	}

	plan, err := buildPlan(inv, flagSet.Changed, cfg)
	if err != nil {
		return process.Fail(err)
	}
	plan.supervisor.Logger = logger

	// The child runs in its own process group, so terminal signals
	// never reach it directly; the supervisor relays them and reports
	// however the child chose to die.
	plan.supervisor.ForwardSignals = true

	supervisor, err := supervise.New(plan.supervisor)
	if err != nil {
		return process.Fail(err)
	}

	outcome, err := supervisor.Run(context.Background(), inv.command)
	if outcome != nil {
		defer outcome.Close()
	}
	if err != nil {
		return process.Fail(err)
	}

	if !inv.quiet {
		logSummary(logger, inv.command, outcome)
	}
	return outcome.ExitCode
}

// newLogger builds the structured logger from the config's log
// section. Format "auto" picks the text handler when stderr is a
// terminal and JSON otherwise; --quiet raises the level to warn so
// only problems are reported.
func newLogger(cfg config.Config, quiet bool) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	if quiet && level < slog.LevelWarn {
		level = slog.LevelWarn
	}

	format := cfg.Log.Format
	if format == "" || format == "auto" {
		if term.IsTerminal(int(os.Stderr.Fd())) {
			format = "text"
		} else {
			format = "json"
		}
	}

	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, options)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, options)
	default:
		return nil, fmt.Errorf("unknown log format %q (want auto, json, or text)", format)
	}
	return slog.New(handler), nil
}

func logSummary(logger *slog.Logger, command []string, outcome *supervise.Outcome) {
	attrs := []any{
		"command", strings.Join(command, " "),
		"exit_code", outcome.ExitCode,
		"duration", outcome.Duration,
	}
	for _, stream := range []*supervise.StreamOutcome{&outcome.Stdout, &outcome.Stderr} {
		if !stream.Drained {
			continue
		}
		name := stream.Kind.String()
		attrs = append(attrs, name+"_bytes", stream.Total)
		if stream.Digest != "" {
			attrs = append(attrs, name+"_digest", stream.Digest)
		}
		if stream.ReadErr != nil {
			attrs = append(attrs, name+"_read_error", stream.ReadErr.Error())
		}
	}
	logger.Info("child exited", attrs...)
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `procio — run a command with its output streams supervised.

procio decides what happens to the child's stdout and stderr before
the child spawns. Piped-drained streams get a dedicated drain worker
attached before the first child write, so the child can never block
on a full kernel pipe buffer.

Usage:
  procio [flags] -- <command> [args...]

Modes (for --with):
  inherit        child writes straight to the parent's descriptors
  null           child output goes to the null device
  piped          pipes with no reader (reproduces the pipe-buffer hang)
  piped-drained  pipes serviced by drain workers (the safe default
                 for noisy children)

Flags:
%s
Configuration is read from --config, then $%s, then
built-in defaults. Profiles ship built in (relay, capture, silent,
repro-hang) and can be extended with --profiles-file.
`, flagSet.FlagUsages(), config.EnvVariable)
}
