// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package supervise

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/bureau-foundation/procio/capture"
)

// StreamConfig is the per-stream supervision policy.
type StreamConfig struct {
	// Mode is the redirection mode for the stream.
	Mode Mode

	// Forward, when non-nil and Mode is ModePipedDrained, receives a
	// copy of every drained chunk (typically the parent's own stream).
	// A forward write failure stops forwarding but never stops
	// draining.
	Forward io.Writer

	// Capture retains the drained bytes on the outcome. Only
	// meaningful for ModePipedDrained.
	Capture bool
}

// Config holds configuration for creating a Supervisor.
type Config struct {
	// Stdout and Stderr are the per-stream policies.
	Stdout StreamConfig
	Stderr StreamConfig

	// Stdin selects the child's standard input source.
	Stdin StdinPolicy

	// Timeout bounds the whole run. When it elapses the child's
	// process group is terminated and drain workers observe
	// end-of-stream from the forced close. Zero means no bound —
	// faithful to the hang being demonstrated in ModePiped.
	Timeout time.Duration

	// GracePeriod is the SIGTERM→SIGKILL escalation window applied
	// when the run is canceled or times out. Zero kills immediately.
	GracePeriod time.Duration

	// MemoryLimit is the per-stream captured-byte count held in memory
	// before spilling to a zstd spool file. Zero uses
	// capture.DefaultMemoryLimit; negative means unlimited (never
	// spool).
	MemoryLimit int

	// SpoolDir is where spool files are created (empty: os.TempDir).
	SpoolDir string

	// TailSize is the per-stream tail ring capacity in bytes. Zero
	// uses capture.DefaultTailSize.
	TailSize int

	// ForwardSignals relays SIGINT, SIGTERM, SIGHUP, and SIGQUIT to
	// the child's process group while a run is in flight. Meant for
	// the command-line driver; library callers usually cancel ctx
	// instead.
	ForwardSignals bool

	// Logger for supervision events. Defaults to slog.Default().
	Logger *slog.Logger
}

// Supervisor runs one child process per Run call, synchronously
// supervised: spawn, drain, wait, report. A Supervisor is stateless
// across runs and safe for concurrent use.
type Supervisor struct {
	config Config
	logger *slog.Logger
}

// New creates a Supervisor. The configuration is validated once here
// so Run can assume well-formed modes.
func New(config Config) (*Supervisor, error) {
	for _, stream := range []StreamConfig{config.Stdout, config.Stderr} {
		if stream.Mode < ModeInherit || stream.Mode > ModePipedDrained {
			return nil, fmt.Errorf("invalid redirection mode %d", int(stream.Mode))
		}
	}
	if config.Stdin != StdinInherit && config.Stdin != StdinNull {
		return nil, fmt.Errorf("invalid stdin policy %d", int(config.Stdin))
	}
	if config.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative, got %s", config.Timeout)
	}
	if config.GracePeriod < 0 {
		return nil, fmt.Errorf("grace period must not be negative, got %s", config.GracePeriod)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Supervisor{config: config, logger: logger}, nil
}

// boundDrain pairs a running drain task with the stream outcome it
// reports into at join time.
type boundDrain struct {
	task   *drainTask
	result *StreamOutcome
}

// Run spawns command and supervises it to completion: resolve stream
// destinations, attach drain workers (strictly before the child can
// write), spawn, wait, join every drain, report.
//
// The child's own exit code — zero or not — is reported on the Outcome
// with a nil error. A non-nil error means supervision itself failed
// (SpawnError, ResourceError, WaitError) or the run was cut short by
// ctx / Config.Timeout; the Outcome is still returned when the child
// was spawned, since whatever was drained before the termination is
// valid data.
func (s *Supervisor) Run(ctx context.Context, command []string) (*Outcome, error) {
	if len(command) == 0 {
		return nil, &SpawnError{Command: "", Err: errors.New("empty command")}
	}

	startTime := time.Now()
	state := stateNotStarted
	advance := func(next runState) {
		s.logger.Debug("run state", "from", state.String(), "to", next.String())
		state = next
	}

	runCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	advance(stateSpawning)

	stdoutSink, err := resolveSink(s.config.Stdout.Mode, Stdout)
	if err != nil {
		return nil, err
	}
	stderrSink, err := resolveSink(s.config.Stderr.Mode, Stderr)
	if err != nil {
		stdoutSink.closeChild()
		stdoutSink.closeReader()
		return nil, err
	}

	cmd := exec.CommandContext(runCtx, command[0], command[1:]...)
	cmd.Stdout = stdoutSink.childFile()
	cmd.Stderr = stderrSink.childFile()
	if s.config.Stdin == StdinInherit {
		cmd.Stdin = os.Stdin
	}
	// StdinNull: leaving cmd.Stdin nil connects the null device.

	configureTermination(cmd, s.config.GracePeriod)

	outcome := &Outcome{
		Stdout: StreamOutcome{Kind: Stdout, Mode: s.config.Stdout.Mode},
		Stderr: StreamOutcome{Kind: Stderr, Mode: s.config.Stderr.Mode},
	}

	// Record the kernel pipe capacity from the first pipe-backed
	// stream. Diagnostic only: this is the buffer size a blocked
	// writer fills in ModePiped.
	for _, resolved := range []*sink{stdoutSink, stderrSink} {
		if resolved.reader == nil {
			continue
		}
		if capacity, capErr := pipeCapacity(resolved.reader); capErr == nil {
			outcome.PipeCapacity = capacity
		} else {
			s.logger.Debug("pipe capacity query failed", "error", capErr)
		}
		break
	}

	// Attach drain workers before the child exists. The pipes are
	// already live, so each worker is blocked in read(2) by the time
	// the child performs its first write — there is no window in which
	// the kernel buffer can fill without a reader. This ordering is
	// the core correctness property of the whole package.
	var drains []boundDrain
	for _, binding := range []struct {
		stream StreamConfig
		sink   *sink
		result *StreamOutcome
	}{
		{s.config.Stdout, stdoutSink, &outcome.Stdout},
		{s.config.Stderr, stderrSink, &outcome.Stderr},
	} {
		if binding.sink.mode != ModePipedDrained {
			continue
		}
		var buffer *capture.Buffer
		if binding.stream.Capture {
			buffer = capture.NewBuffer(s.memoryLimit(), s.config.SpoolDir)
			binding.result.buffer = buffer
		}
		task := newDrainTask(binding.sink.kind, binding.sink.reader, s.tailSize(), buffer, binding.stream.Forward, s.logger)
		binding.sink.reader = nil // ownership transferred to the task
		task.start()
		drains = append(drains, boundDrain{task: task, result: binding.result})
	}

	if err := cmd.Start(); err != nil {
		advance(stateSpawnFailed)
		// Closing the write ends delivers end-of-stream to any drain
		// workers already attached; join them so nothing dangles.
		stdoutSink.closeChild()
		stderrSink.closeChild()
		for _, bound := range drains {
			bound.task.join()
		}
		stdoutSink.closeReader()
		stderrSink.closeReader()
		return nil, &SpawnError{Command: command[0], Err: err}
	}

	advance(stateRunning)
	if s.config.ForwardSignals {
		stopForwarding := forwardSignals(cmd.Process.Pid, s.logger)
		defer stopForwarding()
	}
	s.logger.Debug("child started",
		"pid", cmd.Process.Pid,
		"command", command[0],
		"stdout_mode", s.config.Stdout.Mode.String(),
		"stderr_mode", s.config.Stderr.Mode.String(),
		"pipe_capacity", outcome.PipeCapacity,
	)

	// The parent's copies of the child-side descriptors must close
	// now. For pipes this is what lets drain workers observe
	// end-of-stream when the child exits; for the null device it is
	// plain hygiene.
	stdoutSink.closeChild()
	stderrSink.closeChild()

	if len(drains) > 0 {
		advance(stateDraining)
	}

	waitErr := cmd.Wait()
	advance(stateExited)

	// Join every drain worker: the run is not complete until each has
	// observed end-of-stream, however the child exited.
	for _, bound := range drains {
		bound.task.join()
		bound.result.Drained = true
		bound.result.Total = bound.task.tail.Total()
		bound.result.Tail = bound.task.tail.Tail()
		bound.result.ReadErr = bound.task.readErr
		if bound.result.buffer != nil {
			bound.result.Digest = bound.result.buffer.Digest()
		}
	}

	// Undrained pipe read ends (ModePiped) are released only now, after
	// wait: holding them open for the child's lifetime is what makes
	// the reproduced hang observable rather than a broken pipe.
	stdoutSink.closeReader()
	stderrSink.closeReader()

	advance(stateJoined)
	outcome.Duration = time.Since(startTime)

	return outcome, s.interpretWait(runCtx, cmd, waitErr, outcome)
}

// interpretWait translates cmd.Wait's result into the outcome's exit
// code and the run's error.
func (s *Supervisor) interpretWait(runCtx context.Context, cmd *exec.Cmd, waitErr error, outcome *Outcome) error {
	if waitErr == nil {
		outcome.ExitCode = 0
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		outcome.ExitCode = exitErr.ExitCode()
		if ctxErr := runCtx.Err(); ctxErr != nil {
			// The supervisor killed the process group; the exit status
			// reflects our signal, not the child's own will.
			return fmt.Errorf("child process group terminated: %w", ctxErr)
		}
		// The child's own exit code, zero or not, is data — not a
		// supervision failure.
		return nil
	}

	outcome.ExitCode = -1
	if ctxErr := runCtx.Err(); ctxErr != nil {
		return fmt.Errorf("child process group terminated: %w", ctxErr)
	}
	return &WaitError{Err: waitErr}
}

// memoryLimit resolves Config.MemoryLimit to the capture.NewBuffer
// convention (0 = unlimited).
func (s *Supervisor) memoryLimit() int {
	if s.config.MemoryLimit == 0 {
		return capture.DefaultMemoryLimit
	}
	if s.config.MemoryLimit < 0 {
		return 0
	}
	return s.config.MemoryLimit
}

func (s *Supervisor) tailSize() int {
	if s.config.TailSize <= 0 {
		return capture.DefaultTailSize
	}
	return s.config.TailSize
}
