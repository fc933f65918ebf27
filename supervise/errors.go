// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package supervise

import "fmt"

// SpawnError reports that the child process could not be created at
// all: executable missing, permission denied, or the OS refusing the
// fork/exec. Spawn failures are terminal for the run and never retried.
type SpawnError struct {
	// Command is the executable that failed to spawn.
	Command string
	// Err is the underlying OS error.
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawning %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ResourceError reports that an OS-level stream destination could not
// be provisioned: the null device could not be opened, or pipe creation
// was refused (descriptor exhaustion). Terminal for the run.
type ResourceError struct {
	// Op describes what was being provisioned ("null device", "pipe").
	Op string
	// Stream is the stream the destination was for.
	Stream StreamKind
	// Err is the underlying OS error.
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("provisioning %s for %s: %v", e.Op, e.Stream, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// ReadError reports a drain worker's read failing mid-stream. It is
// downgraded to best-effort end-of-stream: recorded on the stream's
// outcome, never aborting the wait for process exit.
type ReadError struct {
	// Stream is the stream whose drain failed.
	Stream StreamKind
	// Err is the underlying read error.
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("draining %s: %v", e.Stream, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WaitError reports that the OS refused to deliver the child's exit
// status. Fatal: the supervisor has lost the ability to know whether
// the child still exists, so there is no safe recovery.
type WaitError struct {
	// Err is the underlying wait error.
	Err error
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("waiting for child: %v", e.Err)
}

func (e *WaitError) Unwrap() error { return e.Err }
