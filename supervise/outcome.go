// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package supervise

import (
	"time"

	"github.com/bureau-foundation/procio/capture"
)

// StreamOutcome describes what happened to one of the child's output
// streams during a run.
type StreamOutcome struct {
	// Kind is the stream this outcome describes.
	Kind StreamKind

	// Mode is the redirection mode the stream ran under.
	Mode Mode

	// Drained reports whether a drain worker serviced the stream
	// (ModePipedDrained only).
	Drained bool

	// Total is the exact number of bytes drained from the stream.
	// Zero unless Drained.
	Total uint64

	// Digest is the hex BLAKE3 digest of the drained bytes, set when
	// capture was enabled for the stream.
	Digest string

	// Tail holds the most recently drained bytes (up to the configured
	// tail size), available whenever the stream was drained regardless
	// of capture settings.
	Tail []byte

	// ReadErr records a mid-stream drain read failure that was
	// downgraded to end-of-stream. The capture is partial when set.
	ReadErr error

	buffer *capture.Buffer
}

// Bytes returns the complete captured stream. Returns (nil, nil) when
// capture was not enabled for the stream. Large captures are read back
// from their spool file; call [Outcome.Close] when done with them.
func (s *StreamOutcome) Bytes() ([]byte, error) {
	if s.buffer == nil {
		return nil, nil
	}
	return s.buffer.Bytes()
}

// Outcome is the result of one supervised run. The child has been
// waited on and every drain worker has observed end-of-stream by the
// time an Outcome exists.
type Outcome struct {
	// ExitCode is the child's exit code. -1 when the child was
	// terminated by a signal (including the supervisor's own timeout
	// kill).
	ExitCode int

	// Duration is the wall time from spawn to joined.
	Duration time.Duration

	// Stdout and Stderr describe the two output streams.
	Stdout StreamOutcome
	Stderr StreamOutcome

	// PipeCapacity is the kernel buffer capacity, in bytes, of the
	// pipes created for this run. Zero when no pipe was created or the
	// capacity could not be queried.
	PipeCapacity int
}

// Close releases any spool files backing the captured streams. Safe to
// call when nothing was captured or spooled.
func (o *Outcome) Close() error {
	var firstErr error
	for _, stream := range []*StreamOutcome{&o.Stdout, &o.Stderr} {
		if stream.buffer == nil {
			continue
		}
		if err := stream.buffer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
