// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package supervise

import "fmt"

// Mode is the redirection policy for one of the child's output
// streams. Immutable once a run starts.
type Mode int

const (
	// ModeInherit connects the stream to the parent's own
	// corresponding stream. No new descriptor is created.
	ModeInherit Mode = iota

	// ModeNull connects the stream to the null device. Output is
	// discarded by the kernel; no reader is involved.
	ModeNull

	// ModePiped creates a pipe whose read end is retained but never
	// read. A child writing more than the pipe buffer capacity blocks
	// forever. This mode exists to reproduce that hang deliberately.
	ModePiped

	// ModePipedDrained creates a pipe with a dedicated drain worker
	// reading it for the child's entire lifetime.
	ModePipedDrained
)

// String returns the mode's CLI spelling.
func (m Mode) String() string {
	switch m {
	case ModeInherit:
		return "inherit"
	case ModeNull:
		return "null"
	case ModePiped:
		return "piped"
	case ModePipedDrained:
		return "piped-drained"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ParseMode parses a mode from its CLI spelling.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "inherit":
		return ModeInherit, nil
	case "null":
		return ModeNull, nil
	case "piped":
		return ModePiped, nil
	case "piped-drained":
		return ModePipedDrained, nil
	default:
		return 0, fmt.Errorf("unknown redirection mode %q (want inherit, null, piped, or piped-drained)", name)
	}
}

// StreamKind identifies which of the child's output streams a sink or
// outcome refers to.
type StreamKind int

const (
	// Stdout is the child's standard output.
	Stdout StreamKind = iota
	// Stderr is the child's standard error.
	Stderr
)

// String returns the stream's conventional name.
func (k StreamKind) String() string {
	switch k {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// StdinPolicy selects where the child's standard input comes from.
/// There is no piped option for stdin: the supervisor never writes to
// the child.
type StdinPolicy int

const (
	// StdinInherit passes the parent's stdin through to the child.
	StdinInherit StdinPolicy = iota
	// StdinNull gives the child the null device (immediate EOF on read).
	StdinNull
)
