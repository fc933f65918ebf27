// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package supervise

import (
	"os"
)

// sink is the resolved OS-level destination for one of the child's
// output streams. Exactly one of parent/child is set for inherit mode
// versus the descriptor-backed modes.
type sink struct {
	kind StreamKind
	mode Mode

	// parent is the parent's own stream, for ModeInherit. No new
	// descriptor is created and nothing needs closing.
	parent *os.File

	// child is the file handed to the child process: the null device
	// for ModeNull, or the pipe's write end for the piped modes. The
	// parent's copy must be closed once the child has been started
	// (or has failed to start) — for pipes this is what lets drain
	// workers observe end-of-stream when the child exits.
	child *os.File

	// reader is the pipe's read end, retained by the parent for the
	// piped modes. Owned by the drain worker in ModePipedDrained;
	// deliberately left unread in ModePiped.
	reader *os.File
}

// resolveSink provisions the destination for one stream. Null-device
// and pipe provisioning failures are ResourceErrors.
func resolveSink(mode Mode, kind StreamKind) (*sink, error) {
	switch mode {
	case ModeInherit:
		parent := os.Stdout
		if kind == Stderr {
			parent = os.Stderr
		}
		return &sink{kind: kind, mode: mode, parent: parent}, nil

	case ModeNull:
		null, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			return nil, &ResourceError{Op: "null device", Stream: kind, Err: err}
		}
		return &sink{kind: kind, mode: mode, child: null}, nil

	case ModePiped, ModePipedDrained:
		readEnd, writeEnd, err := os.Pipe()
		if err != nil {
			return nil, &ResourceError{Op: "pipe", Stream: kind, Err: err}
		}
		return &sink{kind: kind, mode: mode, child: writeEnd, reader: readEnd}, nil

	default:
		return nil, &ResourceError{Op: "destination", Stream: kind, Err: os.ErrInvalid}
	}
}

// childFile returns the file to wire into the child's exec attributes.
func (s *sink) childFile() *os.File {
	if s.mode == ModeInherit {
		return s.parent
	}
	return s.child
}

// closeChild closes the parent's copy of the child-side descriptor.
// Must be called exactly once after the spawn attempt; for pipes, a
// lingering parent copy of the write end would keep drain workers from
// ever seeing end-of-stream.
func (s *sink) closeChild() {
	if s.child != nil {
		s.child.Close()
		s.child = nil
	}
}

// closeReader closes the retained pipe read end, for paths where no
// drain worker took ownership of it.
func (s *sink) closeReader() {
	if s.reader != nil {
		s.reader.Close()
		s.reader = nil
	}
}
