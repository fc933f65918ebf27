// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package supervise

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// pipeCapacity queries the kernel buffer capacity of the pipe backing
// file. This is the number of bytes a writer can sink before write(2)
// blocks with no reader draining — 64 KB on stock kernels, but
// tunable system-wide and per-pipe, so it is queried rather than
// assumed.
func pipeCapacity(file *os.File) (int, error) {
	capacity, err := unix.FcntlInt(file.Fd(), unix.F_GETPIPE_SZ, 0)
	if err != nil {
		return 0, fmt.Errorf("querying pipe capacity: %w", err)
	}
	return capacity, nil
}

// PipeCapacity reports the kernel's pipe buffer capacity by creating a
// throwaway pipe and querying it. Tests use this to size payloads that
// are guaranteed to saturate an undrained pipe.
func PipeCapacity() (int, error) {
	readEnd, writeEnd, err := os.Pipe()
	if err != nil {
		return 0, &ResourceError{Op: "pipe", Stream: Stdout, Err: err}
	}
	defer readEnd.Close()
	defer writeEnd.Close()
	return pipeCapacity(readEnd)
}
