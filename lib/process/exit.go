// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"os"

	"github.com/bureau-foundation/procio/supervise"
)

// Reserved exit codes for supervisor-level failures. A successful run
// exits with the child's own code instead.
const (
	// CodeSupervisor is returned for any supervisor failure other
	// than a spawn failure: bad flags, bad config, resource
	// provisioning, wait failure, timeout kill.
	CodeSupervisor = 125

	// CodeSpawn is returned when the child could not be spawned at
	// all (executable missing, permission denied).
	CodeSpawn = 126
)

// Code maps a supervisor-level error to its reserved exit code.
func Code(err error) int {
	var spawnErr *supervise.SpawnError
	if errors.As(err, &spawnErr) {
		return CodeSpawn
	}
	return CodeSupervisor
}

// Fail writes "procio: err" to stderr and returns the reserved exit
// code for err. Use it in run() for failures where the structured
// logger may not be initialized, or that must be visible regardless of
// log level.
func Fail(err error) int {
	fmt.Fprintf(os.Stderr, "procio: %v\n", err)
	return Code(err)
}
