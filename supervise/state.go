// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package supervise

import "fmt"

// runState tracks where a single run is in its lifecycle. States are
// run-local (each Run call carries its own), so concurrent runs on the
// same Supervisor never share mutable state.
//
//	notStarted → spawning → spawnFailed            (terminal)
//	                      → running → draining ∥ running
//	                                → exited → joined  (terminal)
type runState int

const (
	stateNotStarted runState = iota
	stateSpawning
	stateSpawnFailed
	stateRunning
	stateDraining
	stateExited
	stateJoined
)

func (s runState) String() string {
	switch s {
	case stateNotStarted:
		return "not-started"
	case stateSpawning:
		return "spawning"
	case stateSpawnFailed:
		return "spawn-failed"
	case stateRunning:
		return "running"
	case stateDraining:
		return "draining"
	case stateExited:
		return "exited"
	case stateJoined:
		return "joined"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}
