// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"fmt"
	"os"
	"testing"
)

// fillPattern is the repeating unit FillArgs children emit. Using a
// recognizable multi-byte pattern (rather than /dev/zero) means byte
// shifts, truncation, and interleaving bugs show up as content
// mismatches, not just length mismatches.
const fillPattern = "procio\n"

// FillArgs returns a shell command line that writes exactly n
// deterministic bytes to its stdout and exits 0. The child starts
// writing immediately — no startup delay — which is what ordering
// tests need.
func FillArgs(n int) []string {
	return []string{"sh", "-c", fmt.Sprintf("yes procio | head -c %d", n)}
}

// FillData returns the exact bytes a FillArgs(n) child writes.
func FillData(n int) []byte {
	repeated := bytes.Repeat([]byte(fillPattern), n/len(fillPattern)+1)
	return repeated[:n]
}

// OpenFileDescriptors counts the test process's currently open file
// descriptors. Linux-specific (/proc/self/fd); callers are the
// descriptor-leak tests, which only run where the supervisor's pipe
// handling is fully exercised anyway.
func OpenFileDescriptors(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Fatalf("reading /proc/self/fd: %v", err)
	}
	// The ReadDir itself holds one descriptor for the directory;
	// it is closed by the time we return, so the count excludes it.
	return len(entries) - 1
}
