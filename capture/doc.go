// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package capture accumulates bytes drained from a child process's
// standard streams.
//
// [Buffer] is the full-fidelity accumulator: every byte written to it
// is counted, folded into a BLAKE3 digest, and retained. Retention is
// in-memory up to a configurable limit, after which the entire capture
// spills to a zstd-compressed spool file so that arbitrarily large
// child output never grows the process heap. Bytes reassembles the
// capture transparently from either location.
//
// [Ring] is the bounded companion: a fixed-size byte ring that keeps
// only the most recent output. Drain workers feed it regardless of
// capture settings so that error reports can include the tail of a
// stream without paying for full retention.
//
// Both types are safe for concurrent use, though in practice each
// instance is owned by exactly one drain worker.
package capture
