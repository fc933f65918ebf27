// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for the procio
// command. It centralizes the two concerns a supervising binary has at
// its edges:
//
//   - Raw stderr reporting for failures that occur before or outside
//     the structured logger (flag errors, config errors, spawn
//     failures).
//   - The reserved supervisor exit codes that distinguish "the child
//     could not be run at all" from the child's own exit code range.
//     The distinction is documentation-only — the ranges are not
//     disjoint from codes a child could itself return — which is an
//     accepted ambiguity of the one-shot CLI surface.
package process
