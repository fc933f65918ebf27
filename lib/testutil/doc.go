// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for procio packages.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with time.After fallback) so that individual
// tests do not need direct time.After calls. They exist because this
// test suite deliberately runs children that hang; a test observing a
// hang must itself be protected from hanging.
//
// [FillArgs] and [FillData] produce a shell command that writes an
// exact number of deterministic bytes, and the bytes it writes, for
// pipe-saturation and capture-fidelity tests.
//
// [OpenFileDescriptors] counts the test process's open descriptors via
// /proc/self/fd, for descriptor-leak regression tests.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
