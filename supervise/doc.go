// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package supervise runs one child process while guaranteeing that its
// piped standard streams are always drained.
//
// An OS pipe has a fixed-size kernel buffer (64 KB on typical Linux
// kernels). A child writing to a pipe nobody reads fills that buffer
// and then blocks forever inside write(2) — the classic undrained-pipe
// hang. The [Supervisor] makes hanging impossible in its drained mode
// by binding exactly one drain worker to each piped stream before the
// child is started, so there is never a window in which the child can
// write without a reader attached.
//
// Four redirection modes cover the diagnostic spectrum:
//
//   - [ModeInherit]: the child writes to the parent's own stream.
//   - [ModeNull]: the child writes to the null device.
//   - [ModePiped]: a pipe is created and deliberately never read. This
//     is the misuse case, kept as an explicit, clearly-labeled mode so
//     the hang can be reproduced on purpose (bound it with
//     Config.Timeout).
//   - [ModePipedDrained]: a pipe with a dedicated drain worker that
//     consumes output for the child's whole lifetime, optionally
//     capturing it and forwarding it to a writer.
//
// A run is complete only when the OS has reported the child's exit
// status and every drain worker has observed end-of-stream. Read
// errors during draining are best-effort end-of-stream: they are
// recorded on the outcome but never prevent the child from being
// waited on (an un-waited child is an OS resource leak).
package supervise
