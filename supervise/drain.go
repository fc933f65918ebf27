// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package supervise

import (
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/procio/capture"
)

// drainReadSize is the drain worker's read chunk size. 32 KB is half
// the typical pipe capacity: large enough to keep syscall overhead
// negligible, small enough that the tail ring stays current.
const drainReadSize = 32 * 1024

// drainTask continuously reads one pipe's read end until end-of-stream.
// Exactly one task owns each read end; no other code touches it while
// the task is live, so no locking is involved.
type drainTask struct {
	kind    StreamKind
	reader  *os.File
	tail    *capture.Ring
	buffer  *capture.Buffer // nil when capture is disabled
	forward io.Writer       // nil when not forwarding
	logger  *slog.Logger

	// done is closed when the read loop has terminated and the read
	// end is closed. Joining a task means receiving on done.
	done chan struct{}

	// readErr is the recorded mid-stream read failure, nil on a clean
	// end-of-stream. Written before done closes; read only after.
	readErr error
}

// newDrainTask builds a task for one piped stream. The task takes
// ownership of reader.
func newDrainTask(kind StreamKind, reader *os.File, tailSize int, buffer *capture.Buffer, forward io.Writer, logger *slog.Logger) *drainTask {
	return &drainTask{
		kind:    kind,
		reader:  reader,
		tail:    capture.NewRing(tailSize),
		buffer:  buffer,
		forward: forward,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// start launches the read loop. Called strictly before the child is
// started so the reader is attached before the child's first write.
func (d *drainTask) start() {
	go d.run()
}

func (d *drainTask) run() {
	defer close(d.done)
	defer d.reader.Close()

	buf := make([]byte, drainReadSize)
	for {
		n, err := d.reader.Read(buf)
		if n > 0 {
			d.consume(buf[:n])
		}
		if err != nil {
			if err != io.EOF {
				// Best-effort end-of-stream: record and stop. The
				// supervisor still waits for the child.
				d.readErr = &ReadError{Stream: d.kind, Err: err}
				d.logger.Warn("drain read failed, treating as end of stream",
					"stream", d.kind.String(), "error", err)
			}
			return
		}
	}
}

// consume routes one chunk to the tail ring, the capture buffer, and
// the forwarding writer. Capture and forward failures degrade that
// destination and are logged once; the loop keeps reading regardless,
// because stopping would reintroduce the hang this package exists to
// prevent.
func (d *drainTask) consume(chunk []byte) {
	d.tail.Write(chunk)

	if d.buffer != nil {
		if _, err := d.buffer.Write(chunk); err != nil {
			d.logger.Warn("capture degraded to counting",
				"stream", d.kind.String(), "error", err)
			// The buffer keeps counting and digesting on its own;
			// no need to stop writing to it.
		}
	}

	if d.forward != nil {
		if _, err := d.forward.Write(chunk); err != nil {
			d.logger.Warn("forwarding stopped",
				"stream", d.kind.String(), "error", err)
			d.forward = nil
		}
	}
}

// join blocks until the read loop has observed end-of-stream.
func (d *drainTask) join() {
	<-d.done
}
