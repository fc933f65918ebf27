// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package supervise

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// forwardedSignals are relayed to the child's process group while a
// run is in flight. The child runs in its own process group, so the
// terminal's Ctrl-C never reaches it directly; without forwarding an
// interactive child would be unkillable from the keyboard.
var forwardedSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGHUP,
	syscall.SIGQUIT,
}

// forwardSignals relays forwardedSignals to the process group of pid
// until the returned stop function is called. The supervisor itself
// does not act on the signal: the child decides how to die, and the
// normal wait/join path reports the result.
func forwardSignals(pid int, logger *slog.Logger) (stop func()) {
	signals := make(chan os.Signal, len(forwardedSignals))
	signal.Notify(signals, forwardedSignals...)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case received := <-signals:
				signalNumber, ok := received.(syscall.Signal)
				if !ok {
					continue
				}
				logger.Debug("forwarding signal to child process group",
					"signal", received.String(), "pid", pid)
				// ESRCH means the group is already gone; the wait
				// path will report that shortly.
				_ = syscall.Kill(-pid, signalNumber)
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(signals)
		close(done)
	}
}
