// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package supervise

import (
	"os/exec"
	"syscall"
	"time"
)

// configureTermination puts the child in its own process group and
// installs the cancellation behavior for context expiry.
//
// The process group matters: signaling only the immediate child would
// leave grandchildren running with the pipe write ends still open, so
// drain workers would never see end-of-stream and the run would never
// join. Signaling the group (negative PID) reaches everything the
// child spawned.
//
// With a zero grace period the group is SIGKILLed immediately — the
// right default for a diagnostic runner whose children are ephemeral.
// With a positive grace period the group gets SIGTERM first and a
// chance to flush and exit; a background escalation SIGKILLs whatever
// is left once the period elapses. ESRCH from an already-gone group is
// harmless and ignored.
func configureTermination(cmd *exec.Cmd, gracePeriod time.Duration) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if gracePeriod > 0 {
		cmd.Cancel = func() error {
			processGroupID := -cmd.Process.Pid
			if err := syscall.Kill(processGroupID, syscall.SIGTERM); err != nil {
				// SIGTERM failed (group already gone), escalate.
				return syscall.Kill(processGroupID, syscall.SIGKILL)
			}
			go func() {
				time.Sleep(gracePeriod)
				_ = syscall.Kill(processGroupID, syscall.SIGKILL)
			}()
			return nil
		}
		return
	}

	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
