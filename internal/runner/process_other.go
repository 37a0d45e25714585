//go:build !unix

package runner

import (
	"os"
	"os/exec"
)

// setProcessGroup is a no-op on non-Unix platforms.
func setProcessGroup(cmd *exec.Cmd) {
	// No process group support on this platform
}

// signalProcessGroup sends a signal directly to the process on non-Unix platforms.
func signalProcessGroup(cmd *exec.Cmd, sig os.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Signal(sig)
}

// killProcessGroup kills the process directly on non-Unix platforms.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

// exitCodeFromError returns false on non-Unix platforms as WaitStatus is not available.
func exitCodeFromError(exitErr *exec.ExitError) (int, bool) {
	return 0, false
}

// interruptSignals returns the signals to forward on non-Unix platforms.
func interruptSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
