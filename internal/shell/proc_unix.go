//go:build !windows

package shell

import (
	"fmt"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureProcessGroup moves the shell into its own process group when the
// run has a deadline, so expiry kills everything it spawned. Without a
// deadline the child stays in the caller's foreground group and can read the
// terminal the way system(3) children do; Ctrl-C reaches the whole group
// from the terminal anyway.
func configureProcessGroup(cmd *exec.Cmd, detach bool) {
	if !detach {
		return
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		if err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
}

func signalResult(ee *exec.ExitError) (Result, bool) {
	ws, ok := ee.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return Result{}, false
	}
	sig := ws.Signal()
	return Result{
		ExitCode: exitSignalBase + ExitCode(sig),
		Signal:   describeSignal(sig),
	}, true
}

func describeSignal(sig syscall.Signal) string {
	name := unix.SignalName(sig)
	if name == "" {
		return fmt.Sprintf("signal %d", sig)
	}
	return fmt.Sprintf("%s (%d)", name, sig)
}
