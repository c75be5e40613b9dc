//go:build windows

package shell

import "os/exec"

func configureProcessGroup(*exec.Cmd, bool) {}

func signalResult(*exec.ExitError) (Result, bool) {
	return Result{}, false
}
