package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// waitDelay bounds how long Wait lingers on output pipes held open by
// grandchildren after the shell itself has gone.
const waitDelay = 2 * time.Second

func (r *Runner) runSystem(ctx context.Context, line string) (Result, error) {
	shell, err := r.systemShell()
	if err != nil {
		return Result{ExitCode: ExitStartFailure}, err
	}
	args := append(r.shellArgs(shell), line)

	cmd := exec.CommandContext(ctx, shell, args...)
	cmd.Dir = r.Dir
	cmd.Env = r.Env
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.WaitDelay = waitDelay
	_, hasDeadline := ctx.Deadline()
	configureProcessGroup(cmd, hasDeadline)

	return exitResult(cmd.Run())
}

func exitResult(err error) (Result, error) {
	if err == nil {
		return Result{}, nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if res, ok := signalResult(ee); ok {
			return res, nil
		}
		return Result{ExitCode: ExitCode(ee.ExitCode())}, nil
	}
	return Result{ExitCode: ExitStartFailure}, fmt.Errorf("failed to execute command: %w", err)
}

func (r *Runner) systemShell() (string, error) {
	if r.Shell != "" {
		return r.Shell, nil
	}
	if runtime.GOOS == "windows" {
		if comspec := os.Getenv("ComSpec"); comspec != "" {
			return comspec, nil
		}
		return exec.LookPath("cmd")
	}
	// Match system(3): always /bin/sh, never $SHELL.
	if _, err := os.Stat("/bin/sh"); err == nil {
		return "/bin/sh", nil
	}
	if sh, err := exec.LookPath("sh"); err == nil {
		return sh, nil
	}
	return "", errors.New("no shell found")
}

func (r *Runner) shellArgs(shell string) []string {
	if len(r.ShellArgs) > 0 {
		return append([]string(nil), r.ShellArgs...)
	}

	base := filepath.Base(shell)
	if i := strings.LastIndex(base, `\`); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(strings.ToLower(base), ".exe")

	switch base {
	case "cmd":
		return []string{"/C"}
	case "powershell", "pwsh":
		return []string{"-NoProfile", "-Command"}
	default:
		return []string{"-c"}
	}
}
