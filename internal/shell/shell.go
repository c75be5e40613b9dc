// Package shell turns a literal command line into a child process.
//
// The command line is handed to a shell without quoting or tokenization.
// Whatever the caller passes (including metacharacters such as ;, | or $())
// is interpreted by the shell, so callers must only pass trusted input.
package shell

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Mode selects how a command line is interpreted.
type Mode string

const (
	// ModeSystem runs the line through the host shell (sh -c, cmd /C).
	ModeSystem Mode = "system"
	// ModeVirtual runs the line through an embedded POSIX shell interpreter.
	// External programs named in the line still run as real processes.
	ModeVirtual Mode = "virtual"
)

// ParseMode validates a mode name. An empty name selects ModeSystem.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSystem:
		return ModeSystem, nil
	case ModeVirtual:
		return ModeVirtual, nil
	default:
		return "", fmt.Errorf("unknown shell mode %q (want system or virtual)", s)
	}
}

// CommandLine joins the executable, its parameters, and the target path with
// single spaces. Nothing is quoted; an empty parameter string yields two
// adjacent spaces, which every shell treats as one separator.
func CommandLine(executable, parameters, target string) string {
	return executable + " " + parameters + " " + target
}

// Runner executes command lines.
type Runner struct {
	Mode Mode
	// Shell overrides the system shell. Ignored in virtual mode.
	Shell string
	// ShellArgs precede the command line. Defaults depend on Shell.
	ShellArgs []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env is the child environment; nil inherits the current process's.
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Result describes how the child terminated.
type Result struct {
	ExitCode ExitCode
	// Signal describes the terminating signal, if any.
	Signal string
}

// Run executes line and blocks until the child exits or ctx is done. A
// non-nil error means the command could not be run at all; the returned
// ExitCode is still meaningful and non-zero in that case.
func (r *Runner) Run(ctx context.Context, line string) (Result, error) {
	switch r.Mode {
	case "", ModeSystem:
		return r.runSystem(ctx, line)
	case ModeVirtual:
		return r.runVirtual(ctx, line)
	default:
		return Result{ExitCode: ExitStartFailure}, fmt.Errorf("unknown shell mode %q", r.Mode)
	}
}

// Describe returns the program and arguments that Run would use for line.
func (r *Runner) Describe(line string) []string {
	if r.Mode == ModeVirtual {
		return []string{"(virtual sh)", line}
	}
	shell, err := r.systemShell()
	if err != nil {
		shell = "sh"
	}
	return append(append([]string{shell}, r.shellArgs(shell)...), line)
}

// Check reports whether Run could start a shell at all.
func (r *Runner) Check() error {
	switch r.Mode {
	case ModeVirtual:
		return nil
	case "", ModeSystem:
	default:
		return fmt.Errorf("unknown shell mode %q", r.Mode)
	}
	shell, err := r.systemShell()
	if err != nil {
		return err
	}
	if _, err := exec.LookPath(shell); err != nil {
		return fmt.Errorf("%s: %w", shell, err)
	}
	return nil
}
