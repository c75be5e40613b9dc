package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// exitUsage is what POSIX shells return for a syntax error.
const exitUsage ExitCode = 2

func (r *Runner) runVirtual(ctx context.Context, line string) (Result, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(line), "testwrap")
	if err != nil {
		return Result{ExitCode: exitUsage}, fmt.Errorf("parse command line: %w", err)
	}

	env := r.Env
	if env == nil {
		env = os.Environ()
	}
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(r.Stdin, r.Stdout, r.Stderr),
	}
	if r.Dir != "" {
		opts = append(opts, interp.Dir(r.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return Result{ExitCode: ExitStartFailure}, fmt.Errorf("create interpreter: %w", err)
	}

	err = runner.Run(ctx, prog)
	if err == nil {
		return Result{}, nil
	}
	var status interp.ExitStatus
	if errors.As(err, &status) {
		return Result{ExitCode: ExitCode(status)}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{ExitCode: 1}, fmt.Errorf("interrupted: %w", ctxErr)
	}
	return Result{ExitCode: 1}, fmt.Errorf("script execution failed: %w", err)
}
