// Package runner drives a single test invocation: stage the input, run the
// executable against it, fingerprint the result, and compare.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"

	"github.com/brandonbloom/testwrap/internal/digest"
	"github.com/brandonbloom/testwrap/internal/shell"
	"github.com/brandonbloom/testwrap/internal/staging"
)

// Invocation is the five caller-supplied inputs of one test.
type Invocation struct {
	TestID       string
	ExpectedHash string
	Executable   string
	Source       string
	// Parameters is inserted verbatim between the executable and the staged
	// file; the caller is responsible for any quoting it needs.
	Parameters string
}

// Verdict is the outcome of an invocation that got past staging.
type Verdict int

const (
	Pass Verdict = iota
	ExecFailed
	Mismatch
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "pass"
	case ExecFailed:
		return "executable failed"
	case Mismatch:
		return "hash mismatch"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Result records what happened during Run.
type Result struct {
	StagedPath  string
	CommandLine string
	Exec        shell.Result
	// ExecErr is set when the command line could not be run at all.
	ExecErr  error
	TimedOut bool
	Elapsed  time.Duration
	// Computed is empty unless the executable succeeded.
	Computed string
	Verdict  Verdict
}

// Passed reports whether the invocation should exit with status 0.
func (r *Result) Passed() bool {
	return r != nil && r.Verdict == Pass
}

// Runner executes invocations. The zero value runs through the host shell
// in the current directory with no timeout and discards console output.
type Runner struct {
	Shell shell.Runner
	// Dir holds the staged file and is the child's working directory.
	Dir string
	// Timeout bounds the executable's runtime. Zero waits indefinitely.
	Timeout time.Duration
	// Out receives the human-readable step log.
	Out    io.Writer
	Logger *log.Logger
	// Color highlights the return value and hash lines.
	Color bool
}

// Run executes inv. Staging failures and I/O errors while hashing are
// returned as errors; executable failures and mismatches are verdicts. The
// staged file is gone when Run returns, whatever the outcome.
func (r *Runner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	out := r.Out
	if out == nil {
		out = io.Discard
	}
	logger := r.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	if !digest.Valid(inv.ExpectedHash) {
		logger.Warn("expected hash is not a 32-character lowercase hex digest; it can never match", "hash", inv.ExpectedHash)
	}

	name := staging.Name(inv.TestID)
	fmt.Fprintln(out, "Copying", inv.Source, "to", name)
	var staged *staging.File
	var err error
	if r.Dir == "" {
		staged, err = staging.Stage(inv.Source, inv.TestID)
	} else {
		staged, err = staging.StageAt(inv.Source, filepath.Join(r.Dir, name))
	}
	if err != nil {
		return nil, err
	}
	path := staged.Path
	defer func() {
		if err := staged.Remove(); err != nil {
			logger.Error("failed to remove staged file", "path", path, "err", err)
		}
	}()
	logger.Debug("staged input", "source", inv.Source, "path", path)

	res := &Result{
		StagedPath:  path,
		CommandLine: shell.CommandLine(inv.Executable, inv.Parameters, name),
	}

	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	sh := r.Shell
	sh.Dir = r.Dir
	fmt.Fprintln(out, "Executing command:", res.CommandLine)
	logger.Debug("running", "argv", sh.Describe(res.CommandLine), "mode", sh.Mode, "timeout", r.Timeout)

	start := time.Now()
	res.Exec, res.ExecErr = sh.Run(runCtx, res.CommandLine)
	res.Elapsed = time.Since(start)
	res.TimedOut = errors.Is(runCtx.Err(), context.DeadlineExceeded)
	logger.Debug("executable finished", "exit", res.Exec.ExitCode, "elapsed", res.Elapsed)

	fmt.Fprintln(out, r.paint(res.Exec.ExitCode.IsSuccess() && res.ExecErr == nil, "Return value: "+describeReturn(res, ctx)))

	if res.ExecErr != nil || !res.Exec.ExitCode.IsSuccess() {
		if res.ExecErr != nil {
			logger.Error("could not run executable", "err", res.ExecErr)
		}
		res.Verdict = ExecFailed
		if err := staged.Remove(); err != nil {
			return res, fmt.Errorf("remove %s: %w", path, err)
		}
		return res, nil
	}

	fmt.Fprintln(out, "Calculating md5 hash of", name)
	sum, hashErr := digest.File(path)
	rmErr := staged.Remove()
	if hashErr != nil {
		return res, fmt.Errorf("hash %s: %w", name, hashErr)
	}
	if rmErr != nil {
		return res, fmt.Errorf("remove %s: %w", path, rmErr)
	}
	res.Computed = sum

	match := digest.Equal(inv.ExpectedHash, sum)
	fmt.Fprintln(out, r.paint(match, fmt.Sprintf("Required hash: %s, calculated: %s", inv.ExpectedHash, sum)))
	if match {
		res.Verdict = Pass
	} else {
		res.Verdict = Mismatch
	}
	return res, nil
}

func describeReturn(res *Result, parent context.Context) string {
	s := res.Exec.ExitCode.String()
	switch {
	case res.TimedOut:
		return s + " (timed out)"
	case parent.Err() != nil:
		return s + " (interrupted)"
	case res.Exec.Signal != "":
		return s + " (killed by " + res.Exec.Signal + ")"
	case res.ExecErr != nil:
		return s + " (" + res.ExecErr.Error() + ")"
	}
	return s
}

func (r *Runner) paint(ok bool, s string) string {
	c := color.New(color.FgGreen)
	if !ok {
		c = color.New(color.FgRed, color.Bold)
	}
	if r.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}
