// Package twcmdtest implements a small harness for end-to-end testwrap runs.
//
// Key behaviors:
//   - Creates `<root>/work-<id>`; root is `/tmp/testwrap-transcripts` unless
//     `TESTWRAP_CMDTEST_ROOT` is set.
//   - Writes fixture files into the work directory (default `hello.txt`).
//   - Holds `<root>/work-<id>.lock` so runs sharing an id cannot interleave.
//   - Honors `TESTWRAP_CMDTEST_TIMEOUT` (default 10s) to cap the command.
//   - Honors `TESTWRAP_CMDTEST_ID` to isolate work directories.
//   - Fails when a `test_file.*` artifact survives the command.
package twcmdtest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/brandonbloom/testwrap/internal/staging"
)

// Tool is the harness state; tests construct it directly.
type Tool struct {
	root string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

const (
	defaultRoot    = "/tmp/testwrap-transcripts"
	defaultTimeout = 10 * time.Second

	exitTimeout = 124
)

// Main runs the harness with process-level I/O and returns an exit status.
func Main(args []string) int {
	return New().RunCLI(context.Background(), args)
}

// New returns a harness rooted at $TESTWRAP_CMDTEST_ROOT or the default.
func New() *Tool {
	root := os.Getenv("TESTWRAP_CMDTEST_ROOT")
	if root == "" {
		root = defaultRoot
	}
	return &Tool{
		root:   filepath.Clean(root),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// RunCLI parses args and runs the command, returning its exit status.
func (t *Tool) RunCLI(ctx context.Context, args []string) int {
	ctx, cancel, timeout := withTimeoutFromEnv(ctx, "TESTWRAP_CMDTEST_TIMEOUT", defaultTimeout)
	if cancel != nil {
		defer cancel()
	}

	opts, cmdArgs, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(t.stderr, err)
		t.printUsage()
		return 2
	}
	if opts.help {
		t.printUsage()
		return 0
	}

	exitCode, err := t.run(ctx, opts, cmdArgs, timeout)
	if err != nil {
		fmt.Fprintln(t.stderr, err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	return exitCode
}

func (t *Tool) printUsage() {
	fmt.Fprint(t.stderr, `Usage: twcmdtest [options] -- <command> [args...]

Creates a disposable work directory with fixture files, runs the given
command inside it, checks that no test_file.* artifact was left behind,
and cleans up afterward.

Options:
  --fixture NAME=CONTENT  Write CONTENT to NAME (repeatable; NAME=@PATH copies PATH).
                          Defaults to hello.txt containing "hello".
  --keep                  Preserve the work directory (prints its path).
`)
}

func (t *Tool) run(ctx context.Context, opts options, cmdArgs []string, timeout time.Duration) (int, error) {
	if err := os.MkdirAll(t.root, 0o755); err != nil {
		return 1, err
	}

	workdir := filepath.Join(t.root, workDirName())
	lock, err := lockWorkDir(ctx, workdir, timeout)
	if err != nil {
		return 1, err
	}
	defer lock.Release()

	if err := removeAllUnder(t.root, workdir); err != nil {
		return 1, err
	}
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		return 1, err
	}
	if err := writeFixtures(workdir, opts.fixtures); err != nil {
		return 1, err
	}

	cmd := exec.CommandContext(ctx, cmdArgs[0], cmdArgs[1:]...)
	cmd.Dir = workdir
	cmd.Env = childEnv(os.Environ(), workdir)
	cmd.Stdin = t.stdin
	cmd.Stdout = t.stdout
	cmd.Stderr = t.stderr

	runErr := cmd.Run()
	if runErr != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return exitTimeout, fmt.Errorf("twcmdtest: timed out after %s", timeout)
	}
	exitCode := exitStatus(runErr)

	leaked, err := leftoverStagedFiles(workdir)
	if err != nil {
		return 1, err
	}

	if opts.keep {
		fmt.Fprintf(t.stderr, "work directory kept at %s\n", workdir)
	} else if cleanupErr := removeAllUnder(t.root, workdir); cleanupErr != nil {
		return 1, cleanupErr
	}

	if len(leaked) > 0 {
		return 1, fmt.Errorf("twcmdtest: staged files left behind: %s", strings.Join(leaked, ", "))
	}
	return exitCode, nil
}

func writeFixtures(dir string, fixtures []fixture) error {
	for _, f := range fixtures {
		data := []byte(f.content)
		if f.from != "" {
			var err error
			if data, err = os.ReadFile(f.from); err != nil {
				return fmt.Errorf("fixture %s: %w", f.name, err)
			}
		}
		path := filepath.Join(dir, f.name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func leftoverStagedFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, staging.Prefix+"*"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Strings(names)
	return names, nil
}

func childEnv(base []string, workdir string) []string {
	env := envMap(base)
	env["PWD"] = workdir
	env["NO_COLOR"] = "1"
	env["CLICOLOR"] = "0"
	env["CLICOLOR_FORCE"] = "0"
	delete(env, "TESTWRAP_CONFIG")
	return envSlice(env)
}

func removeAllUnder(root, target string) error {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return err
	}
	if rel == "." {
		return fmt.Errorf("refusing to remove root: %s", root)
	}
	if strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return fmt.Errorf("refusing to remove outside root: %s", target)
	}
	return os.RemoveAll(target)
}

func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return 127
}

func withTimeoutFromEnv(ctx context.Context, key string, def time.Duration) (context.Context, context.CancelFunc, time.Duration) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		raw = def.String()
	}
	if raw == "0" || raw == "0s" {
		return ctx, nil, 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		d = def
	}
	next, cancel := context.WithTimeout(ctx, d)
	return next, cancel, d
}

func envMap(env []string) map[string]string {
	out := make(map[string]string, len(env))
	for _, entry := range env {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		out[key] = value
	}
	return out
}

func envSlice(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

func workDirName() string {
	raw := strings.TrimSpace(os.Getenv("TESTWRAP_CMDTEST_ID"))
	if raw != "" {
		safe := make([]rune, 0, len(raw))
		for _, r := range raw {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
				safe = append(safe, r)
				continue
			}
			safe = append(safe, '_')
		}
		id := strings.Trim(strings.TrimSpace(string(safe)), "._-")
		if id != "" {
			return "work-" + id
		}
	}

	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("work-%d", os.Getpid())
	}
	return "work-" + hex.EncodeToString(b[:])
}
