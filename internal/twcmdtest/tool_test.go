package twcmdtest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestTool(t *testing.T) (*Tool, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell required")
	}
	var stdout, stderr bytes.Buffer
	return &Tool{
		root:   t.TempDir(),
		stdin:  bytes.NewReader(nil),
		stdout: &stdout,
		stderr: &stderr,
	}, &stdout, &stderr
}

func TestRunCLIProvisionsFixturesAndCleansUp(t *testing.T) {
	tool, stdout, stderr := newTestTool(t)
	t.Setenv("TESTWRAP_CMDTEST_ID", "fixtures")

	code := tool.RunCLI(context.Background(), []string{
		"--fixture", "data/in.txt=abc",
		"--", "sh", "-c", "cat hello.txt 2>/dev/null; cat data/in.txt; printf '|%s' \"$NO_COLOR\"",
	})
	require.Equal(t, 0, code, stderr.String())
	require.Equal(t, "abc|1", stdout.String())

	_, err := os.Stat(filepath.Join(tool.root, "work-fixtures"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunCLIDefaultFixture(t *testing.T) {
	tool, stdout, _ := newTestTool(t)

	code := tool.RunCLI(context.Background(), []string{"cat", "hello.txt"})
	require.Equal(t, 0, code)
	require.Equal(t, "hello", stdout.String())
}

func TestRunCLICopiesFileFixture(t *testing.T) {
	tool, stdout, _ := newTestTool(t)
	src := filepath.Join(t.TempDir(), "ref.bin")
	require.NoError(t, os.WriteFile(src, []byte("\x00\x01ref"), 0o644))

	code := tool.RunCLI(context.Background(), []string{"--fixture", "ref.bin=@" + src, "cat", "ref.bin"})
	require.Equal(t, 0, code)
	require.Equal(t, "\x00\x01ref", stdout.String())
}

func TestRunCLIPropagatesExitCode(t *testing.T) {
	tool, _, _ := newTestTool(t)

	code := tool.RunCLI(context.Background(), []string{"sh", "-c", "exit 7"})
	require.Equal(t, 7, code)
}

func TestRunCLIDetectsLeftoverStagedFile(t *testing.T) {
	tool, _, stderr := newTestTool(t)

	code := tool.RunCLI(context.Background(), []string{"sh", "-c", "touch test_file.leak"})
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "staged files left behind: test_file.leak")
}

func TestRunCLIKeep(t *testing.T) {
	tool, _, stderr := newTestTool(t)
	t.Setenv("TESTWRAP_CMDTEST_ID", "kept")

	code := tool.RunCLI(context.Background(), []string{"--keep", "true"})
	require.Equal(t, 0, code)
	require.Contains(t, stderr.String(), "work directory kept at")

	_, err := os.Stat(filepath.Join(tool.root, "work-kept", "hello.txt"))
	require.NoError(t, err)
}

func TestRunCLITimeout(t *testing.T) {
	tool, _, stderr := newTestTool(t)
	t.Setenv("TESTWRAP_CMDTEST_TIMEOUT", "200ms")

	code := tool.RunCLI(context.Background(), []string{"sleep", "30"})
	require.Equal(t, exitTimeout, code)
	require.Contains(t, stderr.String(), "timed out")
}

func TestRunCLIUsageErrors(t *testing.T) {
	tool, _, stderr := newTestTool(t)

	require.Equal(t, 2, tool.RunCLI(context.Background(), nil))
	require.Contains(t, stderr.String(), "Usage: twcmdtest")
	require.Equal(t, 0, tool.RunCLI(context.Background(), []string{"--help"}))
}

func TestRemoveAllUnderRefusesEscapes(t *testing.T) {
	root := t.TempDir()
	require.Error(t, removeAllUnder(root, root))
	require.Error(t, removeAllUnder(root, filepath.Dir(root)))
	require.NoError(t, removeAllUnder(root, filepath.Join(root, "child")))
}

func TestWorkDirName(t *testing.T) {
	t.Setenv("TESTWRAP_CMDTEST_ID", "a b/c")
	require.Equal(t, "work-a_b_c", workDirName())

	t.Setenv("TESTWRAP_CMDTEST_ID", "")
	require.Regexp(t, `^work-[0-9a-f]{16}$`, workDirName())
}

func TestWorkLockExcludesSameWorkDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("flock required")
	}
	workdir := filepath.Join(t.TempDir(), "work-shared")

	held, err := lockWorkDir(context.Background(), workdir, time.Second)
	require.NoError(t, err)
	data, err := os.ReadFile(workdir + ".lock")
	require.NoError(t, err)
	require.Equal(t, strconv.Itoa(os.Getpid())+"\n", string(data))

	_, err = lockWorkDir(context.Background(), workdir, 100*time.Millisecond)
	require.ErrorIs(t, err, errWorkDirBusy)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Contains(t, err.Error(), "held by pid "+strconv.Itoa(os.Getpid()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = lockWorkDir(ctx, workdir, time.Minute)
	require.ErrorIs(t, err, context.Canceled)

	held.Release()
	held.Release()

	again, err := lockWorkDir(context.Background(), workdir, time.Second)
	require.NoError(t, err)
	again.Release()
}

func TestRunCLIWaitsForSameID(t *testing.T) {
	tool, _, stderr := newTestTool(t)
	t.Setenv("TESTWRAP_CMDTEST_ID", "busy")
	t.Setenv("TESTWRAP_CMDTEST_TIMEOUT", "200ms")

	held, err := lockWorkDir(context.Background(), filepath.Join(tool.root, "work-busy"), time.Second)
	require.NoError(t, err)
	defer held.Release()

	code := tool.RunCLI(context.Background(), []string{"true"})
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "work directory is in use")
}
