package twcmdtest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

const lockPollInterval = 25 * time.Millisecond

var errWorkDirBusy = errors.New("work directory is in use")

// workLock serializes harness runs that share a work directory, so two runs
// with the same TESTWRAP_CMDTEST_ID cannot delete each other's fixtures or
// staged files. The lock file records the holder's pid.
type workLock struct {
	f *os.File
}

func lockWorkDir(ctx context.Context, workdir string, wait time.Duration) (*workLock, error) {
	if wait <= 0 {
		wait = defaultTimeout
	}
	path := workdir + ".lock"
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	expired := time.NewTimer(wait)
	defer expired.Stop()
	poll := time.NewTicker(lockPollInterval)
	defer poll.Stop()

	for {
		ok, err := tryLock(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("lock %s: %w", path, err)
		}
		if ok {
			recordHolder(f)
			return &workLock{f: f}, nil
		}

		var cause error
		select {
		case <-poll.C:
			continue
		case <-expired.C:
			cause = context.DeadlineExceeded
		case <-ctx.Done():
			cause = ctx.Err()
		}
		holder := lockHolder(f)
		_ = f.Close()
		return nil, fmt.Errorf("twcmdtest: %w: %s (held by pid %s): %w", errWorkDirBusy, workdir, holder, cause)
	}
}

// Release drops the lock. The lock file stays so waiters keep locking the
// same inode.
func (l *workLock) Release() {
	if l == nil || l.f == nil {
		return
	}
	unlock(l.f)
	_ = l.f.Close()
	l.f = nil
}

func recordHolder(f *os.File) {
	if err := f.Truncate(0); err != nil {
		return
	}
	_, _ = f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
}

func lockHolder(f *os.File) string {
	data, err := io.ReadAll(io.NewSectionReader(f, 0, 64))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return "unknown"
	}
	return string(bytes.TrimSpace(data))
}
