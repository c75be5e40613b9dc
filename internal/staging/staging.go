// Package staging manages the working copy a test invocation hands to the
// executable under test.
package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/natefinch/atomic"
)

// Prefix is prepended to the test identifier to form the staged filename.
const Prefix = "test_file."

var (
	// ErrSourceUnreadable indicates the reference input could not be opened.
	ErrSourceUnreadable = errors.New("staging failed: source unreadable")
	// ErrSameFile indicates the staged path already names the source, so
	// staging would hand the reference input itself to the executable.
	ErrSameFile = errors.New("staging failed: source is the staged file")
)

// Name returns the staged filename for a test identifier. The identifier is
// used verbatim.
func Name(testID string) string {
	return Prefix + testID
}

// File is a staged copy owned by a single invocation.
type File struct {
	Path string
}

// Stage copies src byte-for-byte to the staged path for testID, relative to
// the current working directory. An existing file at that path is replaced.
func Stage(src, testID string) (*File, error) {
	return StageAt(src, Name(testID))
}

// StageAt copies src to dst. The content lands via a temp file and rename
// so dst never holds a partial copy.
func StageAt(src, dst string) (*File, error) {
	in, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceUnreadable, src)
	}
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(info, dstInfo) {
		return nil, fmt.Errorf("%w: %s and %s", ErrSameFile, src, dst)
	}

	if err := atomic.WriteFile(dst, in); err != nil {
		return nil, fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	f := &File{Path: dst}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		_ = f.Remove()
		return nil, fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return f, nil
}

// Remove deletes the staged file. Removing an already-absent file is not an
// error, so Remove may be called on every exit path.
func (f *File) Remove() error {
	if f == nil {
		return nil
	}
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
