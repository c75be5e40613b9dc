// Package digest computes the content fingerprints testwrap compares
// against expected values.
package digest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// BlockSize is the read granularity used when streaming file content.
const BlockSize = 4096

// Reader returns the lowercase hex MD5 digest of everything read from r.
func Reader(r io.Reader) (string, error) {
	h := md5.New()
	buf := make([]byte, BlockSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File returns the lowercase hex MD5 digest of the file at path.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sum, err := Reader(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return sum, nil
}

// Equal reports whether computed matches expected exactly. No case folding
// or trimming is applied.
func Equal(expected, computed string) bool {
	return expected == computed
}

// Valid reports whether s looks like an MD5 digest as produced by Reader.
func Valid(s string) bool {
	if len(s) != hex.EncodedLen(md5.Size) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
