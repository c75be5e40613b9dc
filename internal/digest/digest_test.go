package digest

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReaderKnownValues(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "d41d8cd98f00b204e9800998ecf8427e"},
		{"hello", "hello", "5d41402abc4b2a76b9719d911017c592"},
		{"fox", "The quick brown fox jumps over the lazy dog", "9e107d9d372bb6826bd81d3542a419d6"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Reader(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Reader: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Reader(%q) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestReaderSpansBlocks(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789abcdef"), BlockSize/4+3)

	whole, err := Reader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	// One byte per Read exercises partial-block handling.
	trickle, err := Reader(&oneByteReader{data: data})
	if err != nil {
		t.Fatal(err)
	}
	if whole != trickle {
		t.Fatalf("block-sized reads gave %s, byte reads gave %s", whole, trickle)
	}
}

func TestReaderPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	if _, err := Reader(&failingReader{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if got != "5d41402abc4b2a76b9719d911017c592" {
		t.Fatalf("File = %s", got)
	}

	if _, err := File(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file err = %v", err)
	}
}

func TestEqualIsExact(t *testing.T) {
	const sum = "5d41402abc4b2a76b9719d911017c592"
	if !Equal(sum, sum) {
		t.Fatal("identical digests should be equal")
	}
	for _, expected := range []string{strings.ToUpper(sum), sum + "\n", ""} {
		if Equal(expected, sum) {
			t.Fatalf("Equal(%q, %q) = true", expected, sum)
		}
	}
}

func TestValid(t *testing.T) {
	cases := map[string]bool{
		"5d41402abc4b2a76b9719d911017c592": true,
		"5D41402ABC4B2A76B9719D911017C592": false,
		"5d41402abc4b2a76b9719d911017c59":  false,
		"zz41402abc4b2a76b9719d911017c592": false,
	}
	for in, want := range cases {
		if got := Valid(in); got != want {
			t.Errorf("Valid(%q) = %v, want %v", in, got, want)
		}
	}
}

type oneByteReader struct {
	data []byte
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = r.data[0]
	r.data = r.data[1:]
	return 1, nil
}

type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, r.err
}
