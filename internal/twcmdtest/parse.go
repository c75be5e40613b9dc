// Argument parsing for the `twcmdtest` harness.
//
// Supported flags:
//   - `--fixture NAME=CONTENT` (repeatable; `NAME=@PATH` copies a file)
//   - `--keep` (preserve the work directory for debugging)
//   - `-h/--help`
package twcmdtest

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

type fixture struct {
	name    string
	content string
	// from is set for NAME=@PATH fixtures.
	from string
}

type options struct {
	fixtures []fixture
	keep     bool
	help     bool
}

var defaultFixtures = []fixture{{name: "hello.txt", content: "hello"}}

func parseArgs(args []string) (options, []string, error) {
	var opts options

	fs := flag.NewFlagSet("twcmdtest", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.Func("fixture", "", func(raw string) error {
		f, err := parseFixture(raw)
		if err != nil {
			return err
		}
		opts.fixtures = append(opts.fixtures, f)
		return nil
	})
	fs.BoolVar(&opts.keep, "keep", false, "")

	fs.BoolVar(&opts.help, "help", false, "")
	fs.BoolVar(&opts.help, "h", false, "")

	if err := fs.Parse(args); err != nil {
		return options{}, nil, err
	}
	if opts.help {
		return opts, nil, nil
	}
	if len(opts.fixtures) == 0 {
		opts.fixtures = defaultFixtures
	}

	cmd := fs.Args()
	if len(cmd) == 0 {
		return options{}, nil, errors.New("missing command")
	}

	return opts, cmd, nil
}

func parseFixture(raw string) (fixture, error) {
	name, content, ok := strings.Cut(raw, "=")
	if !ok || name == "" {
		return fixture{}, fmt.Errorf("fixture must be NAME=CONTENT: %q", raw)
	}
	if filepath.IsAbs(name) {
		return fixture{}, fmt.Errorf("fixture name must be a relative path: %q", name)
	}
	clean := filepath.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fixture{}, fmt.Errorf("fixture must not escape the work directory: %q", name)
	}
	if from, isFile := strings.CutPrefix(content, "@"); isFile {
		return fixture{name: clean, from: from}, nil
	}
	return fixture{name: clean, content: content}, nil
}
