package twcmdtest

import (
	"reflect"
	"testing"
)

func TestParseArgs_SupportsFlagsAndCommandWithoutDashDash(t *testing.T) {
	opts, cmd, err := parseArgs([]string{
		"--fixture", "in.txt=abc",
		"--fixture", "ref.bin=@/tmp/ref.bin",
		"--keep",
		"testwrap", "id", "hash", "exe", "in.txt", "-s 3",
	})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if !opts.keep {
		t.Fatalf("expected keep=true")
	}
	wantFixtures := []fixture{
		{name: "in.txt", content: "abc"},
		{name: "ref.bin", from: "/tmp/ref.bin"},
	}
	if !reflect.DeepEqual(opts.fixtures, wantFixtures) {
		t.Fatalf("fixtures = %+v, want %+v", opts.fixtures, wantFixtures)
	}
	wantCmd := []string{"testwrap", "id", "hash", "exe", "in.txt", "-s 3"}
	if !reflect.DeepEqual(cmd, wantCmd) {
		t.Fatalf("cmd = %q, want %q", cmd, wantCmd)
	}
}

func TestParseArgs_SupportsDashDashDelimiter(t *testing.T) {
	opts, cmd, err := parseArgs([]string{"--keep", "--", "sh", "-c", "echo hi"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if !opts.keep {
		t.Fatalf("expected keep=true")
	}
	if !reflect.DeepEqual(opts.fixtures, defaultFixtures) {
		t.Fatalf("fixtures = %+v, want defaults", opts.fixtures)
	}
	if want := []string{"sh", "-c", "echo hi"}; !reflect.DeepEqual(cmd, want) {
		t.Fatalf("cmd = %q, want %q", cmd, want)
	}
}

func TestParseArgs_RequiresCommand(t *testing.T) {
	if _, _, err := parseArgs([]string{"--keep"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseArgs_Help(t *testing.T) {
	opts, cmd, err := parseArgs([]string{"-h"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if !opts.help || cmd != nil {
		t.Fatalf("help=%v cmd=%q", opts.help, cmd)
	}
}

func TestParseArgs_RejectsUnsafeFixtures(t *testing.T) {
	for _, raw := range []string{"/abs=x", "../escape=x", "noequals", "=x"} {
		if _, _, err := parseArgs([]string{"--fixture", raw, "true"}); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
