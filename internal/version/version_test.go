package version

import (
	"runtime/debug"
	"testing"
)

func TestDescribe(t *testing.T) {
	cases := []struct {
		name     string
		version  string
		settings []debug.BuildSetting
		want     string
	}{
		{"tagged", "v1.2.3", nil, "v1.2.3"},
		{"devel without vcs", "(devel)", nil, "(devel)"},
		{
			"devel with revision",
			"(devel)",
			[]debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789abcdef0123"}},
			"(devel 0123456789ab)",
		},
		{
			"dirty",
			"",
			[]debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123"},
				{Key: "vcs.modified", Value: "true"},
			},
			"(devel abc123-dirty)",
		},
		{"pseudo", "v0.0.0-20250101120000-0123456789ab", nil, "(devel)"},
		{"pseudo prerelease", "v1.2.4-0.20250101120000-0123456789ab", nil, "(devel)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info := &debug.BuildInfo{Main: debug.Module{Version: tc.version}, Settings: tc.settings}
			if got := describe(info); got != tc.want {
				t.Fatalf("describe() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDetails(t *testing.T) {
	info := &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "-trimpath", Value: "true"},
		{Key: "vcs.revision", Value: "abc123"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		{Key: "vcs.modified", Value: "false"},
	}}
	got := details(info, "go1.25.3", "linux/amd64")
	want := []Detail{
		{"go", "go1.25.3"},
		{"platform", "linux/amd64"},
		{"revision", "abc123"},
		{"committed", "2026-01-02T03:04:05Z"},
		{"modified", "false"},
	}
	if len(got) != len(want) {
		t.Fatalf("details() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("details()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if got := details(nil, "go1.25.3", "linux/amd64"); len(got) != 2 {
		t.Fatalf("details(nil) = %v, want toolchain and platform only", got)
	}
}
