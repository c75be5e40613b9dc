package version

import (
	"runtime"
	"runtime/debug"
	"strings"
)

// Detail is one labeled fact about the build.
type Detail struct {
	Label string
	Value string
}

// String describes the running binary: the module version for tagged
// builds, otherwise "(devel)" followed by the VCS revision when known.
func String() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "(devel)"
	}
	return describe(info)
}

// Details lists the toolchain, platform and VCS state the binary was built
// from, for bug reports.
func Details() []Detail {
	info, _ := debug.ReadBuildInfo()
	return details(info, runtime.Version(), runtime.GOOS+"/"+runtime.GOARCH)
}

func details(info *debug.BuildInfo, goVersion, platform string) []Detail {
	out := []Detail{
		{Label: "go", Value: goVersion},
		{Label: "platform", Value: platform},
	}
	if info == nil {
		return out
	}
	labels := map[string]string{
		"vcs.revision": "revision",
		"vcs.time":     "committed",
		"vcs.modified": "modified",
	}
	for _, s := range info.Settings {
		if label, ok := labels[s.Key]; ok && s.Value != "" {
			out = append(out, Detail{Label: label, Value: s.Value})
		}
	}
	return out
}

func describe(info *debug.BuildInfo) string {
	v := info.Main.Version
	if v != "" && v != "(devel)" && !strings.Contains(v, "+dirty") && !isPseudoVersion(v) {
		return v
	}

	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return "(devel)"
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if dirty {
		rev += "-dirty"
	}
	return "(devel " + rev + ")"
}

// isPseudoVersion matches vX.Y.Z-yyyymmddhhmmss-abcdefabcdef forms.
func isPseudoVersion(v string) bool {
	v, _, _ = strings.Cut(v, "+")

	parts := strings.Split(v, "-")
	if len(parts) < 3 {
		return false
	}
	ts := parts[len(parts)-2]
	hash := parts[len(parts)-1]
	if i := strings.LastIndex(ts, "."); i >= 0 {
		ts = ts[i+1:]
	}
	return len(ts) == 14 && strings.Trim(ts, "0123456789") == "" &&
		len(hash) >= 12 && strings.Trim(strings.ToLower(hash), "0123456789abcdef") == ""
}
