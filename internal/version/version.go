// Package version reports build metadata for the jsboard binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X github.com/ludo-technologies/jsboard/internal/version.Version=..."
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Info is the build metadata exposed by `jsboard version --json` and /healthz.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get merges the linker-provided values with the VCS stamp the Go
// toolchain embeds. Linker values win.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.Version == "" {
		info.Version = "dev"
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = strings.TrimPrefix(bi.Main.Version, "v")
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// ShortCommit is the first 12 characters of the commit hash.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 12 {
		return i.Commit[:12]
	}
	return i.Commit
}

// String renders the one-line form used by `jsboard version`.
func (i Info) String() string {
	return "jsboard version " + i.Version
}

// Long renders every known field.
func (i Info) Long() string {
	var b strings.Builder
	b.WriteString(i.String())
	if c := i.ShortCommit(); c != "" {
		fmt.Fprintf(&b, "\n  commit:   %s", c)
		if i.Modified {
			b.WriteString(" (dirty)")
		}
	}
	if i.BuildDate != "" {
		fmt.Fprintf(&b, "\n  built:    %s", i.BuildDate)
	}
	fmt.Fprintf(&b, "\n  go:       %s\n  platform: %s", i.GoVersion, i.Platform)
	return b.String()
}
