// Package version reports which solink build is running. Release builds set Version through ldflags; binaries
// installed with `go install module@version` report the module version; development builds fall back to the VCS
// stamps Go embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Masterminds/semver"
)

// Build values set through ldflags, e.g. -X github.com/crytic/solink/version.Version=0.2.0
var (
	Version       = ""
	GitCommit     = ""
	GitCommitTime = ""
	GitTreeDirty  = ""
)

// defaultVersion is reported by builds that carry no version from ldflags or module metadata.
const defaultVersion = "0.1.0"

// Info describes a solink build.
type Info struct {
	// Version is the release version, without a leading "v".
	Version string
	// GitCommit is the full commit hash the binary was built from, if known.
	GitCommit string
	// GitCommitTime is the RFC 3339 commit time, if known.
	GitCommitTime string
	// GitTreeDirty is set when the working tree had uncommitted changes at build time.
	GitTreeDirty bool
	// GoVersion is the toolchain the binary was built with.
	GoVersion string
}

// GetInfo collects the build information of the running binary. ldflags values take precedence over module and VCS
// metadata.
func GetInfo() Info {
	info := Info{
		Version:       Version,
		GitCommit:     GitCommit,
		GitCommitTime: GitCommitTime,
		GitTreeDirty:  GitTreeDirty == "true",
		GoVersion:     runtime.Version(),
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		applyBuildInfo(&info, buildInfo, GitTreeDirty == "")
	}
	if info.Version == "" {
		info.Version = defaultVersion
	}
	return info
}

// applyBuildInfo fills the fields of info that are still unset from the metadata embedded by the Go toolchain.
func applyBuildInfo(info *Info, buildInfo *debug.BuildInfo, dirtyUnset bool) {
	// "(devel)" is reported for builds from a checkout rather than from the module proxy
	if info.Version == "" && buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
		info.Version = strings.TrimPrefix(buildInfo.Main.Version, "v")
	}

	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = setting.Value
			}
		case "vcs.time":
			if info.GitCommitTime == "" {
				info.GitCommitTime = setting.Value
			}
		case "vcs.modified":
			if dirtyUnset {
				info.GitTreeDirty = setting.Value == "true"
			}
		}
	}
}

// SemanticVersion parses the build's version.
func (i Info) SemanticVersion() (*semver.Version, error) {
	return semver.NewVersion(i.Version)
}

// ShortCommit returns the abbreviated commit hash.
func (i Info) ShortCommit() string {
	if len(i.GitCommit) > 7 {
		return i.GitCommit[:7]
	}
	return i.GitCommit
}

// FormattedTime returns the commit time for display, or "unknown".
func (i Info) FormattedTime() string {
	if i.GitCommitTime == "" {
		return "unknown"
	}
	t, err := time.Parse(time.RFC3339, i.GitCommitTime)
	if err != nil {
		return i.GitCommitTime
	}
	return t.Format("2006-01-02 15:04:05 MST")
}

// Short renders the version for `solink --version`. A known commit is appended as semver build metadata. Unparsable
// versions are printed as they are.
func (i Info) Short() string {
	v := i.Version
	if sv, err := i.SemanticVersion(); err == nil {
		v = sv.String()
	}
	if i.GitCommit == "" {
		return v
	}

	v += "+" + i.ShortCommit()
	if i.GitTreeDirty {
		v += "-dirty"
	}
	return v
}

// String renders the report printed by `solink version`.
func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "solink version %s\n", i.Short())
	if i.GitCommitTime != "" {
		fmt.Fprintf(&sb, "  Built:      %s\n", i.FormattedTime())
	}
	fmt.Fprintf(&sb, "  Go version: %s\n", i.GoVersion)
	return sb.String()
}
