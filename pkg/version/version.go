// Package version reports which build of projector is running.
//
// Release builds stamp the variables below with -ldflags:
//
//	go build -ldflags "-X projector/pkg/version.Version=v1.2.3 -X projector/pkg/version.Commit=abcdefg"
//
// Builds without ldflags (go install, plain go build) fall back to the module
// version and VCS stamps recorded by the Go toolchain.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Placeholders used until a build stamps real values.
const (
	defaultVersion   = "dev"
	defaultCommit    = "none"
	defaultBuildTime = "unknown"
)

var (
	Version   = defaultVersion
	Commit    = defaultCommit
	BuildTime = defaultBuildTime
)

// Info describes the running binary.
type Info struct {
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	Platform  string
}

// Get returns the version information of the running binary.
func Get() Info {
	bi, _ := debug.ReadBuildInfo()
	return resolve(Version, Commit, BuildTime, bi)
}

// resolve merges the ldflags values with the toolchain's build info.
// Stamped values always win; bi may be nil.
func resolve(ver, commit, built string, bi *debug.BuildInfo) Info {
	info := Info{
		Version:   ver,
		GitCommit: commit,
		BuildTime: built,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if bi == nil {
		return info
	}

	if info.Version == defaultVersion && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}

	var modified bool
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == defaultCommit && s.Value != "" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == defaultBuildTime && s.Value != "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if modified && commit == defaultCommit && info.GitCommit != defaultCommit {
		info.GitCommit += "-dirty"
	}
	return info
}

// String formats the information on one line, e.g.
//
//	projector version v1.2.3 (commit: abcdefg) built at 2024-04-27T15:04:05Z with go1.24.0 on linux/amd64
func (i Info) String() string {
	return fmt.Sprintf("projector version %s (commit: %s) built at %s with %s on %s",
		i.Version, i.GitCommit, i.BuildTime, i.GoVersion, i.Platform)
}
