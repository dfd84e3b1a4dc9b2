// Package version reports which callgen build is running. Release builds
// set the variables below with -ldflags; `go install` builds fall back to
// the module version recorded in the binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/callgen/errors"
)

const modulePath = "github.com/teranos/callgen"

// Set via -ldflags "-X github.com/teranos/callgen/version.Version=...".
var (
	Version    = "dev"
	CommitHash = "dev"
	BuildTime  = "unknown"
)

// Info describes the running build. Generated file headers and the
// manifest record Version.
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the running build's info.
func Get() Info {
	info := Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.IsDev() {
		fromBuildInfo(&info)
	}
	return info
}

func fromBuildInfo(info *Info) {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Path != modulePath {
		return
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.CommitHash == "dev" {
				info.CommitHash = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		}
	}
}

// IsDev reports whether this is an untagged development build.
func (i Info) IsDev() bool {
	return i.Version == "" || i.Version == "dev"
}

// Semver parses Version. Development builds have none.
func (i Info) Semver() (*semver.Version, error) {
	if i.IsDev() {
		return nil, errors.New("development build has no release version")
	}
	return semver.NewVersion(i.Version)
}

func (i Info) String() string {
	v := i.Version
	if i.IsDev() {
		v = "dev"
	}
	return fmt.Sprintf("callgen %s (commit %s, built %s)", v, i.Short(), i.BuildTime)
}

// Short is the abbreviated commit hash.
func (i Info) Short() string {
	if len(i.CommitHash) > 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}
