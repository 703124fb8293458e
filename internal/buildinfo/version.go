// Package buildinfo carries the version stamp written into persisted snapshots.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/arthur-debert/nanosnap/internal/buildinfo.Version=v1.0.0"
//
// Without ldflags the module version recorded by the Go toolchain is used,
// falling back to "dev".
package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// Build-time variables (set via ldflags)
var (
	Version   = ""
	Commit    = "unknown"
	BuildTime = "unknown"
)

const devVersion = "dev"

// Info contains build information
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

// Get returns the build information
func Get() Info {
	return Info{
		Version:   Current(),
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// Current returns the version stamped into snapshot documents
func Current() string {
	if Version != "" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return devVersion
}

// String returns a formatted version string
func String() string {
	return Current() + " (" + Commit + ") built at " + BuildTime
}
