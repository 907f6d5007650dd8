// Package version contains version information.
package version

import "runtime"

// Version information for logc, set at build time with -ldflags "-X".
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Info is the build metadata attached to crash records.
type Info struct {
	Version   string `yaml:"version"`
	BuildDate string `yaml:"build_date"`
	GitCommit string `yaml:"git_commit"`
	GoVersion string `yaml:"go_version"`
	Platform  string `yaml:"platform"`
}

// GetVersion returns the full version string
func GetVersion() string {
	return Version
}

// GetFullVersion returns version with build metadata
func GetFullVersion() string {
	return Version + " (build: " + BuildDate + ", commit: " + GitCommit + ")"
}

// Current returns the build metadata of the running binary.
func Current() Info {
	return Info{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}
