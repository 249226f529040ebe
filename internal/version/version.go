// Package version holds the build-time version variables for the paws binary.
// The zero values ("dev", "none", "unknown") are used for local builds.
// Release builds inject the real values via -ldflags, e.g.
//
//	-X github.com/paws-sec/paws/internal/version.Version=v0.3.0
package version

import "fmt"

// These variables are overridden by ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns the formatted version string printed by paws version.
func Info() string {
	return fmt.Sprintf(
		"paws version %s\ncommit: %s\nbuilt: %s\n",
		Version,
		Commit,
		Date,
	)
}
