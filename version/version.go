// Package version holds build-time version information, set via ldflags:
//
//	go build -ldflags "-X github.com/PhilUlb/hybrid-pdf-parser/version.GitRelease=v0.1.0"
package version

import "runtime"

var (
	// GitRelease is the release tag or "dev" for local builds.
	GitRelease = "dev"

	// GitCommit is the commit hash the binary was built from.
	GitCommit = "unknown"

	// GitCommitDate is the commit date of the build.
	GitCommitDate = "unknown"
)

// GoInfo reports the Go runtime version used for the build.
var GoInfo = runtime.Version()
