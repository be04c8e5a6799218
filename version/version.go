// Package version holds build information injected via ldflags.
package version

var (
	// GitRelease is the release tag, set at build time.
	GitRelease = "dev"

	// GitCommit is the commit hash, set at build time.
	GitCommit = "unknown"

	// BuildDate is the build timestamp, set at build time.
	BuildDate = "unknown"
)
