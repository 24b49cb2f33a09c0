// Package version holds build metadata injected at link time.
package version

var (
	// Version is the semantic version, set via -ldflags.
	Version = "dev"
	// Commit is the git commit hash, set via -ldflags.
	Commit = "local"
	// Date is the build timestamp, set via -ldflags.
	Date = "development"
)
