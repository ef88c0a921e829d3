// Package version holds build metadata stamped in at link time.
package version

// These variables are populated via -ldflags at build time.
//
//nolint:gochecknoglobals // Build metadata must be package-level for ldflags injection.
var (
	// Version is the semantic version of the binary.
	Version = "1.0.0"

	// Commit is the git commit hash the binary was built from.
	Commit = "none"

	// BuildTime is the timestamp of the build.
	BuildTime = "unknown"
)

// Short returns just the version number.
func Short() string {
	return Version
}

// Full returns the version together with commit and build time.
func Full() string {
	return "version: " + Version + ", commit: " + Commit + ", built at: " + BuildTime
}
