package version

import "fmt"

var (
	// Version is the launcher's own semantic version, distinct from the SDK
	// revision the clone is checked out at. Overridable via ldflags.
	Version = "1.0.0"
	// Commit is the launcher repository's short SHA stamped at build time,
	// or "none" for local builds.
	Commit = "none"
	// BuildTime is the UTC timestamp the launcher binary was built at.
	BuildTime = "unknown"
)

// Short returns only the launcher's semantic version string.
func Short() string {
	return Version
}

// Full returns the launcher's build identity for diagnostic logging: version,
// commit and build time in one line.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}
