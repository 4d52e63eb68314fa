package version

import "fmt"

var (
	// Version is the release version, overridden via -ldflags "-X".
	Version = "1.0.0"
	// Commit is the short git SHA of the build.
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// productName prefixes the User-Agent header.
const productName = "ShoreTemp"

// Short returns only the release version.
func Short() string {
	return Version
}

// Full returns version, commit and build time on one line.
func Full() string {
	return fmt.Sprintf("shoretemp %s (commit %s, built %s)", Version, Commit, BuildTime)
}

// UserAgent identifies the scraper to the report host.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (weather check)", productName, Version)
}
