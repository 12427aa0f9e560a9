// Package version provides the running ckx version. Metadata written by an
// older version is migrated when this value changes.
package version

// These variables can be overridden at build time using ldflags:
// go build -ldflags "-X github.com/mesh-intelligence/ckx/internal/version.Version=0.5.0"
var (
	// Version is the semantic version of ckx.
	Version = "0.4.2"

	// Commit is the git commit hash (set at build time).
	Commit = "unknown"
)

// Info returns a formatted version string.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}
