// Package version carries build metadata stamped by the linker.
package version

import "fmt"

// These variables are populated by the Go linker (LDFLAGS) at build time.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String returns the full version line for --version output.
func String() string {
	return fmt.Sprintf("loopcheck %s (%s, built %s)", Version, CommitHash, BuildDate)
}
