// Package build exposes version metadata stamped into the driver-notify binary.
package build

import "fmt"

// Set at link time, e.g.
// -ldflags "-X github.com/swiftline-carrier/driver-notify/internal/build.Version=v1.2.0".
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

// String returns a single human-readable build info string.
func String() string {
	return fmt.Sprintf("driver-notify %s (commit %s, built %s)", Version, CommitSHA, BuildDate)
}
