// Package version holds build metadata stamped in at link time via
// -ldflags "-X github.com/jeanpaul/recall/pkg/version.Version=...".
package version

var (
	Version = "dev"
	Commit  = "unknown"
)
