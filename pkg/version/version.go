// Package version reports the build version of gss-search.
package version

import "runtime/debug"

// Set at build time with -ldflags "-X github.com/rshade/gss-search/pkg/version.version=v1.2.3".
//
//nolint:gochecknoglobals // Populated by the linker.
var (
	version = ""
	commit  = ""
)

// GetVersion returns the linker-provided version, else the module version
// recorded in the build info, else "dev".
func GetVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// GetCommit returns the linker-provided commit, or "unknown".
func GetCommit() string {
	if commit != "" {
		return commit
	}
	return "unknown"
}
