// Package version exposes the build version injected with -ldflags.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

var (
	// Version is set at build time: -X .../version.Version=v1.2.3
	Version = "dev"
	Commit  = "unknown"
)

// Normalize ensures version string has "v" prefix for semver compatibility.
func Normalize(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// IsRelease reports whether the running binary carries a valid semantic version.
func IsRelease() bool {
	return semver.IsValid(Normalize(Version))
}

// String returns the canonical version, or the raw value for development builds.
func String() string {
	if IsRelease() {
		return semver.Canonical(Normalize(Version))
	}
	return Version
}
