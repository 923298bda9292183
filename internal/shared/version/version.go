// Package version carries build metadata set through -ldflags.
package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Set with -ldflags "-X github.com/orris-inc/satsgate/internal/shared/version.Version=1.2.3".
var (
	Version = "dev"
	Commit  = "unknown"
)

// Normalize ensures version string has "v" prefix for semver compatibility.
// Examples: "1.2.3" -> "v1.2.3", "v1.2.3" -> "v1.2.3"
func Normalize(version string) string {
	if version == "" {
		return ""
	}
	version = strings.TrimSpace(version)
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// IsRelease reports whether v is a tagged semver build rather than a dev build.
func IsRelease(v string) bool {
	return semver.IsValid(Normalize(v)) && semver.Prerelease(Normalize(v)) == ""
}

// String renders the build for `satsgate --version` and startup logs.
func String() string {
	v := Version
	if IsRelease(v) {
		v = semver.Canonical(Normalize(v))
	}
	return fmt.Sprintf("%s (commit %s)", v, Commit)
}
