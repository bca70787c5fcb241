// Package version reports the nexusboot build version.
package version

import "runtime/debug"

// version is set at build time via
// -ldflags "-X nexusboot/internal/version.version=v1.2.3".
var version = "" //nolint:gochecknoglobals // ldflags requires package-level var

// String returns the ldflags version, else the module version recorded by
// "go install", else "dev".
func String() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}
