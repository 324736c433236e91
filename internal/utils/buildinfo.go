// Package utils provides helper functions, including version retrieval.
package utils

import (
	"runtime/debug"
)

const (
	unknownVersion     = "unknown"
	developmentVersion = "(devel)"
)

// Version is set at link time with -ldflags "-X github.com/temirov/explorer-exclude/internal/utils.Version=...".
var Version = EmptyString

// GetApplicationVersion reports the linked version, then the module version from Go build info.
func GetApplicationVersion() string {
	if Version != EmptyString {
		return Version
	}
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != developmentVersion {
		return buildInfo.Main.Version
	}
	return unknownVersion
}
