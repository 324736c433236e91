package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/explorer-exclude/internal/utils"
)

// Edition identifies an editor build; each keeps its user settings in its own directory.
type Edition string

const (
	// EditionStable is the regular release.
	EditionStable Edition = "stable"
	// EditionInsiders is the nightly build.
	EditionInsiders Edition = "insiders"
	// EditionOSS is the open-source build.
	EditionOSS Edition = "oss"
	// EditionCodium is VSCodium.
	EditionCodium Edition = "vscodium"

	userDirectoryName = "User"
)

var editionDirectories = map[Edition]string{
	EditionStable:   "Code",
	EditionInsiders: "Code - Insiders",
	EditionOSS:      "Code - OSS",
	EditionCodium:   "VSCodium",
}

// ParseEdition maps a configured edition name to an Edition. Empty selects the stable build.
func ParseEdition(name string) (Edition, error) {
	normalized := Edition(strings.ToLower(strings.TrimSpace(name)))
	if normalized == "" {
		return EditionStable, nil
	}
	if _, known := editionDirectories[normalized]; !known {
		return "", fmt.Errorf("unsupported editor edition %q", name)
	}
	return normalized, nil
}

// UserSettingsPath returns the user settings file of the given edition:
// $XDG_CONFIG_HOME or ~/.config on Linux, %APPDATA% on Windows, ~/Library/Application Support on macOS.
func UserSettingsPath(edition Edition) (string, error) {
	directoryName, known := editionDirectories[edition]
	if !known {
		return "", fmt.Errorf("unsupported editor edition %q", edition)
	}
	configDirectory, configError := os.UserConfigDir()
	if configError != nil {
		return "", fmt.Errorf("locate user configuration directory: %w", configError)
	}
	return filepath.Join(configDirectory, directoryName, userDirectoryName, utils.SettingsFileName), nil
}

// WorkspaceSettingsPath returns the settings file of a workspace folder.
func WorkspaceSettingsPath(folder string) string {
	return filepath.Join(folder, utils.WorkspaceSettingsDirectoryName, utils.SettingsFileName)
}
