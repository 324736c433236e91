package settings

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEdition(t *testing.T) {
	t.Parallel()

	testCases := map[string]Edition{
		"":         EditionStable,
		"Insiders": EditionInsiders,
		" oss ":    EditionOSS,
		"vscodium": EditionCodium,
	}
	for input, expected := range testCases {
		edition, err := ParseEdition(input)
		require.NoError(t, err, "edition %q", input)
		assert.Equal(t, expected, edition)
	}
	_, err := ParseEdition("sublime")
	assert.Error(t, err)
}

func TestUserSettingsPathOnLinux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	settingsPath, err := UserSettingsPath(EditionInsiders)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(configHome, "Code - Insiders", "User", "settings.json"), settingsPath)
}

func TestWorkspaceSettingsPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("p", ".vscode", "settings.json"), WorkspaceSettingsPath("p"))
}
