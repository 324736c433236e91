package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettingsFile(t *testing.T, filePath string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
}

func readSettingsFile(t *testing.T, filePath string) string {
	t.Helper()
	content, err := os.ReadFile(filePath)
	require.NoError(t, err)
	return string(content)
}

func TestLoadMissingFileYieldsEmptyDocument(t *testing.T) {
	t.Parallel()

	document, err := Load(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	assert.False(t, document.Exists())
	assert.Zero(t, document.Root().Len())
	assert.False(t, document.Changed())

	wrote, err := document.Save()
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.NoFileExists(t, document.Path())
}

func TestParseAcceptsCommentsAndTrailingCommas(t *testing.T) {
	t.Parallel()

	content := "\xEF\xBB\xBF{\n  // editor font\n  \"editor.fontSize\": 14,\n  /* block */\n  \"files.exclude\": {\"**/.git\": true,},\n}\n"
	root, err := Parse([]byte(content))
	require.NoError(t, err)
	assert.Equal(t, []string{"editor.fontSize", "files.exclude"}, root.Keys())

	fontSize, _ := root.Get("editor.fontSize")
	assert.Equal(t, json.Number("14"), fontSize)
	excludeMap, isObject := root.Object(FilesExcludeKey)
	require.True(t, isObject)
	assert.Equal(t, 1, excludeMap.Len())
}

func TestParseBlankContentIsEmptyObject(t *testing.T) {
	t.Parallel()

	root, err := Parse([]byte(" \n\t"))
	require.NoError(t, err)
	assert.Zero(t, root.Len())
}

func TestParseRejectsNonObjectRoot(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`["a"]`))
	require.ErrorIs(t, err, ErrNotObject)
	_, err = Parse([]byte(`{"a": `))
	require.Error(t, err)
}

func TestFormatPreservesKeyOrderAndAvoidsHTMLEscaping(t *testing.T) {
	t.Parallel()

	root, err := Parse([]byte(`{"z": 1, "a": {"y": [1, "<b>", {"k": null}], "b": false}, "m": "a&b"}`))
	require.NoError(t, err)
	formatted, err := Format(root)
	require.NoError(t, err)

	expected := "{\n" +
		"  \"z\": 1,\n" +
		"  \"a\": {\n" +
		"    \"y\": [\n" +
		"      1,\n" +
		"      \"<b>\",\n" +
		"      {\n" +
		"        \"k\": null\n" +
		"      }\n" +
		"    ],\n" +
		"    \"b\": false\n" +
		"  },\n" +
		"  \"m\": \"a&b\"\n" +
		"}"
	assert.Equal(t, expected, string(formatted))
}

func TestChangedIgnoresMemberOrder(t *testing.T) {
	t.Parallel()

	filePath := filepath.Join(t.TempDir(), "settings.json")
	writeSettingsFile(t, filePath, `{"a": 1, "b": {"x": true, "y": "z"}}`)
	document, err := Load(filePath)
	require.NoError(t, err)

	nested, _ := document.Root().Object("b")
	nested.Delete("x")
	nested.Set("x", true)
	document.Root().Delete("a")
	document.Root().Set("a", json.Number("1"))
	assert.False(t, document.Changed(), "reordering members is not a change")

	nested.Set("x", false)
	assert.True(t, document.Changed())
}

func TestSaveWritesOnlyWhenChanged(t *testing.T) {
	t.Parallel()

	filePath := filepath.Join(t.TempDir(), ".vscode", "settings.json")
	document, err := Load(filePath)
	require.NoError(t, err)

	document.Root().Set(ShowKey, true)
	wrote, err := document.Save()
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.Equal(t, "{\n  \"explorerExcludedFiles.show\": true\n}", readSettingsFile(t, filePath))

	wrote, err = document.Save()
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.True(t, document.Exists())
}

func TestRemoveWithDirectory(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name            string
		extraFile       string
		expectedRemoved bool
	}{
		{name: "sole file", expectedRemoved: true},
		{name: "shared directory", extraFile: "launch.json", expectedRemoved: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			rootDirectory := t.TempDir()
			filePath := WorkspaceSettingsPath(rootDirectory)
			writeSettingsFile(t, filePath, `{}`)
			if testCase.extraFile != "" {
				writeSettingsFile(t, filepath.Join(filepath.Dir(filePath), testCase.extraFile), `{}`)
			}
			document, err := Load(filePath)
			require.NoError(t, err)

			removed, err := document.RemoveWithDirectory()
			require.NoError(t, err)
			assert.Equal(t, testCase.expectedRemoved, removed)
			if testCase.expectedRemoved {
				assert.NoDirExists(t, filepath.Dir(filePath))
			} else {
				assert.DirExists(t, filepath.Dir(filePath))
			}
		})
	}
}
