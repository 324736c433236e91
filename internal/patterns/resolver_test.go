package patterns

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestFile creates a file with the specified content, failing the test on error.
func writeTestFile(t *testing.T, filePath string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
}

func presentIn(keys ...string) PresenceFunc {
	return func(pattern string) bool {
		for _, key := range keys {
			if key == pattern {
				return true
			}
		}
		return false
	}
}

// TestResolveExpandsReferenceFile verifies comment, blank, and leading-slash handling of reference files.
func TestResolveExpandsReferenceFile(t *testing.T) {
	t.Parallel()

	workspaceRoot := t.TempDir()
	writeTestFile(t, filepath.Join(workspaceRoot, ".gitignore"), "foo\n# comment\n\n/bar\n")

	resolved, err := Resolve(workspaceRoot, []string{"file://.gitignore"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar"}, resolved)
}

// TestResolveLiteralPatternsRoundTrip verifies literal patterns pass through minus existing keys.
func TestResolveLiteralPatternsRoundTrip(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		sources  []string
		present  []string
		expected []string
	}{
		{name: "all new", sources: []string{"**/*.log", "tmp"}, expected: []string{"**/*.log", "tmp"}},
		{name: "some present", sources: []string{"**/*.log", "tmp"}, present: []string{"tmp"}, expected: []string{"**/*.log"}},
		{name: "duplicates collapse", sources: []string{"tmp", "tmp"}, expected: []string{"tmp"}},
		{name: "empty", sources: nil, expected: nil},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			resolved, err := Resolve(t.TempDir(), testCase.sources, presentIn(testCase.present...))
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, resolved)
		})
	}
}

// TestResolveSkipsMissingReference verifies a missing reference file is ignored silently.
func TestResolveSkipsMissingReference(t *testing.T) {
	t.Parallel()

	resolved, err := Resolve(t.TempDir(), []string{"file://.gitignore", "out"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"out"}, resolved)
}

// TestResolveReferencePrefixIsCaseInsensitive verifies FILE:// is treated as a reference and nested paths resolve from the root.
func TestResolveReferencePrefixIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	workspaceRoot := t.TempDir()
	writeTestFile(t, filepath.Join(workspaceRoot, "config", "ignore.txt"), "build\r\n  coverage  \r\n//\r\n")

	resolved, err := Resolve(workspaceRoot, []string{"FILE://config/ignore.txt"}, presentIn("coverage"))
	require.NoError(t, err)
	assert.Equal(t, []string{"build"}, resolved)
}

func TestLoadReferenceFileAcceptsLongLines(t *testing.T) {
	t.Parallel()

	longPattern := strings.Repeat("a", 70000)
	referenceFilePath := filepath.Join(t.TempDir(), ".gitignore")
	writeTestFile(t, referenceFilePath, "node_modules\n"+longPattern+"\n/dist")

	filePatterns, err := LoadReferenceFile(referenceFilePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"node_modules", longPattern, "dist"}, filePatterns)
}

func TestLoadReferenceFileMissing(t *testing.T) {
	t.Parallel()

	filePatterns, err := LoadReferenceFile(filepath.Join(t.TempDir(), ".gitignore"))
	require.NoError(t, err)
	assert.Nil(t, filePatterns)
}

func TestIsReference(t *testing.T) {
	t.Parallel()

	testCases := map[string]bool{
		"file://.gitignore": true,
		"File://x":          true,
		"file:/x":           false,
		"node_modules":      false,
		"":                  false,
	}
	for pattern, expected := range testCases {
		assert.Equal(t, expected, IsReference(pattern), "pattern %q", pattern)
	}
}

func TestReferencedFiles(t *testing.T) {
	t.Parallel()

	workspaceRoot := t.TempDir()
	referencedFiles := ReferencedFiles(workspaceRoot, []string{"dist", "file://.gitignore", "file://.npmignore"})
	assert.Equal(t, []string{filepath.Join(workspaceRoot, ".gitignore"), filepath.Join(workspaceRoot, ".npmignore")}, referencedFiles)
}
