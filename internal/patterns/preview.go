package patterns

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Match is the outcome of evaluating one exclude glob against a workspace.
type Match struct {
	Pattern string
	Paths   []string
	Valid   bool
}

// Preview evaluates exclude globs against the files under workspaceRoot.
// Invalid globs are reported with Valid false rather than failing the preview.
func Preview(workspaceRoot string, globs []string) ([]Match, error) {
	workspaceFileSystem := os.DirFS(workspaceRoot)
	matches := make([]Match, 0, len(globs))
	for _, glob := range globs {
		normalizedGlob := strings.TrimSuffix(glob, "/")
		if normalizedGlob == "" || !doublestar.ValidatePattern(normalizedGlob) {
			matches = append(matches, Match{Pattern: glob})
			continue
		}
		matchedPaths, globError := doublestar.Glob(workspaceFileSystem, normalizedGlob)
		if globError != nil {
			return nil, fmt.Errorf("match %s in %s: %w", glob, workspaceRoot, globError)
		}
		matches = append(matches, Match{Pattern: glob, Paths: matchedPaths, Valid: true})
	}
	return matches, nil
}
