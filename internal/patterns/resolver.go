// Package patterns expands configured exclude pattern sources into literal glob patterns.
package patterns

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/explorer-exclude/internal/settings"
)

const (
	commentPrefix       = "#"
	pathSeparatorPrefix = "/"
	lineSeparator       = "\n"
)

// PresenceFunc reports whether a pattern is already a key of the target exclude map.
type PresenceFunc func(pattern string) bool

// IsReference reports whether pattern names a file of patterns rather than being a glob itself.
// The prefix is matched case-insensitively.
func IsReference(pattern string) bool {
	return len(pattern) >= len(settings.ReferencePrefix) &&
		strings.EqualFold(pattern[:len(settings.ReferencePrefix)], settings.ReferencePrefix)
}

// ReferencePath returns the file named by a reference pattern, resolved against the workspace root.
func ReferencePath(workspaceRoot string, pattern string) string {
	return filepath.Join(workspaceRoot, filepath.FromSlash(pattern[len(settings.ReferencePrefix):]))
}

// Resolve expands sources into literal patterns for the workspace rooted at workspaceRoot.
// Reference entries are replaced by the lines of the file they name; a missing file contributes nothing.
// Patterns reported present by isPresent, and patterns already emitted, are skipped.
func Resolve(workspaceRoot string, sources []string, isPresent PresenceFunc) ([]string, error) {
	if isPresent == nil {
		isPresent = func(string) bool { return false }
	}
	emitted := map[string]struct{}{}
	var resolved []string
	emit := func(pattern string) {
		if _, seen := emitted[pattern]; seen || isPresent(pattern) {
			return
		}
		emitted[pattern] = struct{}{}
		resolved = append(resolved, pattern)
	}

	for _, source := range sources {
		if !IsReference(source) {
			emit(source)
			continue
		}
		referencedPatterns, loadError := LoadReferenceFile(ReferencePath(workspaceRoot, source))
		if loadError != nil {
			return nil, fmt.Errorf("resolve %s in %s: %w", source, workspaceRoot, loadError)
		}
		for _, pattern := range referencedPatterns {
			emit(pattern)
		}
	}
	return resolved, nil
}

// LoadReferenceFile reads an ignore-style file and returns its patterns in file order.
// Blank lines and comment lines are dropped and leading slashes are stripped.
// A missing file yields no patterns and no error.
//
// #nosec G304
func LoadReferenceFile(referenceFilePath string) ([]string, error) {
	content, readError := os.ReadFile(referenceFilePath)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return nil, nil
		}
		return nil, readError
	}

	var filePatterns []string
	for _, line := range strings.Split(string(content), lineSeparator) {
		trimmedLine := strings.TrimSpace(line)
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		pattern := strings.TrimLeft(trimmedLine, pathSeparatorPrefix)
		if pattern == "" {
			continue
		}
		filePatterns = append(filePatterns, pattern)
	}
	return filePatterns, nil
}

// ReferencedFiles returns the absolute paths of the files named by reference sources.
func ReferencedFiles(workspaceRoot string, sources []string) []string {
	var referencedFiles []string
	for _, source := range sources {
		if IsReference(source) {
			referencedFiles = append(referencedFiles, ReferencePath(workspaceRoot, source))
		}
	}
	return referencedFiles
}
