// Package utils contains general helper functions used across explorer-exclude.
package utils

import (
	"path/filepath"
	"strings"
)

// Settings and configuration file constants used across the project.
const (
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// WorkspaceSettingsDirectoryName is the editor's per-workspace settings directory.
	WorkspaceSettingsDirectoryName = ".vscode"
	// SettingsFileName is the editor's settings file name, shared by user and workspace scopes.
	SettingsFileName = "settings.json"
	// GlobalConfigDirectoryName is the directory under the home directory holding the global configuration.
	GlobalConfigDirectoryName = ".explorer-exclude"
	// GlobalConfigFileName is the global configuration file name.
	GlobalConfigFileName = "config.yaml"
	// LocalConfigFileName is the configuration file looked up in the working directory.
	LocalConfigFileName = ".explorer-exclude.yaml"
)

// DeduplicateStrings removes duplicate values from a slice while preserving order.
// The first occurrence of each unique value is kept.
func DeduplicateStrings(values []string) []string {
	encounteredValues := make(map[string]struct{})
	result := make([]string, 0, len(values))
	for _, value := range values {
		if _, exists := encounteredValues[value]; !exists {
			encounteredValues[value] = struct{}{}
			result = append(result, value)
		}
	}
	return result
}

// ContainsString checks if a slice of strings contains a specific target string.
func ContainsString(stringSlice []string, targetString string) bool {
	for _, currentString := range stringSlice {
		if currentString == targetString {
			return true
		}
	}
	return false
}

// SubtractStrings returns the members of minuend that are absent from subtrahend, in minuend order.
func SubtractStrings(minuend []string, subtrahend []string) []string {
	var difference []string
	for _, value := range minuend {
		if !ContainsString(subtrahend, value) {
			difference = append(difference, value)
		}
	}
	return difference
}

// NormalizeFolders converts folder paths to clean absolute paths and removes blanks and duplicates.
// Paths that cannot be made absolute are kept in their cleaned form.
func NormalizeFolders(folders []string) []string {
	normalized := make([]string, 0, len(folders))
	for _, folder := range folders {
		trimmedFolder := strings.TrimSpace(folder)
		if trimmedFolder == "" {
			continue
		}
		absoluteFolder, absoluteError := filepath.Abs(trimmedFolder)
		if absoluteError != nil {
			normalized = append(normalized, filepath.Clean(trimmedFolder))
			continue
		}
		normalized = append(normalized, absoluteFolder)
	}
	return DeduplicateStrings(normalized)
}
