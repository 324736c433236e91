package settings

import "github.com/temirov/explorer-exclude/internal/utils"

// Keys and marker values shared by the user and workspace documents.
const (
	// FilesExcludeKey holds the explorer's exclude map: glob pattern to value.
	FilesExcludeKey = "files.exclude"
	// OwnershipTag is the exclude value marking an entry as written by explorer-exclude.
	OwnershipTag = "explorerExcludedFiles"
	// PatternsKey holds the list of pattern sources.
	PatternsKey = "explorerExcludedFiles.patterns"
	// ShowKey is the per-workspace flag that reveals excluded files.
	ShowKey = "explorerExcludedFiles.show"
	// ReferencePrefix marks a pattern that names a file of further patterns.
	ReferencePrefix = "file://"
)

// DefaultPatterns is the pattern list used when nothing else is configured.
var DefaultPatterns = []string{ReferencePrefix + utils.GitIgnoreFileName}

// ExcludeValue is the value of one exclude-map entry: either owned by explorer-exclude
// or defined by the user with an arbitrary JSON value.
type ExcludeValue struct {
	owned     bool
	userValue any
}

// Owned returns the value of an entry written by explorer-exclude.
func Owned() ExcludeValue {
	return ExcludeValue{owned: true}
}

// UserDefined returns the value of an entry authored by the user.
func UserDefined(value any) ExcludeValue {
	return ExcludeValue{userValue: value}
}

// ClassifyExcludeValue interprets a decoded exclude-map value.
func ClassifyExcludeValue(raw any) ExcludeValue {
	if text, isString := raw.(string); isString && text == OwnershipTag {
		return Owned()
	}
	return UserDefined(raw)
}

// IsOwned reports whether explorer-exclude may remove the entry.
func (value ExcludeValue) IsOwned() bool {
	return value.owned
}

// UserValue returns the user's value; it is nil for owned entries.
func (value ExcludeValue) UserValue() any {
	return value.userValue
}

// Raw returns the JSON value stored in the exclude map.
func (value ExcludeValue) Raw() any {
	if value.owned {
		return OwnershipTag
	}
	return value.userValue
}

// ExcludeEntry is one pattern of an exclude map with its classified value.
type ExcludeEntry struct {
	Pattern string
	Value   ExcludeValue
}

// ExcludeEntries lists the members of an exclude map in document order.
func ExcludeEntries(excludeMap *Object) []ExcludeEntry {
	entries := make([]ExcludeEntry, 0, excludeMap.Len())
	for _, pattern := range excludeMap.Keys() {
		raw, _ := excludeMap.Get(pattern)
		entries = append(entries, ExcludeEntry{Pattern: pattern, Value: ClassifyExcludeValue(raw)})
	}
	return entries
}

// RemoveOwnedEntries deletes every owned entry from an exclude map and returns how many were removed.
// User-defined entries are never touched.
func RemoveOwnedEntries(excludeMap *Object) int {
	removed := 0
	for _, entry := range ExcludeEntries(excludeMap) {
		if entry.Value.IsOwned() && excludeMap.Delete(entry.Pattern) {
			removed++
		}
	}
	return removed
}
