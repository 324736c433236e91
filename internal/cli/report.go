package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/temirov/explorer-exclude/internal/patterns"
	"github.com/temirov/explorer-exclude/internal/settings"
)

const (
	ownedLabel        = "owned"
	userLabel         = "user"
	invalidGlobLabel  = "invalid glob"
	noEntriesLine     = "  no exclude entries"
	excludeShownLine  = "  excluded files are shown"
	matchedPathFormat = "%d paths"
)

// renderExcludeReport describes the exclude entries of every folder with the number of paths each one matches.
func renderExcludeReport(folders []string) (string, error) {
	var builder strings.Builder
	for folderIndex, folder := range folders {
		if folderIndex > 0 {
			builder.WriteString("\n")
		}
		if renderError := renderFolderReport(&builder, folder); renderError != nil {
			return "", renderError
		}
	}
	return builder.String(), nil
}

func renderFolderReport(builder *strings.Builder, folder string) error {
	document, loadError := settings.Load(settings.WorkspaceSettingsPath(folder))
	if loadError != nil {
		return loadError
	}
	fmt.Fprintf(builder, "%s\n", folder)
	root := document.Root()
	if showValue, _ := root.Get(settings.ShowKey); settings.Truthy(showValue) {
		builder.WriteString(excludeShownLine + "\n")
	}

	excludeMap, isObject := root.Object(settings.FilesExcludeKey)
	if !isObject || excludeMap.Len() == 0 {
		builder.WriteString(noEntriesLine + "\n")
		return nil
	}
	entries := settings.ExcludeEntries(excludeMap)
	globs := make([]string, 0, len(entries))
	for _, entry := range entries {
		globs = append(globs, entry.Pattern)
	}
	matches, previewError := patterns.Preview(folder, globs)
	if previewError != nil {
		return previewError
	}

	tableWriter := tabwriter.NewWriter(builder, 0, 0, 2, ' ', 0)
	for entryIndex, entry := range entries {
		label := userLabel
		if entry.Value.IsOwned() {
			label = ownedLabel
		}
		matchSummary := invalidGlobLabel
		if matches[entryIndex].Valid {
			matchSummary = fmt.Sprintf(matchedPathFormat, len(matches[entryIndex].Paths))
		}
		fmt.Fprintf(tableWriter, "  %s\t%s\t%s\n", label, entry.Pattern, matchSummary)
	}
	return tableWriter.Flush()
}
