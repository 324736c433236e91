// Package reconcile keeps workspace exclude maps in step with the configured pattern sources.
//
// Each folder goes through the same phases on every cycle: owned entries are cleared,
// freshly resolved patterns are patched in unless the folder reveals excluded files,
// and the result is persisted once. Nothing is written when the outcome matches disk,
// so repeated cycles settle without touching files.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/explorer-exclude/internal/patterns"
	"github.com/temirov/explorer-exclude/internal/settings"
)

const (
	logFieldFolder   = "folder"
	logFieldOutcome  = "outcome"
	logFieldPath     = "path"
	logFieldPatterns = "patterns"
)

// ErrExcludeNotObject reports a files.exclude setting that holds something other than a JSON object.
var ErrExcludeNotObject = errors.New(settings.FilesExcludeKey + " is not a JSON object")

// Outcome describes what happened to a settings file.
type Outcome string

const (
	// OutcomeSkipped means there was no folder to work on.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeUnchanged means the file already matched the desired state.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeWritten means the file was written.
	OutcomeWritten Outcome = "written"
	// OutcomeDeleted means the file and its directory were removed.
	OutcomeDeleted Outcome = "deleted"
)

// Options configures a Reconciler.
type Options struct {
	// UserSettingsPath locates the user settings document. Empty disables the user document.
	UserSettingsPath string
	// DefaultPatterns seeds the pattern list when the user document has none.
	DefaultPatterns []string
	Logger          *zap.Logger
}

// Reconciler applies exclude patterns to workspace settings documents.
type Reconciler struct {
	userSettingsPath string
	defaultPatterns  []string
	logger           *zap.Logger
}

// FolderResult is the outcome of reconciling one folder during a cycle.
type FolderResult struct {
	Folder  string
	Outcome Outcome
	Err     error
}

// CycleReport summarizes one reconciliation cycle.
type CycleReport struct {
	Patterns []string
	Folders  []FolderResult
}

// Err joins the failures of every folder in the report.
func (report CycleReport) Err() error {
	var folderErrors []error
	for _, result := range report.Folders {
		if result.Err != nil {
			folderErrors = append(folderErrors, result.Err)
		}
	}
	return errors.Join(folderErrors...)
}

// New creates a Reconciler with defaults applied.
func New(options Options) *Reconciler {
	defaultPatterns := options.DefaultPatterns
	if len(defaultPatterns) == 0 {
		defaultPatterns = settings.DefaultPatterns
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		userSettingsPath: options.UserSettingsPath,
		defaultPatterns:  append([]string(nil), defaultPatterns...),
		logger:           logger,
	}
}

// LoadPatterns reads the pattern list from the user document.
// When the key is missing it is set to the default and persisted, provided the user settings file exists.
// A value that is not a list is left in place and the defaults are used.
func (reconciler *Reconciler) LoadPatterns() ([]string, error) {
	if reconciler.userSettingsPath == "" {
		return append([]string(nil), reconciler.defaultPatterns...), nil
	}
	document, loadError := settings.Load(reconciler.userSettingsPath)
	if loadError != nil {
		return nil, loadError
	}
	if configuredValue, exists := document.Root().Get(settings.PatternsKey); exists {
		if configuredPatterns, isList := settings.StringList(configuredValue); isList {
			return configuredPatterns, nil
		}
		reconciler.logger.Warn("pattern list in user settings is not an array; using default patterns", zap.String(logFieldPath, reconciler.userSettingsPath))
		return append([]string(nil), reconciler.defaultPatterns...), nil
	}
	document.Root().Set(settings.PatternsKey, settings.AnyList(reconciler.defaultPatterns))
	if !document.Exists() {
		reconciler.logger.Debug("user settings not found; using default patterns", zap.String(logFieldPath, reconciler.userSettingsPath))
		return append([]string(nil), reconciler.defaultPatterns...), nil
	}
	wrote, saveError := document.Save()
	if saveError != nil {
		return nil, saveError
	}
	if wrote {
		reconciler.logger.Info("stored default patterns in user settings", zap.String(logFieldPath, reconciler.userSettingsPath), zap.Strings(logFieldPatterns, reconciler.defaultPatterns))
	}
	return append([]string(nil), reconciler.defaultPatterns...), nil
}

// Cycle runs the user-level pass once and then reconciles every folder concurrently.
// It returns after every folder has settled. An error is returned only when the user pass fails;
// folder failures are reported in the CycleReport.
func (reconciler *Reconciler) Cycle(ctx context.Context, folders []string) (CycleReport, error) {
	sources, loadError := reconciler.LoadPatterns()
	if loadError != nil {
		return CycleReport{}, fmt.Errorf("load patterns: %w", loadError)
	}
	report := CycleReport{Patterns: sources, Folders: make([]FolderResult, len(folders))}

	var group errgroup.Group
	for folderIndex, folder := range folders {
		group.Go(func() error {
			result := FolderResult{Folder: folder}
			if contextError := ctx.Err(); contextError != nil {
				result.Outcome, result.Err = OutcomeSkipped, contextError
			} else {
				result.Outcome, result.Err = reconciler.Reconcile(folder, sources)
			}
			reconciler.logResult("reconcile", result)
			report.Folders[folderIndex] = result
			return nil
		})
	}
	_ = group.Wait()
	return report, nil
}

// Reconcile clears and re-applies the owned exclude entries of one folder.
func (reconciler *Reconciler) Reconcile(folder string, sources []string) (Outcome, error) {
	if folder == "" {
		return OutcomeSkipped, nil
	}
	document, loadError := settings.Load(settings.WorkspaceSettingsPath(folder))
	if loadError != nil {
		return OutcomeUnchanged, loadError
	}
	root := document.Root()
	clearOwnedEntries(root)
	if !showsExcluded(root) {
		if patchError := patchExcludeMap(folder, root, folderSources(root, sources)); patchError != nil {
			return OutcomeUnchanged, fmt.Errorf("%s: %w", document.Path(), patchError)
		}
	}
	pruneExcludeMap(root)
	return persist(document)
}

// Clear removes every owned exclude entry of one folder, deleting the settings file when nothing else remains.
func (reconciler *Reconciler) Clear(folder string) (Outcome, error) {
	if folder == "" {
		return OutcomeSkipped, nil
	}
	document, loadError := settings.Load(settings.WorkspaceSettingsPath(folder))
	if loadError != nil {
		return OutcomeUnchanged, loadError
	}
	clearOwnedEntries(document.Root())
	pruneExcludeMap(document.Root())
	outcome, persistError := persist(document)
	reconciler.logResult("clear", FolderResult{Folder: folder, Outcome: outcome, Err: persistError})
	return outcome, persistError
}

// ClearAll runs Clear for every folder and joins the failures.
func (reconciler *Reconciler) ClearAll(folders []string) error {
	var clearErrors []error
	for _, folder := range folders {
		if _, clearError := reconciler.Clear(folder); clearError != nil {
			clearErrors = append(clearErrors, fmt.Errorf("clear %s: %w", folder, clearError))
		}
	}
	return errors.Join(clearErrors...)
}

// Toggle sets the folder's show flag. Nothing is written when the flag already has the requested state.
func (reconciler *Reconciler) Toggle(folder string, show bool) (Outcome, error) {
	if folder == "" {
		return OutcomeSkipped, nil
	}
	document, loadError := settings.Load(settings.WorkspaceSettingsPath(folder))
	if loadError != nil {
		return OutcomeUnchanged, loadError
	}
	if showsExcluded(document.Root()) == show {
		return OutcomeUnchanged, nil
	}
	document.Root().Set(settings.ShowKey, show)
	if writeError := document.Write(); writeError != nil {
		return OutcomeUnchanged, writeError
	}
	reconciler.logger.Info("toggled excluded files", zap.String(logFieldFolder, folder), zap.Bool("show", show))
	return OutcomeWritten, nil
}

func (reconciler *Reconciler) logResult(operation string, result FolderResult) {
	if result.Err != nil {
		reconciler.logger.Warn(operation+" failed", zap.String(logFieldFolder, result.Folder), zap.Error(result.Err))
		return
	}
	if result.Outcome == OutcomeWritten || result.Outcome == OutcomeDeleted {
		reconciler.logger.Info(operation, zap.String(logFieldFolder, result.Folder), zap.String(logFieldOutcome, string(result.Outcome)))
		return
	}
	reconciler.logger.Debug(operation, zap.String(logFieldFolder, result.Folder), zap.String(logFieldOutcome, string(result.Outcome)))
}

// folderSources prefers a pattern list stored in the workspace document over the user-level list.
func folderSources(root *settings.Object, sources []string) []string {
	if workspaceValue, exists := root.Get(settings.PatternsKey); exists {
		if workspaceSources, isList := settings.StringList(workspaceValue); isList {
			return workspaceSources
		}
	}
	return sources
}

func showsExcluded(root *settings.Object) bool {
	showValue, _ := root.Get(settings.ShowKey)
	return settings.Truthy(showValue)
}

// excludeMap returns the exclude map, nil when it is absent or null.
func excludeMap(root *settings.Object) (*settings.Object, error) {
	value, exists := root.Get(settings.FilesExcludeKey)
	if !exists || value == nil {
		return nil, nil
	}
	excludeObject, isObject := value.(*settings.Object)
	if !isObject {
		return nil, ErrExcludeNotObject
	}
	return excludeObject, nil
}

// clearOwnedEntries removes owned entries. A non-object exclude setting owns nothing and is left alone.
func clearOwnedEntries(root *settings.Object) {
	excludeObject, lookupError := excludeMap(root)
	if lookupError != nil {
		return
	}
	settings.RemoveOwnedEntries(excludeObject)
}

func patchExcludeMap(folder string, root *settings.Object, sources []string) error {
	excludeObject, lookupError := excludeMap(root)
	if lookupError != nil {
		return lookupError
	}
	resolved, resolveError := patterns.Resolve(folder, sources, excludeObject.Has)
	if resolveError != nil {
		return resolveError
	}
	if len(resolved) == 0 {
		return nil
	}
	if excludeObject == nil {
		excludeObject = settings.NewObject()
		root.Set(settings.FilesExcludeKey, excludeObject)
	}
	for _, pattern := range resolved {
		excludeObject.Set(pattern, settings.Owned().Raw())
	}
	return nil
}

// pruneExcludeMap drops an exclude map that is null or empty.
func pruneExcludeMap(root *settings.Object) {
	value, exists := root.Get(settings.FilesExcludeKey)
	if !exists {
		return
	}
	if excludeObject, isObject := value.(*settings.Object); value == nil || (isObject && excludeObject.Len() == 0) {
		root.Delete(settings.FilesExcludeKey)
	}
}

// disposable reports whether the document holds nothing worth keeping:
// no members, or only a false show flag.
func disposable(root *settings.Object) bool {
	switch root.Len() {
	case 0:
		return true
	case 1:
		return root.Has(settings.ShowKey) && !showsExcluded(root)
	default:
		return false
	}
}

func persist(document *settings.Document) (Outcome, error) {
	if disposable(document.Root()) && document.Exists() {
		removed, removeError := document.RemoveWithDirectory()
		if removeError != nil {
			return OutcomeUnchanged, removeError
		}
		if removed {
			return OutcomeDeleted, nil
		}
	}
	wrote, saveError := document.Save()
	if saveError != nil {
		return OutcomeUnchanged, saveError
	}
	if wrote {
		return OutcomeWritten, nil
	}
	return OutcomeUnchanged, nil
}
