package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/temirov/explorer-exclude/internal/utils"
)

// folderWatcher reports changes to the root entries of workspace folders.
// Events for the settings directory are ignored so that our own writes do not wake the scheduler.
type folderWatcher struct {
	watcher *fsnotify.Watcher
	logger  *zap.Logger

	mutex   sync.Mutex
	watched map[string]struct{}
}

func newFolderWatcher(logger *zap.Logger) (*folderWatcher, error) {
	watcher, watcherError := fsnotify.NewWatcher()
	if watcherError != nil {
		return nil, fmt.Errorf("create folder watcher: %w", watcherError)
	}
	return &folderWatcher{watcher: watcher, logger: logger, watched: map[string]struct{}{}}, nil
}

// track watches exactly the given folders.
func (folderWatcher *folderWatcher) track(folders []string) {
	folderWatcher.mutex.Lock()
	defer folderWatcher.mutex.Unlock()

	for watchedFolder := range folderWatcher.watched {
		if utils.ContainsString(folders, watchedFolder) {
			continue
		}
		if removeError := folderWatcher.watcher.Remove(watchedFolder); removeError != nil {
			folderWatcher.logger.Debug("stop watching folder", zap.String("folder", watchedFolder), zap.Error(removeError))
		}
		delete(folderWatcher.watched, watchedFolder)
	}
	for _, folder := range folders {
		if _, watched := folderWatcher.watched[folder]; watched {
			continue
		}
		if addError := folderWatcher.watcher.Add(folder); addError != nil {
			folderWatcher.logger.Warn("watch folder failed", zap.String("folder", folder), zap.Error(addError))
			continue
		}
		folderWatcher.watched[folder] = struct{}{}
	}
}

func (folderWatcher *folderWatcher) run(ctx context.Context, notify func()) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, open := <-folderWatcher.watcher.Events:
			if !open {
				return nil
			}
			if filepath.Base(event.Name) == utils.WorkspaceSettingsDirectoryName {
				continue
			}
			folderWatcher.logger.Debug("folder changed", zap.String("path", event.Name), zap.String("operation", event.Op.String()))
			notify()
		case watchError, open := <-folderWatcher.watcher.Errors:
			if !open {
				return nil
			}
			folderWatcher.logger.Warn("folder watcher error", zap.Error(watchError))
		}
	}
}

func (folderWatcher *folderWatcher) close() error {
	return folderWatcher.watcher.Close()
}
