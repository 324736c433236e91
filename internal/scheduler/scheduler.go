// Package scheduler drives reconciliation cycles for the lifetime of a run.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/explorer-exclude/internal/reconcile"
	"github.com/temirov/explorer-exclude/internal/utils"
)

// DefaultInterval is the pause between the end of one cycle and the start of the next.
const DefaultInterval = 2500 * time.Millisecond

// Reconciler is the subset of reconcile.Reconciler the scheduler drives.
type Reconciler interface {
	Cycle(ctx context.Context, folders []string) (reconcile.CycleReport, error)
	Clear(folder string) (reconcile.Outcome, error)
}

// Options configures a Scheduler.
type Options struct {
	Reconciler Reconciler
	Folders    []string
	Interval   time.Duration
	// Watch wakes the scheduler early when a folder's root entries change.
	Watch  bool
	Logger *zap.Logger
	// CycleCompleted, when set, is called after every cycle.
	CycleCompleted func(reconcile.CycleReport)
}

// Scheduler runs a cycle on activation, repeats it after each interval, and clears
// every folder on deactivation. Cycles never overlap.
type Scheduler struct {
	reconciler     Reconciler
	interval       time.Duration
	logger         *zap.Logger
	cycleCompleted func(reconcile.CycleReport)
	watchEnabled   bool
	watcher        *folderWatcher

	operationMutex sync.Mutex
	foldersMutex   sync.Mutex
	folders        []string
	wake           chan struct{}
}

// New creates a Scheduler with defaults applied.
func New(options Options) *Scheduler {
	interval := options.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		reconciler:     options.Reconciler,
		interval:       interval,
		logger:         logger,
		cycleCompleted: options.CycleCompleted,
		watchEnabled:   options.Watch,
		folders:        utils.DeduplicateStrings(options.Folders),
		wake:           make(chan struct{}, 1),
	}
}

// Folders returns the current folder set.
func (scheduler *Scheduler) Folders() []string {
	scheduler.foldersMutex.Lock()
	defer scheduler.foldersMutex.Unlock()
	return append([]string(nil), scheduler.folders...)
}

// SetFolders replaces the folder set. Folders no longer present are cleared right away
// and the next cycle is brought forward.
func (scheduler *Scheduler) SetFolders(folders []string) {
	updatedFolders := utils.DeduplicateStrings(folders)

	scheduler.foldersMutex.Lock()
	removedFolders := utils.SubtractStrings(scheduler.folders, updatedFolders)
	scheduler.folders = updatedFolders
	watcher := scheduler.watcher
	scheduler.foldersMutex.Unlock()

	if len(removedFolders) > 0 {
		scheduler.operationMutex.Lock()
		for _, folder := range removedFolders {
			if _, clearError := scheduler.reconciler.Clear(folder); clearError != nil {
				scheduler.logger.Warn("clear removed folder failed", zap.String("folder", folder), zap.Error(clearError))
			}
		}
		scheduler.operationMutex.Unlock()
	}
	if watcher != nil {
		watcher.track(updatedFolders)
	}
	scheduler.Wake()
}

// Wake brings the next cycle forward. It never blocks.
func (scheduler *Scheduler) Wake() {
	select {
	case scheduler.wake <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled, then clears every folder before returning.
func (scheduler *Scheduler) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	if scheduler.watchEnabled {
		watcher, watcherError := newFolderWatcher(scheduler.logger)
		if watcherError != nil {
			return watcherError
		}
		scheduler.foldersMutex.Lock()
		scheduler.watcher = watcher
		scheduler.foldersMutex.Unlock()
		watcher.track(scheduler.Folders())
		group.Go(func() error {
			return watcher.run(groupCtx, scheduler.Wake)
		})
	}
	group.Go(func() error {
		return scheduler.loop(groupCtx)
	})

	runError := group.Wait()
	scheduler.deactivate()
	if runError != nil && !errors.Is(runError, context.Canceled) {
		return runError
	}
	return nil
}

// RunCycle performs a single cycle over the current folders.
func (scheduler *Scheduler) RunCycle(ctx context.Context) (reconcile.CycleReport, error) {
	scheduler.operationMutex.Lock()
	defer scheduler.operationMutex.Unlock()
	report, cycleError := scheduler.reconciler.Cycle(ctx, scheduler.Folders())
	if cycleError != nil {
		scheduler.logger.Warn("reconciliation cycle failed", zap.Error(cycleError))
		return report, cycleError
	}
	if scheduler.cycleCompleted != nil {
		scheduler.cycleCompleted(report)
	}
	return report, nil
}

func (scheduler *Scheduler) loop(ctx context.Context) error {
	timer := time.NewTimer(scheduler.interval)
	defer timer.Stop()
	for {
		_, _ = scheduler.RunCycle(ctx)
		timer.Reset(scheduler.interval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		case <-scheduler.wake:
			timer.Stop()
		}
	}
}

func (scheduler *Scheduler) deactivate() {
	scheduler.operationMutex.Lock()
	defer scheduler.operationMutex.Unlock()
	for _, folder := range scheduler.Folders() {
		if _, clearError := scheduler.reconciler.Clear(folder); clearError != nil {
			scheduler.logger.Warn("clear on deactivation failed", zap.String("folder", folder), zap.Error(clearError))
		}
	}
	scheduler.foldersMutex.Lock()
	watcher := scheduler.watcher
	scheduler.watcher = nil
	scheduler.foldersMutex.Unlock()
	if watcher != nil {
		if closeError := watcher.close(); closeError != nil {
			scheduler.logger.Debug("close folder watcher", zap.Error(closeError))
		}
	}
}
