package fs

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/notekeep/pkg/core"
)

type watchWorker struct {
	*worker.BaseWorker
	repo    *Repository
	pattern string
	events  chan<- core.Event
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc

	// known holds the keys present on disk. Atomic saves land as a rename,
	// which fsnotify reports as Create even when the note already existed.
	// Only the run goroutine touches it after Start.
	known map[core.Key]struct{}
}

func newWatchWorker(repo *Repository, pattern string, events chan<- core.Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		repo:       repo,
		pattern:    pattern,
		events:     events,
		known:      make(map[core.Key]struct{}),
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// The store is flat, so one non-recursive watch covers every note.
	if err := watcher.Add(w.repo.Path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.repo.Path, err)
	}

	// Listed after Add so no change is missed. A note created in between
	// is reported as MODIFY.
	keys, err := w.repo.ListKeys(ctx)
	if err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to list notes for watching: %w", err)
	}
	for _, key := range keys {
		w.known[key] = struct{}{}
	}

	w.watcher = watcher
	w.repo.activeWatchers.Add(1)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	if err := w.StartFunc(runCtx, w.run); err != nil {
		cancel()
		_ = watcher.Close()
		w.repo.activeWatchers.Add(-1)
		return err
	}
	return nil
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"pattern":           w.pattern,
		}
	})
}

// processFilesystemEvent filters an fsnotify event down to a note event.
// Returns true if an event was emitted.
func (w *watchWorker) processFilesystemEvent(ctx context.Context, event fsnotify.Event) bool {
	w.repo.logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	eType := mapEventType(event)
	if eType == "" {
		return false
	}

	// Temp files from atomic writes and foreign files land here.
	key, err := w.repo.resolveKey(event.Name)
	if err != nil {
		return false
	}
	eType = w.track(key, eType)
	if !matchKey(w.pattern, key) {
		return false
	}

	return w.sendEvent(ctx, core.Event{
		Type:      eType,
		Key:       key,
		Timestamp: time.Now().Unix(),
	})
}

// track updates the set of known keys and turns a Create on a known key
// into a Modify.
func (w *watchWorker) track(key core.Key, eType core.EventType) core.EventType {
	_, exists := w.known[key]
	switch eType {
	case core.EventCreate:
		if exists {
			eType = core.EventModify
		}
		w.known[key] = struct{}{}
	case core.EventModify:
		w.known[key] = struct{}{}
	case core.EventDelete:
		delete(w.known, key)
	}
	return eType
}

func (w *watchWorker) sendEvent(ctx context.Context, event core.Event) bool {
	select {
	case w.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *watchWorker) handleWatcherError(err error) {
	w.repo.logger.Error("fsnotify error", "error", err)
	if w.repo.config.ErrorHandler != nil {
		w.repo.config.ErrorHandler(err)
	}
}

// run is the main event loop for the watcher worker.
// It owns the events channel and closes it on exit.
func (w *watchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)
			if w.repo.logger.Enabled(ctx, slog.LevelDebug) {
				w.repo.logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				w.repo.logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer close(w.events)
	defer w.repo.activeWatchers.Add(-1)
	defer w.watcher.Close()

	return w.mainEventLoop(ctx)
}

func (w *watchWorker) mainEventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.processFilesystemEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.handleWatcherError(wErr)
		}
	}
}
