package fs

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/notekeep/pkg/core"
)

const defaultEventBuffer = 100

// Watch reports changes to note files whose key matches pattern (doublestar
// syntax, matched against the key string; empty means all notes).
// The returned channel is closed when ctx is done.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	size := r.config.EventBuffer
	if size <= 0 {
		size = defaultEventBuffer
	}
	events := make(chan core.Event, size)

	w := newWatchWorker(r, pattern, events)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

// resolveKey maps a watched path back to the note it stores.
func (r *Repository) resolveKey(path string) (core.Key, error) {
	if filepath.Clean(filepath.Dir(path)) != filepath.Clean(r.Path) {
		return core.Key{}, fmt.Errorf("%s is outside the store directory", path)
	}
	return core.ParseKey(filepath.Base(path))
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	default:
		return ""
	}
}

func matchKey(pattern string, key core.Key) bool {
	ok, err := doublestar.Match(pattern, key.String())
	return err == nil && ok
}
