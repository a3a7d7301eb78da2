package fs

import (
	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path          string `json:"path"`
	Codec         string `json:"codec"`
	ReadOnly      bool   `json:"read_only"`
	Atomic        bool   `json:"atomic"`
	WatcherActive bool   `json:"watcher_active"`
	Watchers      int    `json:"watchers"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	return RepositoryState{
		Path:          r.Path,
		Codec:         r.codec.Name(),
		ReadOnly:      r.config.ReadOnly,
		Atomic:        !r.config.DirectWrite,
		WatcherActive: r.activeWatchers.Load() > 0,
		Watchers:      int(r.activeWatchers.Load()),
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "fs"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
