// Package memory provides a volatile core.Store. Contents are lost when the process exits.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/notekeep/pkg/core"
)

// Repository keeps notes in a map guarded by a RWMutex.
// Stored values are private copies: callers never share memory with the store.
type Repository struct {
	mu     sync.RWMutex
	notes  map[core.Key]*core.Entry
	logger *slog.Logger
}

// NewRepository creates an empty in-memory store. A nil logger discards output.
func NewRepository(logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{
		notes:  make(map[core.Key]*core.Entry),
		logger: logger,
	}
}

// Initialize is a no-op; it exists so the memory store can stand in for any backend.
func (r *Repository) Initialize(ctx context.Context) error {
	return nil
}

// Save stores a copy of note. Keyed notes are upserted in place; a zero
// key is replaced by a fresh one.
func (r *Repository) Save(ctx context.Context, note *core.Entry) (core.Key, error) {
	if note == nil {
		return core.Key{}, errors.New("cannot save a nil note")
	}
	if err := note.Validate(); err != nil {
		return core.Key{}, err
	}

	key := note.Key()
	if key.IsZero() {
		key = core.NewKey()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.notes[key] = note.WithKey(key)
	return key, nil
}

// Fetch returns a copy of the stored note or an error wrapping core.ErrNotFound.
func (r *Repository) Fetch(ctx context.Context, key core.Key) (*core.Entry, error) {
	if key.IsZero() {
		return nil, core.ErrInvalidKey
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	note, ok := r.notes[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, key)
	}
	return note.Clone(), nil
}

func (r *Repository) Get(ctx context.Context, key core.Key) (*core.Entry, bool) {
	note, err := r.Fetch(ctx, key)
	if err != nil {
		r.logger.DebugContext(ctx, "note unavailable", "key", key.String(), "error", err)
		return nil, false
	}
	return note, true
}

// ListKeys returns a sorted snapshot of the stored keys.
func (r *Repository) ListKeys(ctx context.Context) ([]core.Key, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]core.Key, 0, len(r.notes))
	for k := range r.notes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys, nil
}

// ListValues returns copies of every note, taken under a single read lock
// and ordered like ListKeys.
func (r *Repository) ListValues(ctx context.Context) ([]*core.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := make([]*core.Entry, 0, len(r.notes))
	for _, note := range r.notes {
		notes = append(notes, note.Clone())
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].Key().String() < notes[j].Key().String()
	})
	return notes, nil
}

// Delete removes a note. A missing key yields core.ErrNotFound.
func (r *Repository) Delete(ctx context.Context, key core.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notes[key]; !ok {
		return fmt.Errorf("%w: %s", core.ErrNotFound, key)
	}
	delete(r.notes, key)
	return nil
}

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Notes int `json:"notes"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RepositoryState{Notes: len(r.notes)}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "memory"
}

var (
	_ core.Store[core.Key, *core.Entry]   = (*Repository)(nil)
	_ core.Fetcher[core.Key, *core.Entry] = (*Repository)(nil)
	_ introspection.Introspectable        = (*Repository)(nil)
	_ introspection.Component             = (*Repository)(nil)
)
