package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Service handles the business logic for notes on top of any Store.
type Service[K NoteKey, T Note[K]] struct {
	store  Store[K, T]
	logger *slog.Logger
}

// NewService creates a new Service. A nil logger discards output.
func NewService[K NoteKey, T Note[K]](store Store[K, T], logger *slog.Logger) *Service[K, T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service[K, T]{store: store, logger: logger}
}

// Store returns the underlying backend.
func (s *Service[K, T]) Store() Store[K, T] {
	return s.store
}

// SaveNote persists a note and returns the key it is stored under.
func (s *Service[K, T]) SaveNote(ctx context.Context, note T) (K, error) {
	key, err := s.store.Save(ctx, note)
	if err != nil {
		return key, err
	}
	s.logger.DebugContext(ctx, "note saved", "key", key.String(), "workspace", note.Workspace())
	return key, nil
}

// GetNote retrieves a note, reporting absence as false.
func (s *Service[K, T]) GetNote(ctx context.Context, key K) (T, bool) {
	if isZero(key) {
		var zero T
		return zero, false
	}
	return s.store.Get(ctx, key)
}

// FetchNote retrieves a note with a distinguishable error.
// Backends without a strict read path report every miss as ErrNotFound.
func (s *Service[K, T]) FetchNote(ctx context.Context, key K) (T, error) {
	var zero T
	if isZero(key) {
		return zero, ErrInvalidKey
	}
	if f, ok := s.store.(Fetcher[K, T]); ok {
		return f.Fetch(ctx, key)
	}
	note, ok := s.store.Get(ctx, key)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return note, nil
}

// UpdateNote fetches a note, applies mutate and saves it back under the same key.
func (s *Service[K, T]) UpdateNote(ctx context.Context, key K, mutate func(T)) (T, error) {
	note, err := s.FetchNote(ctx, key)
	if err != nil {
		return note, err
	}
	mutate(note)

	saved, err := s.store.Save(ctx, note)
	if err != nil {
		return note, err
	}
	if saved != key {
		// Only possible with a backend that re-keys on save.
		return note, fmt.Errorf("note %s was re-keyed to %s on update", key, saved)
	}
	return note, nil
}

// ListKeys returns every stored key.
func (s *Service[K, T]) ListKeys(ctx context.Context) ([]K, error) {
	return s.store.ListKeys(ctx)
}

// ListNotes returns every readable note.
func (s *Service[K, T]) ListNotes(ctx context.Context) ([]T, error) {
	return s.store.ListValues(ctx)
}

// ListNotesInWorkspace filters the full enumeration by workspace label.
func (s *Service[K, T]) ListNotesInWorkspace(ctx context.Context, workspace string) ([]T, error) {
	notes, err := s.store.ListValues(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]T, 0, len(notes))
	for _, n := range notes {
		if n.Workspace() == workspace {
			filtered = append(filtered, n)
		}
	}
	return filtered, nil
}

// DeleteNote removes a note.
func (s *Service[K, T]) DeleteNote(ctx context.Context, key K) error {
	if isZero(key) {
		return ErrInvalidKey
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "note deleted", "key", key.String())
	return nil
}

// Watch observes changes in the store if supported.
func (s *Service[K, T]) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.store.(Watchable)
	if !ok {
		return nil, errors.New("store does not support watching")
	}
	return w.Watch(ctx, pattern)
}

func isZero[K comparable](key K) bool {
	var zero K
	return key == zero
}
