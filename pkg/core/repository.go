package core

import "context"

// A read-only caller can take Getter and Lister alone. Store is the
// conjunction of all four and is what a backend must satisfy to be selectable.

// Saver writes a note, creating or overwriting it, and returns its key.
// Saving the same key twice overwrites. Backends assign a fresh key to
// notes whose key is the zero value.
type Saver[K NoteKey, T Note[K]] interface {
	Save(ctx context.Context, note T) (K, error)
}

// Deleter removes a note. Deleting a missing key returns an error wrapping ErrNotFound.
type Deleter[K NoteKey] interface {
	Delete(ctx context.Context, key K) error
}

// Getter fetches a note by key.
// Any failure (missing, unreadable, undecodable) is reported as absent.
type Getter[K NoteKey, T Note[K]] interface {
	Get(ctx context.Context, key K) (T, bool)
}

// Lister enumerates stored notes.
// ListValues is Get over every key in ListKeys, keeping only present notes.
// The error only reports failure to enumerate the store itself.
type Lister[K NoteKey, T Note[K]] interface {
	ListKeys(ctx context.Context) ([]K, error)
	ListValues(ctx context.Context) ([]T, error)
}

// Store is the full CRUD contract of a backend.
type Store[K NoteKey, T Note[K]] interface {
	Saver[K, T]
	Deleter[K]
	Getter[K, T]
	Lister[K, T]
}

// Fetcher is the strict read contract: unlike Get, it tells ErrNotFound
// apart from ErrEncoding and from wrapped I/O errors.
type Fetcher[K NoteKey, T Note[K]] interface {
	Fetch(ctx context.Context, key K) (T, error)
}

// Watchable is implemented by backends that can report changes.
type Watchable interface {
	// Watch emits an Event for every change to a note whose key matches pattern.
	// The channel is closed once ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// Initializer is implemented by backends that need setup before use
// (creating directories, migrating schemas).
type Initializer interface {
	Initialize(ctx context.Context) error
}
