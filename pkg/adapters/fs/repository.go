package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/aretw0/notekeep/pkg/core"
)

// Repository implements core.Store using one encoded file per note in a flat directory.
// It is safe for concurrent use; open it once per directory and share it.
type Repository struct {
	Path   string
	codec  Codec
	logger *slog.Logger
	config Config

	mu             sync.RWMutex
	activeWatchers atomic.Int32
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	MustExist bool // Fail Initialize instead of creating a missing directory.
	ReadOnly  bool // Save and Delete return core.ErrReadOnly; implies MustExist.

	// DirectWrite truncates and rewrites the target file in place instead of
	// staging a temp file and renaming it. A crash mid-write can then leave a
	// truncated note behind.
	DirectWrite bool

	Codec        Codec // Defaults to JSON.
	Logger       *slog.Logger
	EventBuffer  int         // Watch channel capacity. Zero means 100.
	ErrorHandler func(error) // Receives watcher runtime errors.
}

// NewRepository creates a new filesystem-backed repository.
// Call Initialize (or use Open) before the first operation.
func NewRepository(config Config) *Repository {
	if config.Codec == nil {
		config.Codec = NewJSONCodec(false)
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{
		Path:   config.Path,
		codec:  config.Codec,
		logger: config.Logger,
		config: config,
	}
}

// Open creates and initializes a repository in one step.
func Open(ctx context.Context, config Config) (*Repository, error) {
	r := NewRepository(config)
	if err := r.Initialize(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Initialize prepares the store directory.
// An existing directory is reused as is; nothing in it is removed.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: store path does not exist: %s", core.ErrInitialize, r.Path)
		}
		if err != nil {
			return fmt.Errorf("%w: %w", core.ErrInitialize, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: store path is not a directory: %s", core.ErrInitialize, r.Path)
		}
		return nil
	}

	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("%w: failed to create store directory: %w", core.ErrInitialize, err)
	}
	r.logger.DebugContext(ctx, "store ready", "path", r.Path, "codec", r.codec.Name())
	return nil
}

// location is the deterministic path of a note: {dir}/{key}.
func (r *Repository) location(key core.Key) string {
	return filepath.Join(r.Path, key.String())
}

// Save encodes the note and writes it to its location, overwriting any previous version.
// A note with a zero key is stored under a freshly minted key; the caller's value is not modified.
func (r *Repository) Save(ctx context.Context, note *core.Entry) (core.Key, error) {
	if r.config.ReadOnly {
		return core.Key{}, core.ErrReadOnly
	}
	if note == nil {
		return core.Key{}, errors.New("cannot save a nil note")
	}
	if err := note.Validate(); err != nil {
		return core.Key{}, err
	}

	key := note.Key()
	if key.IsZero() {
		key = core.NewKey()
		note = note.WithKey(key)
	}

	data, err := r.codec.Encode(note)
	if err != nil {
		return core.Key{}, fmt.Errorf("failed to encode note %s: %w", key, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.location(key)
	if r.config.DirectWrite {
		err = os.WriteFile(path, data, 0644)
	} else {
		err = writeFileAtomic(path, data, 0644)
	}
	if err != nil {
		return core.Key{}, fmt.Errorf("failed to write note %s: %w", key, err)
	}

	return key, nil
}

// Fetch reads and decodes a note.
//
// Errors:
//   - core.ErrNotFound when no file exists at the note's location.
//   - core.ErrEncoding when the contents do not decode, or decode to a different key.
//   - a wrapped I/O error for anything else.
func (r *Repository) Fetch(ctx context.Context, key core.Key) (*core.Entry, error) {
	if key.IsZero() {
		return nil, core.ErrInvalidKey
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	f, err := os.Open(r.location(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to open note %s: %w", key, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read note %s: %w", key, err)
	}

	entry, err := r.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: note %s: %w", core.ErrEncoding, key, err)
	}
	if entry.Key() != key {
		return nil, fmt.Errorf("%w: file %s holds note %s", core.ErrEncoding, key, entry.Key())
	}

	return entry, nil
}

// Get is Fetch with every failure logged and reported as absent.
func (r *Repository) Get(ctx context.Context, key core.Key) (*core.Entry, bool) {
	entry, err := r.Fetch(ctx, key)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, core.ErrNotFound) {
			level = slog.LevelDebug
		}
		r.logger.Log(ctx, level, "note unavailable", "key", key.String(), "error", err)
		return nil, false
	}
	return entry, true
}

// ListKeys enumerates the directory. Entries whose name is not a canonical
// key (sub-directories, temp files, unrelated files) are skipped.
func (r *Repository) ListKeys(ctx context.Context) ([]core.Key, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	keys := make([]core.Key, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		key, err := core.ParseKey(e.Name())
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// ListValues fetches every listed key, silently dropping the unreadable ones.
// Each note costs one file open; nothing is cached.
func (r *Repository) ListValues(ctx context.Context) ([]*core.Entry, error) {
	keys, err := r.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	notes := make([]*core.Entry, 0, len(keys))
	for _, key := range keys {
		if entry, ok := r.Get(ctx, key); ok {
			notes = append(notes, entry)
		}
	}
	return notes, nil
}

// Delete removes the note's file. Unlike Get, failures are returned.
func (r *Repository) Delete(ctx context.Context, key core.Key) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if key.IsZero() {
		return core.ErrInvalidKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.location(key)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", core.ErrNotFound, key)
		}
		return fmt.Errorf("failed to remove note %s: %w", key, err)
	}
	return nil
}

var (
	_ core.Store[core.Key, *core.Entry]   = (*Repository)(nil)
	_ core.Fetcher[core.Key, *core.Entry] = (*Repository)(nil)
	_ core.Watchable                      = (*Repository)(nil)
	_ core.Initializer                    = (*Repository)(nil)
)
