package notekeep

import (
	"log/slog"

	"github.com/aretw0/notekeep/internal/platform"
	"github.com/aretw0/notekeep/pkg/core"
)

// --- Types ---

// Key is the production note key (a random UUID).
type Key = core.Key

// Entry is the bundled note type.
type Entry = core.Entry

// Service is the note service over Key and *Entry.
type Service = platform.Service

// Store is the full capability set over Key and *Entry.
type Store = core.Store[core.Key, *core.Entry]

// NewEntry creates a note with a fresh key.
func NewEntry(workspace, title, body string) *Entry {
	return core.NewEntry(workspace, title, body)
}

// ParseKey parses the canonical string form of a key.
func ParseKey(s string) (Key, error) {
	return core.ParseKey(s)
}

// --- Configuration ---

// Option defines a functional option for configuring a store.
type Option = platform.Option

// Adapter names.
const (
	AdapterFS     = platform.AdapterFS
	AdapterMemory = platform.AdapterMemory
	AdapterSQLite = platform.AdapterSQLite
)

// WithLogger sets the logger for the service and its backend.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore injects a custom backend.
func WithStore(store Store) Option {
	return platform.WithStore(store)
}

// WithAdapter selects the backend by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithCodec selects the file format of the fs adapter ("json" or "yaml").
func WithCodec(name string) Option {
	return platform.WithCodec(name)
}

// WithStrict makes decoding reject unknown fields.
func WithStrict(strict bool) Option {
	return platform.WithStrict(strict)
}

// WithReadOnly rejects Save and Delete with core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithMustExist requires the store directory to exist already.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithDirectWrite disables atomic temp-file writes in the fs adapter.
func WithDirectWrite(enabled bool) Option {
	return platform.WithDirectWrite(enabled)
}

// WithSQLDebug logs SQL statements of the sqlite adapter.
func WithSQLDebug(enabled bool) Option {
	return platform.WithSQLDebug(enabled)
}

// WithEventBuffer sets the Watch channel capacity.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithWatcherErrorHandler receives runtime errors from the Watch loop.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates a Service over a freshly opened store.
func New(uri string, opts ...Option) (*Service, error) {
	return platform.New(uri, opts...)
}

// Open returns the process-wide shared Service for uri.
func Open(uri string, opts ...Option) (*Service, error) {
	return platform.Open(uri, opts...)
}

// Init opens and initializes a store without wrapping it in a Service.
func Init(uri string, opts ...Option) (Store, error) {
	return platform.Init(uri, opts...)
}

// CloseAll releases every store handed out by Open.
func CloseAll() error {
	return platform.CloseAll()
}
