package platform

import (
	"log/slog"

	"github.com/aretw0/notekeep/pkg/core"
)

// options holds the internal configuration for a notekeep store.
type options struct {
	store        core.Store[core.Key, *core.Entry]
	logger       *slog.Logger
	adapter      string
	codec        string
	strict       bool
	readOnly     bool
	mustExist    bool
	directWrite  bool
	debugSQL     bool
	eventBuffer  int
	errorHandler func(error)
}

// Option defines a functional option for configuring a store.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter: AdapterFS,
		codec:   "json",
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger shared by the service and its backend.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore injects a ready-made backend (e.g. a mock).
// When set, the adapter and every backend option are ignored.
func WithStore(store core.Store[core.Key, *core.Entry]) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithAdapter selects the backend by name: "fs", "memory" or "sqlite".
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithCodec selects the on-disk format of the fs adapter: "json" or "yaml".
func WithCodec(name string) Option {
	return func(o *options) {
		o.codec = name
	}
}

// WithStrict makes the fs codecs reject unknown fields.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithReadOnly enables read-only mode.
// Save and Delete return core.ErrReadOnly and the store is never created.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithMustExist fails opening when the store directory is missing.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithDirectWrite makes the fs adapter overwrite files in place instead of
// writing a temp file and renaming it.
func WithDirectWrite(enabled bool) Option {
	return func(o *options) {
		o.directWrite = enabled
	}
}

// WithSQLDebug logs every statement issued by the sqlite adapter.
func WithSQLDebug(enabled bool) Option {
	return func(o *options) {
		o.debugSQL = enabled
	}
}

// WithEventBuffer sets the capacity of the Watch channel.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithWatcherErrorHandler registers a callback for errors raised inside the
// Watch loop (e.g. permission denied), which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
