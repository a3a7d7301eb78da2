package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/aretw0/notekeep/pkg/adapters/fs"
	"github.com/aretw0/notekeep/pkg/adapters/memory"
	"github.com/aretw0/notekeep/pkg/adapters/sqlite"
	"github.com/aretw0/notekeep/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = "fs"
	AdapterMemory = "memory"
	AdapterSQLite = "sqlite"
)

// Service is the note service over the bundled key and entry types.
type Service = core.Service[core.Key, *core.Entry]

// New builds a fresh store and wraps it in a Service.
// The URI is adapter-specific: a directory for "fs", a DSN for "sqlite",
// and ignored for "memory".
func New(uri string, opts ...Option) (*Service, error) {
	o := buildOptions(opts)
	store, err := openStore(context.Background(), uri, o)
	if err != nil {
		return nil, err
	}
	return core.NewService(store, o.logger), nil
}

// Init opens the backend and runs its initialization without wrapping it.
func Init(uri string, opts ...Option) (core.Store[core.Key, *core.Entry], error) {
	return openStore(context.Background(), uri, buildOptions(opts))
}

func openStore(ctx context.Context, uri string, o *options) (core.Store[core.Key, *core.Entry], error) {
	if o.store != nil {
		if initializer, ok := o.store.(core.Initializer); ok {
			if err := initializer.Initialize(ctx); err != nil {
				return nil, err
			}
		}
		return o.store, nil
	}

	switch o.adapter {
	case AdapterFS:
		codec, err := fs.CodecByName(o.codec, o.strict)
		if err != nil {
			return nil, err
		}
		return fs.Open(ctx, fs.Config{
			Path:         uri,
			MustExist:    o.mustExist,
			ReadOnly:     o.readOnly,
			DirectWrite:  o.directWrite,
			Codec:        codec,
			Logger:       o.logger,
			EventBuffer:  o.eventBuffer,
			ErrorHandler: o.errorHandler,
		})
	case AdapterMemory:
		return memory.NewRepository(o.logger), nil
	case AdapterSQLite:
		return sqlite.Open(ctx, sqlite.Config{
			DSN:      uri,
			ReadOnly: o.readOnly,
			Logger:   o.logger,
			Debug:    o.debugSQL,
		})
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}

// registry holds stores shared across Open calls, keyed by adapter and
// absolute location.
var registry = struct {
	sync.Mutex
	services map[string]*Service
}{services: make(map[string]*Service)}

func registryKey(adapter, uri string) string {
	if adapter == AdapterFS || (adapter == AdapterSQLite && uri != ":memory:") {
		if abs, err := filepath.Abs(uri); err == nil {
			uri = abs
		}
	}
	return adapter + ":" + uri
}

// Open returns the shared Service for uri, creating it on first use.
// Later calls for the same location return the same instance and ignore
// their options. Injected stores are never shared.
func Open(uri string, opts ...Option) (*Service, error) {
	o := buildOptions(opts)
	if o.store != nil {
		return New(uri, opts...)
	}

	id := registryKey(o.adapter, uri)

	registry.Lock()
	defer registry.Unlock()

	if svc, ok := registry.services[id]; ok {
		return svc, nil
	}

	store, err := openStore(context.Background(), uri, o)
	if err != nil {
		return nil, err
	}
	svc := core.NewService(store, o.logger)
	registry.services[id] = svc

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("shared store opened", "id", id)
	return svc, nil
}

// CloseAll forgets every shared store and closes those holding resources.
func CloseAll() error {
	registry.Lock()
	defer registry.Unlock()

	var errs []error
	for id, svc := range registry.services {
		if c, ok := svc.Store().(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", id, err))
			}
		}
		delete(registry.services, id)
	}
	return errors.Join(errs...)
}
