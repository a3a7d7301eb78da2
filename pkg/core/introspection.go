package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	StoreType string `json:"store_type"`
	Watchable bool   `json:"watchable"`
	Strict    bool   `json:"strict"`
}

// State implements introspection.Introspectable.
func (s *Service[K, T]) State() any {
	storeType := "unknown"
	if s.store != nil {
		storeType = "store"
		if comp, ok := s.store.(introspection.Component); ok {
			storeType = comp.ComponentType()
		}
	}

	_, watchable := s.store.(Watchable)
	_, strict := s.store.(Fetcher[K, T])

	return ServiceState{
		StoreType: storeType,
		Watchable: watchable,
		Strict:    strict,
	}
}

// ComponentType implements introspection.Component.
func (s *Service[K, T]) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service[Key, *Entry])(nil)
var _ introspection.Component = (*Service[Key, *Entry])(nil)
