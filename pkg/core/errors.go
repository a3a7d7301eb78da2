package core

import "errors"

// Common errors.
var (
	// ErrInitialize wraps failures to prepare a backend (e.g. the store directory cannot be created).
	ErrInitialize = errors.New("store initialization failed")

	// ErrNotFound is returned when a key has no stored note.
	ErrNotFound = errors.New("note not found")

	// ErrEncoding is returned when stored data does not decode into a valid note.
	ErrEncoding = errors.New("invalid note encoding")

	// ErrInvalidKey is returned for keys that are zero or not in canonical form.
	ErrInvalidKey = errors.New("invalid note key")

	// ErrReadOnly is returned by Save and Delete on a backend opened read-only.
	ErrReadOnly = errors.New("store is in read-only mode")
)
