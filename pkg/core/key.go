package core

import (
	"fmt"

	"github.com/google/uuid"
)

// NoteKey is the constraint satisfied by every storage key.
// Keys compare by value and render to a stable textual form.
type NoteKey interface {
	comparable
	String() string
}

// Key is the production note identifier: a random (v4) UUID.
// The zero Key means "not yet assigned".
type Key uuid.UUID

// NewKey mints a fresh key from a cryptographically strong source.
func NewKey() Key {
	return Key(uuid.New())
}

// ParseKey parses the canonical string form of a key.
// Only the lowercase hyphenated 36-character rendering is accepted, so that
// ParseKey(s).String() == s for every s it accepts.
func ParseKey(s string) (Key, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %q: %v", ErrInvalidKey, s, err)
	}
	k := Key(id)
	if k.String() != s {
		return Key{}, fmt.Errorf("%w: %q is not in canonical form", ErrInvalidKey, s)
	}
	return k, nil
}

// String returns the canonical form, which is also the file name used by the fs adapter.
func (k Key) String() string {
	return uuid.UUID(k).String()
}

// IsZero reports whether the key is unassigned.
func (k Key) IsZero() bool {
	return k == Key{}
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(data []byte) error {
	parsed, err := ParseKey(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
