package core

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Note is the contract every stored entity satisfies.
// Title and Body change only through UpdateTitle and UpdateBody; neither
// persists anything, saving is an explicit call on a Saver.
type Note[K NoteKey] interface {
	Key() K
	Workspace() string
	Title() string
	Body() string

	UpdateTitle(title string)
	UpdateBody(body string)
}

// Entry is the concrete note shipped with notekeep.
// Key and workspace are fixed at construction.
type Entry struct {
	key       Key
	workspace string
	title     string
	body      string
}

// NewEntry creates a note with a freshly minted key.
func NewEntry(workspace, title, body string) *Entry {
	return &Entry{
		key:       NewKey(),
		workspace: workspace,
		title:     title,
		body:      body,
	}
}

// RestoreEntry rebuilds a note from stored fields.
// A zero key yields an unassigned note that backends key on first save.
func RestoreEntry(key Key, workspace, title, body string) *Entry {
	return &Entry{
		key:       key,
		workspace: workspace,
		title:     title,
		body:      body,
	}
}

func (e *Entry) Key() Key          { return e.key }
func (e *Entry) Workspace() string { return e.workspace }
func (e *Entry) Title() string     { return e.title }
func (e *Entry) Body() string      { return e.body }

// UpdateTitle replaces the title. No validation is applied.
func (e *Entry) UpdateTitle(title string) {
	e.title = title
}

// UpdateBody replaces the body. No validation is applied.
func (e *Entry) UpdateBody(body string) {
	e.body = body
}

// Clone returns an independent copy.
func (e *Entry) Clone() *Entry {
	c := *e
	return &c
}

// WithKey returns a copy of the entry bearing key k.
// The receiver is left untouched.
func (e *Entry) WithKey(k Key) *Entry {
	c := e.Clone()
	c.key = k
	return c
}

// Validate rejects text fields that are not valid UTF-8. Such notes cannot
// be encoded without rewriting their bytes, so backends refuse to save them.
func (e *Entry) Validate() error {
	fields := [...]struct{ name, value string }{
		{"workspace", e.workspace},
		{"title", e.title},
		{"body", e.body},
	}
	for _, f := range fields {
		if !utf8.ValidString(f.value) {
			return fmt.Errorf("%w: %s is not valid UTF-8", ErrEncoding, f.name)
		}
	}
	return nil
}

// entryRecord is the serialized shape of an Entry.
type entryRecord struct {
	Key       Key    `json:"key"`
	Workspace string `json:"workspace"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

// MarshalJSON implements json.Marshaler.
func (e *Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryRecord{
		Key:       e.key,
		Workspace: e.workspace,
		Title:     e.title,
		Body:      e.body,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var rec entryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*e = Entry{
		key:       rec.Key,
		workspace: rec.Workspace,
		title:     rec.Title,
		body:      rec.Body,
	}
	return nil
}

var _ Note[Key] = (*Entry)(nil)
