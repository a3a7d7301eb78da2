package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/notekeep/pkg/core"
)

// Codec defines how a note is laid out inside its file.
type Codec interface {
	// Name identifies the codec in logs and introspection ("json", "yaml").
	Name() string
	// Encode converts the note to bytes.
	Encode(note *core.Entry) ([]byte, error)
	// Decode parses a note previously produced by Encode.
	Decode(data []byte) (*core.Entry, error)
}

// record is the on-disk shape shared by all codecs.
type record struct {
	Key       string `json:"key" yaml:"key"`
	Workspace string `json:"workspace" yaml:"workspace"`
	Title     string `json:"title" yaml:"title"`
	Body      string `json:"body" yaml:"body"`
}

func toRecord(note *core.Entry) record {
	return record{
		Key:       note.Key().String(),
		Workspace: note.Workspace(),
		Title:     note.Title(),
		Body:      note.Body(),
	}
}

func (rec record) entry() (*core.Entry, error) {
	key, err := core.ParseKey(rec.Key)
	if err != nil {
		return nil, err
	}
	return core.RestoreEntry(key, rec.Workspace, rec.Title, rec.Body), nil
}

// CodecByName returns the codec registered under name.
func CodecByName(name string, strict bool) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return NewJSONCodec(strict), nil
	case "yaml", "yml":
		return NewYAMLCodec(strict), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// --- JSON Codec ---

// JSONCodec stores notes as a single JSON object.
type JSONCodec struct {
	// Strict rejects documents carrying fields other than key, workspace, title and body.
	Strict bool
}

// NewJSONCodec creates a new JSON codec.
func NewJSONCodec(strict bool) *JSONCodec {
	return &JSONCodec{Strict: strict}
}

func (c *JSONCodec) Name() string { return "json" }

func (c *JSONCodec) Encode(note *core.Entry) ([]byte, error) {
	return json.Marshal(toRecord(note))
}

func (c *JSONCodec) Decode(data []byte) (*core.Entry, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	if c.Strict {
		decoder.DisallowUnknownFields()
	}

	var rec record
	if err := decoder.Decode(&rec); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("invalid json: trailing data after note object")
	}
	return rec.entry()
}

// --- YAML Codec ---

// YAMLCodec stores notes as a YAML mapping with the same fields as JSONCodec.
type YAMLCodec struct {
	// Strict rejects unknown fields.
	Strict bool
}

// NewYAMLCodec creates a new YAML codec.
func NewYAMLCodec(strict bool) *YAMLCodec {
	return &YAMLCodec{Strict: strict}
}

func (c *YAMLCodec) Name() string { return "yaml" }

func (c *YAMLCodec) Encode(note *core.Entry) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(toRecord(note)); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *YAMLCodec) Decode(data []byte) (*core.Entry, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(c.Strict)

	var rec record
	if err := decoder.Decode(&rec); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return rec.entry()
}
