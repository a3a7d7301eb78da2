package core_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notekeep/pkg/core"
)

func TestKey(t *testing.T) {
	t.Run("Fresh keys are distinct", func(t *testing.T) {
		seen := make(map[core.Key]bool)
		for i := 0; i < 1000; i++ {
			k := core.NewKey()
			require.False(t, seen[k], "duplicate key %s", k)
			require.False(t, k.IsZero())
			seen[k] = true
		}
	})

	t.Run("Round-trips through canonical form", func(t *testing.T) {
		k := core.NewKey()
		parsed, err := core.ParseKey(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	})

	t.Run("Rejects non-canonical forms", func(t *testing.T) {
		k := core.NewKey()
		for _, s := range []string{
			strings.ToUpper(k.String()),
			"{" + k.String() + "}",
			"urn:uuid:" + k.String(),
			strings.ReplaceAll(k.String(), "-", ""),
			"notes.txt",
			"",
		} {
			_, err := core.ParseKey(s)
			assert.ErrorIs(t, err, core.ErrInvalidKey, "input %q", s)
		}
	})
}

func TestEntry(t *testing.T) {
	t.Run("Mutators only touch title and body", func(t *testing.T) {
		e := core.NewEntry("w1", "T", "B")
		key := e.Key()

		e.UpdateTitle("T2")
		e.UpdateBody("B2")

		assert.Equal(t, key, e.Key())
		assert.Equal(t, "w1", e.Workspace())
		assert.Equal(t, "T2", e.Title())
		assert.Equal(t, "B2", e.Body())
	})

	t.Run("WithKey leaves the receiver untouched", func(t *testing.T) {
		e := core.RestoreEntry(core.Key{}, "w", "t", "b")
		k := core.NewKey()

		keyed := e.WithKey(k)

		assert.True(t, e.Key().IsZero())
		assert.Equal(t, k, keyed.Key())
		assert.Equal(t, "t", keyed.Title())
	})

	t.Run("Clone is independent", func(t *testing.T) {
		e := core.NewEntry("w", "t", "b")
		c := e.Clone()
		c.UpdateTitle("changed")
		assert.Equal(t, "t", e.Title())
	})

	t.Run("JSON shape", func(t *testing.T) {
		e := core.NewEntry("w1", "T", "B")
		data, err := json.Marshal(e)
		require.NoError(t, err)

		var raw map[string]string
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, map[string]string{
			"key":       e.Key().String(),
			"workspace": "w1",
			"title":     "T",
			"body":      "B",
		}, raw)

		var back core.Entry
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, e.Key(), back.Key())
		assert.Equal(t, "B", back.Body())
	})

	t.Run("Invalid key in JSON fails to decode", func(t *testing.T) {
		var back core.Entry
		err := json.Unmarshal([]byte(`{"key":"nope","workspace":"w","title":"t","body":"b"}`), &back)
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrInvalidKey))
	})
}

func TestEntry_Validate(t *testing.T) {
	assert.NoError(t, core.NewEntry("日本", "Ünïcødé", "🙂").Validate())
	assert.NoError(t, core.NewEntry("", "", "").Validate())

	err := core.NewEntry("w", "a\xffb", "b").Validate()
	assert.ErrorIs(t, err, core.ErrEncoding)
	assert.ErrorContains(t, err, "title")

	err = core.NewEntry("w", "t", "body\xfe").Validate()
	assert.ErrorContains(t, err, "body")

	err = core.NewEntry("\xc3", "t", "b").Validate()
	assert.ErrorContains(t, err, "workspace")
}
