// Package storetest holds the behaviour every core.Store backend must share.
// Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notekeep/pkg/core"
)

// Factory returns a fresh, empty, ready-to-use store.
type Factory func(t *testing.T) core.Store[core.Key, *core.Entry]

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("RoundTrip", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		note := core.NewEntry("w1", "T", "B")
		key, err := store.Save(ctx, note)
		require.NoError(t, err)
		assert.Equal(t, note.Key(), key)

		got, ok := store.Get(ctx, key)
		require.True(t, ok)
		assert.Equal(t, key, got.Key())
		assert.Equal(t, "w1", got.Workspace())
		assert.Equal(t, "T", got.Title())
		assert.Equal(t, "B", got.Body())
	})

	t.Run("OverwriteKeepsOneKey", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		key, err := store.Save(ctx, core.NewEntry("w1", "T", "B"))
		require.NoError(t, err)

		fetched, ok := store.Get(ctx, key)
		require.True(t, ok)
		fetched.UpdateTitle("T2")

		again, err := store.Save(ctx, fetched)
		require.NoError(t, err)
		assert.Equal(t, key, again)

		refetched, ok := store.Get(ctx, key)
		require.True(t, ok)
		assert.Equal(t, "T2", refetched.Title())
		assert.Equal(t, "B", refetched.Body())

		keys, err := store.ListKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []core.Key{key}, keys)
	})

	t.Run("ZeroKeyIsAssigned", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		key, err := store.Save(ctx, core.RestoreEntry(core.Key{}, "w", "t", "b"))
		require.NoError(t, err)
		assert.False(t, key.IsZero())

		keys, err := store.ListKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []core.Key{key}, keys)
	})

	t.Run("DeleteRemoves", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		doomed, err := store.Save(ctx, core.NewEntry("w", "doomed", "x"))
		require.NoError(t, err)
		survivor, err := store.Save(ctx, core.NewEntry("w", "survivor", "y"))
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, doomed))

		_, ok := store.Get(ctx, doomed)
		assert.False(t, ok)

		keys, err := store.ListKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []core.Key{survivor}, keys)

		values, err := store.ListValues(ctx)
		require.NoError(t, err)
		require.Len(t, values, 1)
		assert.Equal(t, "survivor", values[0].Title())
		assert.Equal(t, "y", values[0].Body())
	})

	t.Run("DeleteMissingIsNotFound", func(t *testing.T) {
		store := newStore(t)
		err := store.Delete(context.Background(), core.NewKey())
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("GetMissingIsAbsent", func(t *testing.T) {
		store := newStore(t)
		_, ok := store.Get(context.Background(), core.NewKey())
		assert.False(t, ok)
	})

	t.Run("FetchDistinguishesNotFound", func(t *testing.T) {
		store := newStore(t)
		fetcher, ok := store.(core.Fetcher[core.Key, *core.Entry])
		if !ok {
			t.Skip("store has no strict read path")
		}
		_, err := fetcher.Fetch(context.Background(), core.NewKey())
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("InvalidUTF8IsRejected", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for _, note := range []*core.Entry{
			core.NewEntry("w\xff", "t", "b"),
			core.NewEntry("w", "a\xffb", "b"),
			core.NewEntry("w", "t", "body\xfe"),
		} {
			_, err := store.Save(ctx, note)
			assert.ErrorIs(t, err, core.ErrEncoding)
		}

		keys, err := store.ListKeys(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("UnicodeRoundTrip", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		note := core.NewEntry("日本", "Ünïcødé \u2028 <&>", "emoji 🙂\ttab\nline")
		key, err := store.Save(ctx, note)
		require.NoError(t, err)

		got, ok := store.Get(ctx, key)
		require.True(t, ok)
		assert.Equal(t, note.Workspace(), got.Workspace())
		assert.Equal(t, note.Title(), got.Title())
		assert.Equal(t, note.Body(), got.Body())
	})

	t.Run("EmptyStore", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		keys, err := store.ListKeys(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)

		values, err := store.ListValues(ctx)
		require.NoError(t, err)
		assert.Empty(t, values)
	})
}
