package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notekeep/pkg/adapters/fs"
	"github.com/aretw0/notekeep/pkg/core"
)

// waitForEvent drains events until one for key with the given type arrives.
func waitForEvent(t *testing.T, events <-chan core.Event, key core.Key, typ core.EventType) {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case e, ok := <-events:
			require.True(t, ok, "event channel closed early")
			if e.Key == key && e.Type == typ {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s %s", typ, key)
		}
	}
}

// nextEventFor returns the first event for key, skipping events for other notes.
func nextEventFor(t *testing.T, events <-chan core.Event, key core.Key) core.Event {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case e, ok := <-events:
			require.True(t, ok, "event channel closed early")
			if e.Key == key {
				return e
			}
		case <-timeout:
			t.Fatalf("timed out waiting for an event on %s", key)
		}
	}
}

// drain reads until the channel is closed.
func drain(t *testing.T, events <-chan core.Event) {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("event channel was not closed")
		}
	}
}

func TestWatch(t *testing.T) {
	t.Run("Reports Saves and Deletes", func(t *testing.T) {
		repo, _ := setupRepo(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := repo.Watch(ctx, "*")
		require.NoError(t, err)
		require.Eventually(t, func() bool {
			return repo.State().(fs.RepositoryState).WatcherActive
		}, time.Second, 10*time.Millisecond)

		key, err := repo.Save(ctx, core.NewEntry("w", "t", "b"))
		require.NoError(t, err)
		waitForEvent(t, events, key, core.EventCreate)

		require.NoError(t, repo.Delete(ctx, key))
		waitForEvent(t, events, key, core.EventDelete)
	})

	t.Run("Ignores Foreign Files", func(t *testing.T) {
		repo, path := setupRepo(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := repo.Watch(ctx, "")
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(path, "README.md"), []byte("x"), 0644))
		key, err := repo.Save(ctx, core.NewEntry("w", "t", "b"))
		require.NoError(t, err)

		select {
		case e := <-events:
			assert.Equal(t, key, e.Key, "first event must belong to the note")
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for event")
		}
	})

	t.Run("Filters by Pattern", func(t *testing.T) {
		repo, _ := setupRepo(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		target := core.NewEntry("w", "t", "b")
		events, err := repo.Watch(ctx, target.Key().String())
		require.NoError(t, err)

		_, err = repo.Save(ctx, core.NewEntry("w", "other", "b"))
		require.NoError(t, err)
		_, err = repo.Save(ctx, target)
		require.NoError(t, err)

		select {
		case e := <-events:
			assert.Equal(t, target.Key(), e.Key)
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for event")
		}
	})

	t.Run("Overwrite of Existing Note Is a Modify", func(t *testing.T) {
		for _, direct := range []bool{false, true} {
			repo, _ := setupRepo(t, func(c *fs.Config) { c.DirectWrite = direct })
			ctx, cancel := context.WithCancel(context.Background())

			note := core.NewEntry("w", "t", "b")
			key, err := repo.Save(ctx, note)
			require.NoError(t, err)

			events, err := repo.Watch(ctx, key.String())
			require.NoError(t, err)

			note.UpdateTitle("t2")
			_, err = repo.Save(ctx, note)
			require.NoError(t, err)

			first := nextEventFor(t, events, key)
			assert.Equal(t, core.EventModify, first.Type, "direct write: %v", direct)
			cancel()
		}
	})

	t.Run("Note Created While Watching Then Overwritten", func(t *testing.T) {
		repo, _ := setupRepo(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := repo.Watch(ctx, "*")
		require.NoError(t, err)

		note := core.NewEntry("w", "t", "b")
		key, err := repo.Save(ctx, note)
		require.NoError(t, err)
		assert.Equal(t, core.EventCreate, nextEventFor(t, events, key).Type)

		note.UpdateBody("b2")
		_, err = repo.Save(ctx, note)
		require.NoError(t, err)
		waitForEvent(t, events, key, core.EventModify)

		require.NoError(t, repo.Delete(ctx, key))
		waitForEvent(t, events, key, core.EventDelete)

		// Saving again after a delete is a fresh create.
		_, err = repo.Save(ctx, note)
		require.NoError(t, err)
		waitForEvent(t, events, key, core.EventCreate)
	})

	t.Run("Watcher Count Tracks Every Watcher", func(t *testing.T) {
		repo, _ := setupRepo(t)
		firstCtx, cancelFirst := context.WithCancel(context.Background())
		secondCtx, cancelSecond := context.WithCancel(context.Background())
		defer cancelSecond()

		first, err := repo.Watch(firstCtx, "*")
		require.NoError(t, err)
		second, err := repo.Watch(secondCtx, "*")
		require.NoError(t, err)
		assert.Equal(t, 2, repo.State().(fs.RepositoryState).Watchers)

		cancelFirst()
		drain(t, first)
		require.Eventually(t, func() bool {
			return repo.State().(fs.RepositoryState).Watchers == 1
		}, 3*time.Second, 10*time.Millisecond)
		assert.True(t, repo.State().(fs.RepositoryState).WatcherActive)

		cancelSecond()
		drain(t, second)
		require.Eventually(t, func() bool {
			return !repo.State().(fs.RepositoryState).WatcherActive
		}, 3*time.Second, 10*time.Millisecond)
	})

	t.Run("Closes Channel on Cancel", func(t *testing.T) {
		repo, _ := setupRepo(t)
		ctx, cancel := context.WithCancel(context.Background())

		events, err := repo.Watch(ctx, "*")
		require.NoError(t, err)
		cancel()

		require.Eventually(t, func() bool {
			select {
			case _, ok := <-events:
				return !ok
			default:
				return false
			}
		}, 3*time.Second, 10*time.Millisecond)
	})

	t.Run("Rejects Bad Pattern", func(t *testing.T) {
		repo, _ := setupRepo(t)
		_, err := repo.Watch(context.Background(), "[")
		assert.Error(t, err)
	})
}
