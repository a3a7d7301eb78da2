package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notekeep/pkg/adapters/fs"
	"github.com/aretw0/notekeep/pkg/core"
	"github.com/aretw0/notekeep/pkg/core/storetest"
)

// setupRepo creates an initialized repository over a fresh directory.
// It returns the repository and the store directory.
func setupRepo(t *testing.T, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()

	storePath := filepath.Join(t.TempDir(), "store")
	cfg := fs.Config{Path: storePath}
	for _, opt := range opts {
		opt(&cfg)
	}

	repo, err := fs.Open(context.Background(), cfg)
	require.NoError(t, err)
	return repo, storePath
}

func TestInitialize(t *testing.T) {
	t.Run("Creates Directory if Missing", func(t *testing.T) {
		_, path := setupRepo(t)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Reinitializing Keeps Existing Notes", func(t *testing.T) {
		repo, path := setupRepo(t)
		ctx := context.Background()

		key, err := repo.Save(ctx, core.NewEntry("w1", "T", "B"))
		require.NoError(t, err)

		again, err := fs.Open(ctx, fs.Config{Path: path})
		require.NoError(t, err)

		keys, err := again.ListKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []core.Key{key}, keys)
	})

	t.Run("Fails if MustExist and Missing", func(t *testing.T) {
		_, err := fs.Open(context.Background(), fs.Config{
			Path:      filepath.Join(t.TempDir(), "missing"),
			MustExist: true,
		})
		assert.ErrorIs(t, err, core.ErrInitialize)
	})

	t.Run("Fails if Path is a File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

		_, err := fs.Open(context.Background(), fs.Config{Path: path})
		assert.ErrorIs(t, err, core.ErrInitialize)
	})
}

func TestSave(t *testing.T) {
	t.Run("Writes One File Named After the Key", func(t *testing.T) {
		repo, path := setupRepo(t)
		note := core.NewEntry("w1", "T", "B")

		key, err := repo.Save(context.Background(), note)
		require.NoError(t, err)
		assert.Equal(t, note.Key(), key)

		data, err := os.ReadFile(filepath.Join(path, key.String()))
		require.NoError(t, err)
		assert.JSONEq(t,
			`{"key":"`+key.String()+`","workspace":"w1","title":"T","body":"B"}`,
			string(data))

		entries, err := os.ReadDir(path)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temp files must not be left behind")
	})

	t.Run("Assigns a Key to Unkeyed Notes", func(t *testing.T) {
		repo, _ := setupRepo(t)
		note := core.RestoreEntry(core.Key{}, "w", "t", "b")

		key, err := repo.Save(context.Background(), note)
		require.NoError(t, err)
		assert.False(t, key.IsZero())
		assert.True(t, note.Key().IsZero(), "caller's note must not be mutated")

		got, ok := repo.Get(context.Background(), key)
		require.True(t, ok)
		assert.Equal(t, key, got.Key())
	})

	t.Run("Direct Write Mode", func(t *testing.T) {
		repo, path := setupRepo(t, func(c *fs.Config) { c.DirectWrite = true })

		key, err := repo.Save(context.Background(), core.NewEntry("w", "t", "b"))
		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(path, key.String()))
		assert.NoError(t, err)
	})

	t.Run("Fails When Directory Vanished", func(t *testing.T) {
		repo, path := setupRepo(t)
		require.NoError(t, os.RemoveAll(path))

		_, err := repo.Save(context.Background(), core.NewEntry("w", "t", "b"))
		assert.Error(t, err)
	})

	t.Run("Rejects Nil", func(t *testing.T) {
		repo, _ := setupRepo(t)
		_, err := repo.Save(context.Background(), nil)
		assert.Error(t, err)
	})
}

func TestFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing Note", func(t *testing.T) {
		repo, _ := setupRepo(t)

		_, err := repo.Fetch(ctx, core.NewKey())
		assert.ErrorIs(t, err, core.ErrNotFound)

		_, ok := repo.Get(ctx, core.NewKey())
		assert.False(t, ok)
	})

	t.Run("Corrupt Note", func(t *testing.T) {
		repo, path := setupRepo(t)
		key := core.NewKey()
		require.NoError(t, os.WriteFile(filepath.Join(path, key.String()), []byte("{not json"), 0644))

		_, err := repo.Fetch(ctx, key)
		assert.ErrorIs(t, err, core.ErrEncoding)

		_, ok := repo.Get(ctx, key)
		assert.False(t, ok)
	})

	t.Run("Key Mismatch", func(t *testing.T) {
		repo, path := setupRepo(t)
		note := core.NewEntry("w", "t", "b")
		_, err := repo.Save(ctx, note)
		require.NoError(t, err)

		other := core.NewKey()
		require.NoError(t, os.Rename(
			filepath.Join(path, note.Key().String()),
			filepath.Join(path, other.String())))

		_, err = repo.Fetch(ctx, other)
		assert.ErrorIs(t, err, core.ErrEncoding)
	})

	t.Run("Zero Key", func(t *testing.T) {
		repo, _ := setupRepo(t)
		_, err := repo.Fetch(ctx, core.Key{})
		assert.ErrorIs(t, err, core.ErrInvalidKey)
	})

	t.Run("Returns a Fresh Copy", func(t *testing.T) {
		repo, _ := setupRepo(t)
		key, err := repo.Save(ctx, core.NewEntry("w", "t", "b"))
		require.NoError(t, err)

		first, _ := repo.Get(ctx, key)
		first.UpdateTitle("local only")

		second, _ := repo.Get(ctx, key)
		assert.Equal(t, "t", second.Title())
	})
}

func TestListKeys(t *testing.T) {
	t.Run("Skips Foreign Entries", func(t *testing.T) {
		repo, path := setupRepo(t)
		ctx := context.Background()

		key, err := repo.Save(ctx, core.NewEntry("w", "t", "b"))
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(path, "README.md"), []byte("hi"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(path, fs.TempFilePrefix+"123"), []byte("{"), 0644))
		require.NoError(t, os.Mkdir(filepath.Join(path, core.NewKey().String()), 0755))

		keys, err := repo.ListKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []core.Key{key}, keys)
	})

	t.Run("Unreadable Entries Are Dropped From Values", func(t *testing.T) {
		repo, path := setupRepo(t)
		ctx := context.Background()

		_, err := repo.Save(ctx, core.NewEntry("w", "good", "b"))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(path, core.NewKey().String()), []byte("garbage"), 0644))

		keys, err := repo.ListKeys(ctx)
		require.NoError(t, err)
		assert.Len(t, keys, 2)

		values, err := repo.ListValues(ctx)
		require.NoError(t, err)
		require.Len(t, values, 1)
		assert.Equal(t, "good", values[0].Title())
	})

	t.Run("Fails When Directory Vanished", func(t *testing.T) {
		repo, path := setupRepo(t)
		require.NoError(t, os.RemoveAll(path))

		_, err := repo.ListKeys(context.Background())
		assert.Error(t, err)
		_, err = repo.ListValues(context.Background())
		assert.Error(t, err)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Removes the File", func(t *testing.T) {
		repo, path := setupRepo(t)
		key, err := repo.Save(ctx, core.NewEntry("w", "t", "b"))
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, key))

		_, err = os.Stat(filepath.Join(path, key.String()))
		assert.True(t, errors.Is(err, os.ErrNotExist))
		_, ok := repo.Get(ctx, key)
		assert.False(t, ok)
		keys, _ := repo.ListKeys(ctx)
		assert.NotContains(t, keys, key)
	})

	t.Run("Missing Key Is an Error", func(t *testing.T) {
		repo, _ := setupRepo(t)
		err := repo.Delete(ctx, core.NewKey())
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestReadOnly(t *testing.T) {
	repo, path := setupRepo(t)
	ctx := context.Background()
	key, err := repo.Save(ctx, core.NewEntry("w", "t", "b"))
	require.NoError(t, err)

	ro, err := fs.Open(ctx, fs.Config{Path: path, ReadOnly: true})
	require.NoError(t, err)

	_, ok := ro.Get(ctx, key)
	assert.True(t, ok)

	_, err = ro.Save(ctx, core.NewEntry("w", "t", "b"))
	assert.ErrorIs(t, err, core.ErrReadOnly)
	assert.ErrorIs(t, ro.Delete(ctx, key), core.ErrReadOnly)

	_, err = fs.Open(ctx, fs.Config{Path: filepath.Join(path, "nope"), ReadOnly: true})
	assert.ErrorIs(t, err, core.ErrInitialize)
}

// TestOverwriteScenario saves, updates the fetched copy and saves again under the same key.
func TestOverwriteScenario(t *testing.T) {
	for _, codec := range []fs.Codec{fs.NewJSONCodec(false), fs.NewYAMLCodec(false)} {
		t.Run(codec.Name(), func(t *testing.T) {
			repo, _ := setupRepo(t, func(c *fs.Config) { c.Codec = codec })
			ctx := context.Background()

			key, err := repo.Save(ctx, core.NewEntry("w1", "T", "B"))
			require.NoError(t, err)

			keys, err := repo.ListKeys(ctx)
			require.NoError(t, err)
			require.Len(t, keys, 1)

			fetched, ok := repo.Get(ctx, key)
			require.True(t, ok)
			assert.Equal(t, "T", fetched.Title())
			assert.Equal(t, "B", fetched.Body())

			fetched.UpdateTitle("T2")
			again, err := repo.Save(ctx, fetched)
			require.NoError(t, err)
			assert.Equal(t, key, again)

			refetched, ok := repo.Get(ctx, key)
			require.True(t, ok)
			assert.Equal(t, "T2", refetched.Title())

			keys, err = repo.ListKeys(ctx)
			require.NoError(t, err)
			assert.Len(t, keys, 1)
		})
	}
}

// TestDeleteOneOfTwo saves two notes and deletes one.
func TestDeleteOneOfTwo(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	doomed, err := repo.Save(ctx, core.NewEntry("w", "doomed", "x"))
	require.NoError(t, err)
	_, err = repo.Save(ctx, core.NewEntry("w", "survivor", "y"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, doomed))

	values, err := repo.ListValues(ctx)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "survivor", values[0].Title())
	assert.Equal(t, "y", values[0].Body())
}

func TestState(t *testing.T) {
	repo, path := setupRepo(t, func(c *fs.Config) { c.Codec = fs.NewYAMLCodec(true) })

	state, ok := repo.State().(fs.RepositoryState)
	require.True(t, ok)
	assert.Equal(t, path, state.Path)
	assert.Equal(t, "yaml", state.Codec)
	assert.True(t, state.Atomic)
	assert.False(t, state.WatcherActive)
	assert.Equal(t, "fs", repo.ComponentType())
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.Store[core.Key, *core.Entry] {
		repo, _ := setupRepo(t)
		return repo
	})
}
