package flatfile

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/LukasKalbertodt/grakawa/core"
	"github.com/LukasKalbertodt/grakawa/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, root string) *Store {
	t.Helper()
	s, err := open(root)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	t.Run("creates missing root", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "nested", "db")
		s := openTestStore(t, root)

		assert.Equal(t, root, s.Root())
		assert.DirExists(t, root)
		assert.FileExists(t, filepath.Join(root, lockFileName))
		assert.FileExists(t, filepath.Join(root, indexFileName))
		assert.Equal(t, 0, s.Len())
	})

	t.Run("root is a file", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "db")
		require.NoError(t, os.WriteFile(root, []byte("x"), 0o644))

		s, err := Open(root)
		require.Error(t, err)
		assert.Nil(t, s)
		assert.True(t, errors.Is(err, storage.ErrNotDirectory))
	})

	t.Run("corrupt index releases the lock", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, indexFileName), []byte("{"), 0o644))

		s, err := Open(root)
		require.Error(t, err)
		assert.Nil(t, s)
		assert.True(t, errors.Is(err, storage.ErrCorrupt))
		assert.NoFileExists(t, filepath.Join(root, lockFileName))
	})
}

func TestOpen_Contention(t *testing.T) {
	root := t.TempDir()
	first, err := Open(root)
	require.NoError(t, err)

	second, err := Open(root)
	require.Error(t, err)
	assert.Nil(t, second)
	assert.True(t, errors.Is(err, storage.ErrLocked))

	var locked *storage.LockedError
	require.True(t, errors.As(err, &locked))
	assert.Equal(t, root, locked.Root)
	assert.Equal(t, filepath.Join(root, lockFileName), locked.LockPath)
	assert.Contains(t, locked.Holder, "pid")

	require.NoError(t, first.Close())

	third, err := Open(root)
	require.NoError(t, err)
	require.NoError(t, third.Close())
}

func TestStore_CloseIsIdempotent(t *testing.T) {
	s, err := open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.AddProduct(1)
	assert.True(t, errors.Is(err, storage.ErrStorageClosed))
	_, err = s.GetProduct(1)
	assert.True(t, errors.Is(err, storage.ErrStorageClosed))
	_, err = s.Check()
	assert.True(t, errors.Is(err, storage.ErrStorageClosed))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, slices.Collect(s.ProductIDs()))
}

func TestStore_AddProduct(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	p, err := s.AddProduct(123)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, core.ProductID(123), p.ID())
	assert.DirExists(t, filepath.Join(s.Root(), "p000000123"))

	got, err := s.GetProduct(123)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.Path(), got.Path())

	t.Run("second add is a no-op", func(t *testing.T) {
		again, err := s.AddProduct(123)
		require.NoError(t, err)
		assert.Nil(t, again)
		assert.Equal(t, []core.ProductID{123}, slices.Collect(s.ProductIDs()))
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := s.AddProduct(0)
		assert.True(t, errors.Is(err, core.ErrInvalidProductID))
	})
}

func TestStore_AddProductIndexFailure(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	// A non-empty directory in place of the index file makes the rename fail.
	indexPath := filepath.Join(s.Root(), indexFileName)
	require.NoError(t, os.Remove(indexPath))
	require.NoError(t, os.MkdirAll(filepath.Join(indexPath, "blocker"), 0o755))

	p, err := s.AddProduct(7)
	require.Error(t, err)
	assert.Nil(t, p)
	assert.False(t, s.Contains(7))
	assert.NoDirExists(t, filepath.Join(s.Root(), "p000000007"), "partially added record is removed")

	n, err := s.AddProducts(8, 9)
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.NoDirExists(t, filepath.Join(s.Root(), "p000000008"))
	assert.NoDirExists(t, filepath.Join(s.Root(), "p000000009"))
}

func TestStore_AddProducts(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	n, err := s.AddProducts(30, 10, 20)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.AddProducts(20, 40, 40, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, []core.ProductID{10, 20, 30, 40, 50}, slices.Collect(s.ProductIDs()))
	for id := range s.ProductIDs() {
		p, err := s.GetProduct(id)
		require.NoError(t, err)
		assert.NotNil(t, p, "record for %d", id)
	}

	n, err = s.AddProducts()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStore_GetProductAbsent(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	p, err := s.GetProduct(99)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestStore_GetProductUnindexedWarns(t *testing.T) {
	var logs bytes.Buffer
	root := t.TempDir()
	s, err := open(root, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, os.Mkdir(filepath.Join(root, "p000000042"), 0o755))

	p, err := s.GetProduct(42)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Contains(t, logs.String(), "not in the index")
}

func TestStore_GetOrAddProduct(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	t.Run("adds unknown product", func(t *testing.T) {
		p, err := s.GetOrAddProduct(5)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.True(t, s.Contains(5))
	})

	t.Run("returns existing product", func(t *testing.T) {
		p, err := s.GetOrAddProduct(5)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("recreates record of indexed product", func(t *testing.T) {
		dir := filepath.Join(s.Root(), "p000000005")
		require.NoError(t, os.RemoveAll(dir))

		p, err := s.GetOrAddProduct(5)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.DirExists(t, dir)
		assert.Equal(t, 1, s.Len())
	})
}

func TestStore_ProductIDsIsASnapshot(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	_, err := s.AddProducts(1, 2)
	require.NoError(t, err)

	ids := s.ProductIDs()
	_, err = s.AddProduct(3)
	require.NoError(t, err)

	assert.Equal(t, []core.ProductID{1, 2}, slices.Collect(ids))
	// restartable
	assert.Equal(t, []core.ProductID{1, 2}, slices.Collect(ids))
	assert.Equal(t, []core.ProductID{1, 2, 3}, slices.Collect(s.ProductIDs()))
}

func TestStore_EndToEnd(t *testing.T) {
	root := filepath.Join(t.TempDir(), "db")

	store, err := Open(root)
	require.NoError(t, err)

	p, err := store.AddProduct(123)
	require.NoError(t, err)
	require.NotNil(t, p)

	written := core.Prices{
		{Year: 2024, Month: time.January, Day: 1}: core.FromCents(710),
		{Year: 2024, Month: time.January, Day: 2}: core.FromCents(725),
	}
	require.NoError(t, p.WritePrices(written))
	require.NoError(t, store.Close())
	assert.NoFileExists(t, filepath.Join(root, lockFileName))

	store, err = Open(root)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.GetProduct(123)
	require.NoError(t, err)
	require.NotNil(t, got)

	read, err := got.ReadPrices()
	require.NoError(t, err)
	assert.Equal(t, written, read)
	assert.Equal(t, []core.ProductID{123}, slices.Collect(store.ProductIDs()))
}

func TestOpenTemp(t *testing.T) {
	store, cleanup, err := OpenTemp()
	require.NoError(t, err)
	root := store.Root()
	assert.DirExists(t, root)

	cleanup()
	assert.NoDirExists(t, root)
}
