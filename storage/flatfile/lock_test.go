package flatfile

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), lockFileName)

	lock, err := tryLock(path, slog.Default())
	require.NoError(t, err)
	require.NotNil(t, lock)
	assert.FileExists(t, path)
	assert.Contains(t, lockHolder(path), "pid")

	t.Run("second attempt reports locked", func(t *testing.T) {
		second, err := tryLock(path, slog.Default())
		require.NoError(t, err)
		assert.Nil(t, second)
	})

	lock.Release()
	assert.NoFileExists(t, path)

	t.Run("can lock again after release", func(t *testing.T) {
		again, err := tryLock(path, slog.Default())
		require.NoError(t, err)
		require.NotNil(t, again)
		again.Release()
	})
}

func TestTryLock_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist", lockFileName)

	lock, err := tryLock(path, slog.Default())
	require.Error(t, err)
	assert.Nil(t, lock)
}

func TestLockRelease_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), lockFileName)
	lock, err := tryLock(path, slog.Default())
	require.NoError(t, err)

	lock.Release()
	lock.Release()

	var nilLock *Lock
	nilLock.Release()
}

func TestLockRelease_FileAlreadyGone(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	path := filepath.Join(t.TempDir(), lockFileName)
	lock, err := tryLock(path, logger)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	assert.NotPanics(t, lock.Release)
	assert.Contains(t, logs.String(), "could not delete lock file")
	assert.Contains(t, logs.String(), "level=WARN")
}
