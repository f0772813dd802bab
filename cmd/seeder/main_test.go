package main

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LukasKalbertodt/grakawa"
	"github.com/LukasKalbertodt/grakawa/acquire/mock"
	"github.com/LukasKalbertodt/grakawa/core"
)

func TestIDsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(path, []byte("# products\n3\n\n 1 \n3\n"), 0o644))

	var readErr error
	ids, err := idsFromFile(path, &readErr)
	require.NoError(t, err)
	assert.Equal(t, []core.ProductID{3, 1, 3}, slices.Collect(ids))
	assert.NoError(t, readErr)
}

func TestIDsFromFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(path, []byte("1\nfoo\n2\n"), 0o644))

	var readErr error
	ids, err := idsFromFile(path, &readErr)
	require.NoError(t, err)
	assert.Equal(t, []core.ProductID{1}, slices.Collect(ids))
	require.Error(t, readErr)
	assert.Contains(t, readErr.Error(), "ids.txt:2")
}

func TestSeed(t *testing.T) {
	db, err := grakawa.NewDatabase(t.TempDir(), grakawa.WithSource(mock.NewMockSource()))
	require.NoError(t, err)
	defer db.Close()

	summary, err := seed(context.Background(), db, generatedIDs(7), 3)
	require.NoError(t, err)
	assert.Equal(t, 7, db.Store().Len())
	assert.Equal(t, 7, summary.Updated)

	history, err := db.History(7)
	require.NoError(t, err)
	assert.Len(t, history, mock.HistoryDays)
}

func TestAddBatched_CountsOnlyNewProducts(t *testing.T) {
	db, err := grakawa.NewDatabase(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	added, err := addBatched(db.Store(), slices.Values([]core.ProductID{1, 2, 2, 3, 1}), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, added)
	assert.Equal(t, []core.ProductID{1, 2, 3}, slices.Collect(db.Store().ProductIDs()))
}
