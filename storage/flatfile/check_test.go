package flatfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/LukasKalbertodt/grakawa/core"
	"github.com/LukasKalbertodt/grakawa/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CheckConsistent(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	_, err := s.AddProducts(1, 2)
	require.NoError(t, err)

	prices := core.Prices{{Year: 2024, Month: time.May, Day: 1}: 100}
	p, err := s.GetProduct(1)
	require.NoError(t, err)
	require.NoError(t, p.WritePrices(prices))

	report, err := s.Check()
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	require.Len(t, report.Products, 2)

	assert.Equal(t, core.ProductID(1), report.Products[0].ID)
	assert.Equal(t, storage.PriceFileOK, report.Products[0].Status)
	assert.Equal(t, 1, report.Products[0].Entries)
	assert.Equal(t, prices.Fingerprint(), report.Products[0].Fingerprint)

	assert.Equal(t, storage.PriceFileMissing, report.Products[1].Status)
	assert.NoFileExists(t, filepath.Join(s.Root(), "p000000002", pricesFileName), "check must not create files")
}

func TestStore_CheckFindsProblems(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	_, err := s.AddProducts(1, 2, 3)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(s.Root(), "p000000002")))
	require.NoError(t, os.Mkdir(filepath.Join(s.Root(), "p000000009"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(s.Root(), "unrelated"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "p000000003", pricesFileName), []byte("[]"), 0o644))

	report, err := s.Check()
	require.NoError(t, err)
	assert.False(t, report.Consistent())
	assert.Equal(t, []core.ProductID{2}, report.MissingRecords)
	assert.Equal(t, []core.ProductID{9}, report.Unindexed)

	require.Len(t, report.Products, 2)
	assert.Equal(t, core.ProductID(3), report.Products[1].ID)
	assert.Equal(t, storage.PriceFileCorrupt, report.Products[1].Status)
	assert.ErrorIs(t, report.Products[1].Err, storage.ErrCorrupt)
}
