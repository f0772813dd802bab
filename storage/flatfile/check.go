package flatfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/LukasKalbertodt/grakawa/core"
	"github.com/LukasKalbertodt/grakawa/storage"
)

// Check compares the index against the product directories on disk and
// inspects every price file. Nothing is created or modified.
func (s *Store) Check() (*storage.CheckReport, error) {
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list store directory %s: %w", s.root, err)
	}
	onDisk := make(map[core.ProductID]bool)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if id, ok := parseProductDirName(entry.Name()); ok {
			onDisk[id] = true
		}
	}

	report := &storage.CheckReport{}
	for _, id := range s.index.IDs() {
		if !onDisk[id] {
			report.MissingRecords = append(report.MissingRecords, id)
			continue
		}
		delete(onDisk, id)
		report.Products = append(report.Products, inspectProduct(&Product{id: id, path: productPath(s.root, id)}))
	}
	for id := range onDisk {
		report.Unindexed = append(report.Unindexed, id)
	}
	slices.Sort(report.Unindexed)

	if !report.Consistent() {
		s.logger.Warn("store is inconsistent",
			"missing_records", len(report.MissingRecords),
			"unindexed", len(report.Unindexed))
	}
	return report, nil
}

func inspectProduct(p *Product) storage.ProductReport {
	r := storage.ProductReport{ID: p.id}
	prices, err := p.loadPrices()
	switch {
	case err == nil:
		r.Status = storage.PriceFileOK
		r.Entries = len(prices)
		r.Fingerprint = prices.Fingerprint()
	case errors.Is(err, fs.ErrNotExist):
		r.Status = storage.PriceFileMissing
	default:
		r.Status = storage.PriceFileCorrupt
		r.Err = err
	}
	return r
}
