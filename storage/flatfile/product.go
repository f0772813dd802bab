package flatfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/LukasKalbertodt/grakawa/core"
	"github.com/LukasKalbertodt/grakawa/storage"
)

// Product is the on-disk record of one product: a directory holding its
// price history file.
type Product struct {
	id   core.ProductID
	path string
}

var _ storage.Product = (*Product)(nil)

// createProduct makes sure the product directory exists.
// created reports whether this call created it.
func createProduct(root string, id core.ProductID) (p *Product, created bool, err error) {
	path := productPath(root, id)
	created, err = ensureDir(path, false)
	if err != nil {
		return nil, false, err
	}
	return &Product{id: id, path: path}, created, nil
}

// openProduct returns the record of id.
// Returns nil, nil if there is no product directory.
func openProduct(root string, id core.ProductID) (*Product, error) {
	path := productPath(root, id)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat product %d: %w", id, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: product path %s", storage.ErrNotDirectory, path)
	}
	return &Product{id: id, path: path}, nil
}

// ID returns the product identifier.
func (p *Product) ID() core.ProductID {
	return p.id
}

// Path returns the product directory.
func (p *Product) Path() string {
	return p.path
}

func (p *Product) pricesPath() string {
	return filepath.Join(p.path, pricesFileName)
}

// ReadPrices reads the current price data from file. If there is no price
// file yet, an empty one is written and an empty series returned.
func (p *Product) ReadPrices() (core.Prices, error) {
	prices, err := p.loadPrices()
	if errors.Is(err, fs.ErrNotExist) {
		prices = core.Prices{}
		if err := p.WritePrices(prices); err != nil {
			return nil, fmt.Errorf("initialize price file of product %d: %w", p.id, err)
		}
		return prices, nil
	}
	if err != nil {
		return nil, err
	}
	return prices, nil
}

// WritePrices writes the given price data to file, replacing all prior data.
func (p *Product) WritePrices(prices core.Prices) error {
	if err := core.ValidatePrices(prices); err != nil {
		return fmt.Errorf("product %d: %w", p.id, err)
	}
	return writeFileAtomic(p.pricesPath(), func(w io.Writer) error {
		return storage.EncodePrices(w, prices)
	})
}

// loadPrices reads the price file without creating it.
// A missing file is reported as an error wrapping fs.ErrNotExist.
func (p *Product) loadPrices() (core.Prices, error) {
	path := p.pricesPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read price file of product %d: %w", p.id, err)
	}
	prices, err := storage.DecodePrices(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: price file %s: %w", storage.ErrCorrupt, path, err)
	}
	return prices, nil
}
