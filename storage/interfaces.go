package storage

import (
	"iter"

	"github.com/LukasKalbertodt/grakawa/core"
)

// Product is a handle to one product's on-disk record.
// Handles hold no exclusive resource; several handles for the same ID may
// coexist and all read and write the same file.
type Product interface {
	// ID returns the product identifier.
	ID() core.ProductID

	// Path returns the product's directory.
	Path() string

	// ReadPrices loads the price history.
	// A missing price file is treated as an empty series and an empty file is
	// written so that subsequent reads are stable.
	// Returns an error wrapping ErrCorrupt if the file cannot be parsed.
	ReadPrices() (core.Prices, error)

	// WritePrices replaces the whole price history with prices.
	// Merging with the previous content is the caller's job.
	WritePrices(prices core.Prices) error
}

// Store provides access to all tracked products under one storage root.
type Store interface {
	// AddProduct registers id and creates its record.
	// Returns nil, nil if id was already known.
	AddProduct(id core.ProductID) (Product, error)

	// AddProducts registers all ids, creating records for the new ones, and
	// persists the index once. Returns the number of ids that were new.
	AddProducts(ids ...core.ProductID) (int, error)

	// GetProduct opens the record of id.
	// Returns nil, nil if no record exists.
	GetProduct(id core.ProductID) (Product, error)

	// GetOrAddProduct opens the record of id, adding it first if necessary.
	GetOrAddProduct(id core.ProductID) (Product, error)

	// Contains reports whether id is in the index.
	Contains(id core.ProductID) bool

	// Len returns the number of indexed products.
	Len() int

	// ProductIDs returns the indexed IDs in ascending order.
	// The sequence is a snapshot taken at call time and may be ranged over
	// any number of times.
	ProductIDs() iter.Seq[core.ProductID]

	// Check compares the index with the records on disk without modifying
	// anything.
	Check() (*CheckReport, error)

	// Root returns the storage root directory.
	Root() string

	// Close releases the storage root.
	Close() error
}

// PriceFileStatus describes the state of one product's price file.
type PriceFileStatus int

const (
	// PriceFileOK means the file exists and parses.
	PriceFileOK PriceFileStatus = iota
	// PriceFileMissing means the product has not been read or written yet.
	PriceFileMissing
	// PriceFileCorrupt means the file exists but does not parse.
	PriceFileCorrupt
)

func (s PriceFileStatus) String() string {
	switch s {
	case PriceFileOK:
		return "ok"
	case PriceFileMissing:
		return "missing"
	case PriceFileCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// ProductReport is the check result for one indexed product with a record.
type ProductReport struct {
	ID          core.ProductID
	Status      PriceFileStatus
	Entries     int
	Fingerprint core.Fingerprint
	// Err holds the parse error for corrupt files.
	Err error
}

// CheckReport is the result of a consistency pass over a store.
type CheckReport struct {
	// Products holds one entry per indexed product that has a record,
	// in ascending ID order.
	Products []ProductReport

	// MissingRecords lists indexed IDs without a product directory.
	MissingRecords []core.ProductID

	// Unindexed lists product directories whose ID is not in the index.
	Unindexed []core.ProductID
}

// Consistent reports whether the index and the records agree and every price
// file parses.
func (r *CheckReport) Consistent() bool {
	if len(r.MissingRecords) > 0 || len(r.Unindexed) > 0 {
		return false
	}
	for _, p := range r.Products {
		if p.Status == PriceFileCorrupt {
			return false
		}
	}
	return true
}
