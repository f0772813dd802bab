package flatfile

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/LukasKalbertodt/grakawa/core"
	"github.com/LukasKalbertodt/grakawa/storage"
)

// Store is a product store kept in plain files under one root directory:
//
//	root/.lock               present while a Store is open
//	root/index.json          {"product_ids": [...]}
//	root/p000000123/         one directory per product
//	root/p000000123/prices.json
type Store struct {
	root   string
	lock   *Lock
	index  *Index
	logger *slog.Logger
	closed bool
}

var _ storage.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open opens the store rooted at root, creating the directory if it doesn't
// exist. The root stays locked until Close is called.
//
// If another store holds the root, the returned error wraps storage.ErrLocked
// and is a *storage.LockedError.
func Open(root string, opts ...Option) (storage.Store, error) {
	s, err := open(root, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func open(root string, opts ...Option) (*Store, error) {
	s := &Store{
		root:   root,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	created, err := ensureDir(root, true)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("created store directory", "root", root)
	} else {
		s.logger.Debug("using existing store directory", "root", root)
	}

	lockPath := filepath.Join(root, lockFileName)
	lock, err := tryLock(lockPath, s.logger)
	if err != nil {
		return nil, err
	}
	if lock == nil {
		return nil, &storage.LockedError{
			Root:     root,
			LockPath: lockPath,
			Holder:   lockHolder(lockPath),
		}
	}

	index, err := openIndex(filepath.Join(root, indexFileName), s.logger)
	if err != nil {
		lock.Release()
		return nil, fmt.Errorf("couldn't open index: %w", err)
	}

	s.lock = lock
	s.index = index
	return s, nil
}

// Close releases the lock on the storage root.
// Calling Close more than once is a no-op.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.lock.Release()
	return nil
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// AddProduct registers id and creates its record.
// Returns nil, nil if id was already indexed.
//
// The product directory is created before the index is updated. If the index
// cannot be written, a directory created by this call is removed again.
func (s *Store) AddProduct(id core.ProductID) (storage.Product, error) {
	if err := s.usable(id); err != nil {
		return nil, err
	}
	if s.index.Contains(id) {
		return nil, nil
	}

	p, created, err := createProduct(s.root, id)
	if err != nil {
		return nil, fmt.Errorf("create product %d: %w", id, err)
	}
	if _, err := s.index.Add(id); err != nil {
		if created {
			s.removeEmptyDir(p.path)
		}
		return nil, fmt.Errorf("add product %d to index: %w", id, err)
	}

	s.logger.Debug("added product", "id", id)
	return p, nil
}

// AddProducts registers all ids and writes the index once.
// Returns the number of ids that were not indexed before.
func (s *Store) AddProducts(ids ...core.ProductID) (int, error) {
	if err := s.usable(ids...); err != nil {
		return 0, err
	}

	var fresh []core.ProductID
	for _, id := range ids {
		if !s.index.Contains(id) && !slices.Contains(fresh, id) {
			fresh = append(fresh, id)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	var createdDirs []string
	rollback := func() {
		for _, dir := range createdDirs {
			s.removeEmptyDir(dir)
		}
	}
	for _, id := range fresh {
		p, created, err := createProduct(s.root, id)
		if err != nil {
			rollback()
			return 0, fmt.Errorf("create product %d: %w", id, err)
		}
		if created {
			createdDirs = append(createdDirs, p.path)
		}
	}

	added, err := s.index.AddMany(fresh...)
	if err != nil {
		rollback()
		return 0, fmt.Errorf("add %d products to index: %w", len(fresh), err)
	}

	s.logger.Debug("added products", "count", added)
	return added, nil
}

// GetProduct opens the record of id directly from disk; the index is not
// consulted. Returns nil, nil if the product has no record.
func (s *Store) GetProduct(id core.ProductID) (storage.Product, error) {
	if err := s.usable(id); err != nil {
		return nil, err
	}

	p, err := openProduct(s.root, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	if !s.index.Contains(id) {
		s.logger.Warn("product record exists but is not in the index", "id", id, "path", p.path)
	}
	return p, nil
}

// GetOrAddProduct opens the record of id, adding the product if necessary.
// An indexed product whose directory has disappeared gets a new, empty
// record so that index and records agree again.
func (s *Store) GetOrAddProduct(id core.ProductID) (storage.Product, error) {
	p, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	if s.index.Contains(id) {
		s.logger.Warn("indexed product has no record, recreating it", "id", id)
		recreated, _, err := createProduct(s.root, id)
		if err != nil {
			return nil, fmt.Errorf("recreate product %d: %w", id, err)
		}
		return recreated, nil
	}

	p, err = s.AddProduct(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %d vanished while adding it", id)
	}
	return p, nil
}

// Contains reports whether id is in the index.
func (s *Store) Contains(id core.ProductID) bool {
	if s.closed {
		return false
	}
	return s.index.Contains(id)
}

// Len returns the number of indexed products.
func (s *Store) Len() int {
	if s.closed {
		return 0
	}
	return s.index.Len()
}

// ProductIDs returns a snapshot of the indexed IDs in ascending order.
func (s *Store) ProductIDs() iter.Seq[core.ProductID] {
	var snapshot []core.ProductID
	if !s.closed {
		snapshot = s.index.IDs()
	}
	return slices.Values(snapshot)
}

// usable checks that the store is open and every id is valid.
func (s *Store) usable(ids ...core.ProductID) error {
	if s.closed {
		return storage.ErrStorageClosed
	}
	for _, id := range ids {
		if err := core.ValidateProductID(id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) removeEmptyDir(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("could not remove product directory after failed add", "path", path, "err", err)
	}
}
