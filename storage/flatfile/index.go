package flatfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"github.com/LukasKalbertodt/grakawa/core"
	"github.com/LukasKalbertodt/grakawa/storage"
)

// Index is the durable set of known product IDs.
// The in-memory slice is kept sorted and mirrors the index file after every
// successful mutation.
type Index struct {
	path   string
	ids    []core.ProductID
	logger *slog.Logger
}

// openIndex loads the index file at path, or creates an empty one if there
// is none. A file that doesn't parse is reported as corrupt, never replaced.
func openIndex(path string, logger *slog.Logger) (*Index, error) {
	idx := &Index{path: path, logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read index file %s: %w", path, err)
		}
		logger.Info("no index file found, creating new index", "path", path)
		if err := idx.write(); err != nil {
			return nil, fmt.Errorf("initialize index file: %w", err)
		}
		return idx, nil
	}

	ids, err := storage.DecodeIndex(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: index file %s: %w", storage.ErrCorrupt, path, err)
	}
	idx.ids = ids
	logger.Debug("loaded index", "path", path, "products", len(ids))
	return idx, nil
}

// Add inserts id. Returns false without touching the file if id was already
// present. When it returns true the new index is on disk.
func (idx *Index) Add(id core.ProductID) (bool, error) {
	if err := core.ValidateProductID(id); err != nil {
		return false, err
	}
	pos, found := slices.BinarySearch(idx.ids, id)
	if found {
		return false, nil
	}

	idx.ids = slices.Insert(idx.ids, pos, id)
	if err := idx.write(); err != nil {
		idx.ids = slices.Delete(idx.ids, pos, pos+1)
		return false, err
	}
	return true, nil
}

// AddMany inserts all ids and writes the index once.
// Returns the number of ids that were not present before.
func (idx *Index) AddMany(ids ...core.ProductID) (int, error) {
	for _, id := range ids {
		if err := core.ValidateProductID(id); err != nil {
			return 0, err
		}
	}

	merged := slices.Concat(idx.ids, ids)
	slices.Sort(merged)
	merged = slices.Compact(merged)
	added := len(merged) - len(idx.ids)
	if added == 0 {
		return 0, nil
	}

	previous := idx.ids
	idx.ids = merged
	if err := idx.write(); err != nil {
		idx.ids = previous
		return 0, err
	}
	return added, nil
}

// Contains reports whether id is in the index.
func (idx *Index) Contains(id core.ProductID) bool {
	_, found := slices.BinarySearch(idx.ids, id)
	return found
}

// Len returns the number of indexed IDs.
func (idx *Index) Len() int {
	return len(idx.ids)
}

// IDs returns a copy of the indexed IDs in ascending order.
func (idx *Index) IDs() []core.ProductID {
	return slices.Clone(idx.ids)
}

func (idx *Index) write() error {
	idx.logger.Debug("writing index", "path", idx.path, "products", len(idx.ids))
	return writeFileAtomic(idx.path, func(w io.Writer) error {
		return storage.EncodeIndex(w, idx.ids)
	})
}
