package tracking

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/LukasKalbertodt/grakawa/acquire"
	"github.com/LukasKalbertodt/grakawa/core"
	"github.com/LukasKalbertodt/grakawa/storage"
)

// ImportSummary describes a finished import run.
type ImportSummary struct {
	RunID string
	Pages int // pages that returned results
	Found int // distinct ids in all results
	Added int // ids that were not tracked before
}

// Importer registers the products found by a search.
type Importer struct {
	store    storage.Store
	source   acquire.Source
	progress io.Writer
	metrics  *Metrics
	logger   *slog.Logger
}

// NewImporter creates a new importer.
// progress: where to write progress output (may be nil)
func NewImporter(store storage.Store, source acquire.Source, progress io.Writer, opts ...Option) (*Importer, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if source == nil {
		return nil, ErrSourceRequired
	}

	o := applyOptions(opts)
	return &Importer{
		store:    store,
		source:   source,
		progress: progress,
		metrics:  o.metrics,
		logger:   o.logger.With("component", "importer"),
	}, nil
}

// Run fetches up to pages pages of results for query and adds every product
// found. Paging stops early at the first empty page. Nothing is added if any
// page fails, and the index is written once.
func (i *Importer) Run(ctx context.Context, query string, pages int) (*ImportSummary, error) {
	summary := &ImportSummary{RunID: uuid.NewString()}
	logger := i.logger.With("run", summary.RunID)
	if pages < 1 {
		return summary, ErrInvalidPages
	}

	logger.Info("starting import", "query", query, "pages", pages)

	seen := make(map[core.ProductID]struct{})
	var found []core.ProductID
	for page := 1; page <= pages; page++ {
		ids, err := i.source.Search(ctx, query, page)
		if err != nil {
			return summary, fmt.Errorf("search %q page %d: %w", query, page, err)
		}
		if len(ids) == 0 {
			logger.Debug("no more results", "page", page)
			break
		}
		summary.Pages++
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				found = append(found, id)
			}
		}
		if i.progress != nil {
			fmt.Fprintf(i.progress, "\rSearching: page %d, %d products", page, len(found))
		}
	}
	if i.progress != nil && summary.Pages > 0 {
		fmt.Fprintln(i.progress)
	}
	summary.Found = len(found)

	added, err := i.store.AddProducts(found...)
	if err != nil {
		return summary, fmt.Errorf("add %d products: %w", len(found), err)
	}
	summary.Added = added
	i.metrics.setKnown(i.store.Len())

	logger.Info("import complete", "found", summary.Found, "added", summary.Added, "pages", summary.Pages)
	return summary, nil
}
