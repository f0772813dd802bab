package acquire

import (
	"context"

	"github.com/LukasKalbertodt/grakawa/core"
)

// Source fetches product data from a remote service.
// Implementations must be safe for concurrent use.
type Source interface {
	// PriceHistory returns the price history the service knows for id.
	// Returns an error wrapping ErrProductNotFound if the service does not
	// know the product.
	PriceHistory(ctx context.Context, id core.ProductID) (core.Prices, error)

	// Search returns the product identifiers on one page of the results for
	// query. Pages are numbered from 1. An empty result means there are no
	// more pages.
	Search(ctx context.Context, query string, page int) ([]core.ProductID, error)

	// Close releases resources held by the source.
	Close() error
}
