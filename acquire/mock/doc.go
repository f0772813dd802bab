// Package mock provides a test double for acquire.Source.
//
// MockSource produces deterministic price histories derived from the product
// id so tests can run without a network. Behavior can be overridden per
// method through the Func fields:
//
//	src := mock.NewMockSource()
//	src.PriceHistoryFunc = func(ctx context.Context, id core.ProductID) (core.Prices, error) {
//	    return nil, acquire.ErrProductNotFound
//	}
//
// NewMockSource returns the concrete type so tests can inspect call counts.
// Unlike the production sources, call counting is safe for concurrent use,
// since the tracking workers call a source from many goroutines.
package mock
