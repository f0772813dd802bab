package mock

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/LukasKalbertodt/grakawa/core"
)

// HistoryDays is the number of days in a default generated history.
const HistoryDays = 3

// MockSource is a test double for acquire.Source.
// It allows custom behavior injection via function fields.
type MockSource struct {
	// PriceHistoryFunc is called by PriceHistory if set.
	// If nil, a deterministic history ending today is generated.
	PriceHistoryFunc func(ctx context.Context, id core.ProductID) (core.Prices, error)

	// SearchFunc is called by Search if set.
	// If nil, every search returns no results.
	SearchFunc func(ctx context.Context, query string, page int) ([]core.ProductID, error)

	mu          sync.Mutex
	priceCalls  int
	searchCalls int
	closed      bool
}

// NewMockSource creates a mock source with default deterministic behavior.
func NewMockSource() *MockSource {
	return &MockSource{}
}

// WithPriceHistoryFunc sets PriceHistoryFunc and returns the mock for chaining.
func (m *MockSource) WithPriceHistoryFunc(fn func(ctx context.Context, id core.ProductID) (core.Prices, error)) *MockSource {
	m.PriceHistoryFunc = fn
	return m
}

// WithSearchFunc sets SearchFunc and returns the mock for chaining.
func (m *MockSource) WithSearchFunc(fn func(ctx context.Context, query string, page int) ([]core.ProductID, error)) *MockSource {
	m.SearchFunc = fn
	return m
}

// PriceHistory returns the injected or generated price history for id.
func (m *MockSource) PriceHistory(ctx context.Context, id core.ProductID) (core.Prices, error) {
	m.mu.Lock()
	m.priceCalls++
	fn := m.PriceHistoryFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, id)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return GeneratePrices(id, core.Today()), nil
}

// Search returns the injected search results or none.
func (m *MockSource) Search(ctx context.Context, query string, page int) ([]core.ProductID, error) {
	m.mu.Lock()
	m.searchCalls++
	fn := m.SearchFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query, page)
	}
	return nil, ctx.Err()
}

// Close marks the source closed.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// CallCount returns the number of times any method was called.
func (m *MockSource) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.priceCalls + m.searchCalls
}

// PriceHistoryCalls returns the number of PriceHistory calls.
func (m *MockSource) PriceHistoryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.priceCalls
}

// SearchCalls returns the number of Search calls.
func (m *MockSource) SearchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchCalls
}

// Reset clears the call counts and injected functions.
func (m *MockSource) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.priceCalls = 0
	m.searchCalls = 0
	m.closed = false
	m.PriceHistoryFunc = nil
	m.SearchFunc = nil
}

// GeneratePrices creates a deterministic history of HistoryDays entries
// ending at last. The same id always produces the same amounts.
func GeneratePrices(id core.ProductID, last core.Date) core.Prices {
	h := fnv.New32a()
	h.Write([]byte(strconv.FormatUint(uint64(id), 10)))
	seed := h.Sum32()

	prices := make(core.Prices, HistoryDays)
	day := last.Time()
	for i := 0; i < HistoryDays; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		prices[core.DateOf(day)] = core.FromCents(uint64(100 + seed%100_000))
		day = day.Add(-24 * time.Hour)
	}
	return prices
}
