// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package tracking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/LukasKalbertodt/grakawa/acquire"
	"github.com/LukasKalbertodt/grakawa/core"
	"github.com/LukasKalbertodt/grakawa/storage"
)

// Outcome is the result of updating one product.
type Outcome int

const (
	// OutcomeUpdated means new observations were written.
	OutcomeUpdated Outcome = iota
	// OutcomeUnchanged means the fetched history added nothing.
	OutcomeUnchanged
	// OutcomeFailed means the history could not be fetched.
	OutcomeFailed
	// OutcomeMissing means the source does not know the product.
	OutcomeMissing
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUpdated:
		return "updated"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeFailed:
		return "failed"
	case OutcomeMissing:
		return "missing"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Summary describes a finished update run.
type Summary struct {
	RunID     string
	Total     int
	Updated   int
	Unchanged int
	Failed    int
	Missing   int
	Elapsed   time.Duration
}

func (s *Summary) add(o Outcome) {
	switch o {
	case OutcomeUpdated:
		s.Updated++
	case OutcomeUnchanged:
		s.Unchanged++
	case OutcomeFailed:
		s.Failed++
	case OutcomeMissing:
		s.Missing++
	}
}

// Updater refreshes the price histories of tracked products.
type Updater struct {
	store    storage.Store
	source   acquire.Source
	config   *Config
	progress io.Writer
	metrics  *Metrics
	logger   *slog.Logger

	// writeMu serializes read-modify-write cycles on the store.
	writeMu sync.Mutex
}

// NewUpdater creates a new updater.
// progress: where to write progress output (typically os.Stderr, may be nil)
func NewUpdater(store storage.Store, source acquire.Source, config *Config, progress io.Writer, opts ...Option) (*Updater, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if source == nil {
		return nil, ErrSourceRequired
	}

	o := applyOptions(opts)
	return &Updater{
		store:    store,
		source:   source,
		config:   config.normalized(),
		progress: progress,
		metrics:  o.metrics,
		logger:   o.logger.With("component", "updater"),
	}, nil
}

// Run updates the given products, or every indexed product if ids is empty.
// Products are handled in ascending id order, in batches of Config.BatchSize.
//
// The returned Summary is never nil, also when an error aborts the run.
func (u *Updater) Run(ctx context.Context, ids ...core.ProductID) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}
	logger := u.logger.With("run", summary.RunID)

	if len(ids) == 0 {
		ids = slices.Collect(u.store.ProductIDs())
	} else {
		ids = slices.Compact(slices.Sorted(slices.Values(ids)))
	}
	summary.Total = len(ids)
	if len(ids) == 0 {
		u.printf("No products to update\n")
		return summary, nil
	}

	pool, err := ants.NewPool(u.config.Workers)
	if err != nil {
		return summary, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	logger.Info("starting update", "products", len(ids), "workers", u.config.Workers)
	u.printf("Updating %d products (workers: %d)\n", len(ids), u.config.Workers)

	tracker := NewProgressTracker(u.progress, "Progress", len(ids), u.config.ReportInterval)
	tracker.Start()

	runErr := u.runBatches(ctx, pool, ids, summary, tracker, logger)

	tracker.Finish()
	summary.Elapsed = tracker.Elapsed()
	u.metrics.setKnown(u.store.Len())

	if runErr != nil {
		logger.Error("update aborted", "error", runErr, "processed", tracker.Current())
		return summary, runErr
	}

	logger.Info("update complete",
		"updated", summary.Updated,
		"unchanged", summary.Unchanged,
		"failed", summary.Failed,
		"missing", summary.Missing,
		"elapsed", summary.Elapsed)
	u.printf("Update complete. %d updated, %d unchanged, %d failed, %d missing in %v\n",
		summary.Updated, summary.Unchanged, summary.Failed, summary.Missing, summary.Elapsed.Round(time.Millisecond))
	return summary, nil
}

func (u *Updater) runBatches(ctx context.Context, pool *ants.Pool, ids []core.ProductID, summary *Summary, tracker *ProgressTracker, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for batch := range slices.Chunk(ids, u.config.BatchSize) {
		// Check context between batches
		select {
		case <-ctx.Done():
			mu.Lock()
			err := firstErr
			mu.Unlock()
			if err != nil {
				return err
			}
			return ctx.Err()
		default:
		}

		var wg sync.WaitGroup
		for _, id := range batch {
			wg.Add(1)
			submitErr := pool.Submit(func() {
				defer wg.Done()

				start := time.Now()
				outcome, err := u.updateOne(ctx, id, logger)
				if err != nil {
					fail(err)
					return
				}
				u.metrics.observe(outcome, time.Since(start))

				mu.Lock()
				summary.add(outcome)
				mu.Unlock()
				tracker.Increment(1)
			})
			if submitErr != nil {
				wg.Done()
				fail(fmt.Errorf("failed to submit product %s: %w", id, submitErr))
				break
			}
		}
		wg.Wait()
	}

	mu.Lock()
	defer mu.Unlock()
	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// updateOne fetches and merges the history of id. A non-nil error is fatal
// for the whole run.
func (u *Updater) updateOne(ctx context.Context, id core.ProductID, logger *slog.Logger) (Outcome, error) {
	fetched, err := u.source.PriceHistory(ctx, id)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		if errors.Is(err, acquire.ErrProductNotFound) {
			logger.Warn("product not known to source", "id", id)
			return OutcomeMissing, nil
		}
		logger.Warn("failed to fetch price history", "id", id, "error", err, "retryable", acquire.IsRetryable(err))
		return OutcomeFailed, nil
	}

	u.writeMu.Lock()
	defer u.writeMu.Unlock()

	if !u.store.Contains(id) {
		logger.Warn("product is not tracked, skipping", "id", id)
		return OutcomeFailed, nil
	}
	product, err := u.store.GetOrAddProduct(id)
	if err != nil {
		return 0, fmt.Errorf("open product %s: %w", id, err)
	}
	stored, err := product.ReadPrices()
	if err != nil {
		return 0, fmt.Errorf("read prices of %s: %w", id, err)
	}

	merged := stored.Merge(fetched)
	if merged.Fingerprint() == stored.Fingerprint() {
		logger.Debug("price history unchanged", "id", id)
		return OutcomeUnchanged, nil
	}
	if err := product.WritePrices(merged); err != nil {
		return 0, fmt.Errorf("write prices of %s: %w", id, err)
	}
	logger.Debug("price history updated", "id", id, "before", len(stored), "after", len(merged))
	return OutcomeUpdated, nil
}

func (u *Updater) printf(format string, args ...any) {
	if u.progress != nil {
		fmt.Fprintf(u.progress, format, args...)
	}
}
