// Command seeder fills a store with generated products for manual testing.
//
// Product IDs are read one per line from -src, or numbered 1..-count when no
// file is given. Every product then gets a deterministic price history from
// the mock source.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/LukasKalbertodt/grakawa"
	"github.com/LukasKalbertodt/grakawa/acquire/mock"
	"github.com/LukasKalbertodt/grakawa/core"
	"github.com/LukasKalbertodt/grakawa/storage"
	"github.com/LukasKalbertodt/grakawa/tracking"
)

var (
	dbPath       = flag.String("db", "./prices_db", "store directory")
	seedFileName = flag.String("src", "", "file of product IDs, one per line")
	count        = flag.Int("count", 50, "number of generated products when -src is not set")
	batchSize    = flag.Int("batch", 10, "products added per index write")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// idsFromFile returns an iterator over the product IDs in a file.
// Blank lines and lines starting with # are skipped. The error of the first
// malformed line is stored in *errp and ends the iteration.
func idsFromFile(filename string, errp *error) (iter.Seq[core.ProductID], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(core.ProductID) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" || strings.HasPrefix(text, "#") {
				continue
			}
			id, err := core.ParseProductID(text)
			if err != nil {
				*errp = fmt.Errorf("%s:%d: %w", filename, line, err)
				return
			}
			if !yield(id) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			*errp = err
		}
	}, nil
}

// generatedIDs returns an iterator over 1..n.
func generatedIDs(n int) iter.Seq[core.ProductID] {
	return func(yield func(core.ProductID) bool) {
		for i := 1; i <= n; i++ {
			if !yield(core.ProductID(i)) {
				return
			}
		}
	}
}

// addBatched adds the IDs from source to the store in batches.
// Returns the number of products that were not tracked before.
func addBatched(store storage.Store, source iter.Seq[core.ProductID], batchSize int) (int, error) {
	batch := make([]core.ProductID, 0, batchSize)
	added := 0

	flush := func() error {
		n, err := store.AddProducts(batch...)
		if err != nil {
			return err
		}
		added += n
		batch = batch[:0]
		return nil
	}

	for id := range source {
		batch = append(batch, id)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return added, err
			}
		}
	}

	// Process any remaining IDs
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return added, err
		}
	}
	return added, nil
}

func seed(ctx context.Context, db *grakawa.Database, source iter.Seq[core.ProductID], batchSize int) (*tracking.Summary, error) {
	added, err := addBatched(db.Store(), source, batchSize)
	if err != nil {
		return nil, err
	}
	slog.Info("products added", "added", added, "total", db.Store().Len())

	updater, err := db.NewUpdater(nil, os.Stderr)
	if err != nil {
		return nil, err
	}
	return updater.Run(ctx)
}

func main() {
	flag.Parse()
	if *batchSize < 1 {
		fmt.Fprintln(os.Stderr, "batch must be at least 1")
		os.Exit(2)
	}

	db, err := grakawa.NewDatabase(*dbPath, grakawa.WithSource(mock.NewMockSource()))
	if err != nil {
		panic(err)
	}
	defer db.Close()

	var (
		source  iter.Seq[core.ProductID]
		readErr error
	)
	if *seedFileName != "" {
		source, err = idsFromFile(*seedFileName, &readErr)
		if err != nil {
			panic(err)
		}
	} else {
		source = generatedIDs(*count)
	}

	summary, err := seed(context.Background(), db, source, *batchSize)
	if err != nil {
		panic(err)
	}
	if readErr != nil {
		panic(readErr)
	}
	slog.Info("seeding complete", "updated", summary.Updated, "unchanged", summary.Unchanged)
}
