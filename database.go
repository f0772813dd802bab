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


// Package grakawa tracks the price histories of products in a directory of
// plain files.
//
// A Database bundles a store opened on a directory with the optional source
// its histories are fetched from.
package grakawa

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/LukasKalbertodt/grakawa/acquire"
	"github.com/LukasKalbertodt/grakawa/acquire/httpsource"
	"github.com/LukasKalbertodt/grakawa/core"
	"github.com/LukasKalbertodt/grakawa/storage"
	"github.com/LukasKalbertodt/grakawa/storage/flatfile"
	"github.com/LukasKalbertodt/grakawa/tracking"
)

// ErrNoSource is returned by operations that need a source when the
// database was opened without one.
var ErrNoSource = errors.New("no price source configured")

type Database struct {
	store  storage.Store
	source acquire.Source
	logger *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	sourceConfig *acquire.Config
	source       acquire.Source
	logger       *slog.Logger
}

// WithSourceConfig makes the database fetch histories over HTTP.
func WithSourceConfig(cfg *acquire.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.sourceConfig = cfg
	}
}

// WithSource uses src for fetching histories. It takes precedence over
// WithSourceConfig. The database closes src on Close.
func WithSource(src acquire.Source) DatabaseOption {
	return func(o *databaseOptions) {
		o.source = src
	}
}

// WithLogger sets the logger of the database and its store.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// NewDatabase opens the store at root, creating it if needed. Without a
// source option the database works offline.
func NewDatabase(root string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	store, err := flatfile.Open(root, flatfile.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	source := options.source
	if source == nil && options.sourceConfig != nil {
		source, err = httpsource.New(options.sourceConfig, httpsource.WithLogger(options.logger))
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("create price source: %w", err)
		}
	}

	return &Database{
		store:  store,
		source: source,
		logger: options.logger,
	}, nil
}

// Close closes the source and releases the store.
func (db *Database) Close() error {
	if db.source != nil {
		if err := db.source.Close(); err != nil {
			db.logger.Error("error closing price source", "err", err)
		}
	}

	if err := db.store.Close(); err != nil {
		db.logger.Error("error closing store", "err", err)
		return err
	}
	return nil
}

func (db *Database) Store() storage.Store {
	return db.store
}

// Source returns the price source, or nil when offline.
func (db *Database) Source() acquire.Source {
	return db.source
}

func (db *Database) NewUpdater(config *tracking.Config, progress io.Writer, opts ...tracking.Option) (*tracking.Updater, error) {
	if db.source == nil {
		return nil, ErrNoSource
	}
	opts = append([]tracking.Option{tracking.WithLogger(db.logger)}, opts...)
	return tracking.NewUpdater(db.store, db.source, config, progress, opts...)
}

func (db *Database) NewImporter(progress io.Writer, opts ...tracking.Option) (*tracking.Importer, error) {
	if db.source == nil {
		return nil, ErrNoSource
	}
	opts = append([]tracking.Option{tracking.WithLogger(db.logger)}, opts...)
	return tracking.NewImporter(db.store, db.source, progress, opts...)
}

// RecordPrice stores a single observation, adding the product if it is not
// tracked yet. An existing observation for date is replaced.
func (db *Database) RecordPrice(id core.ProductID, date core.Date, price core.Money) error {
	if err := core.ValidatePrices(core.Prices{date: price}); err != nil {
		return err
	}
	product, err := db.store.GetOrAddProduct(id)
	if err != nil {
		return err
	}
	prices, err := product.ReadPrices()
	if err != nil {
		return err
	}

	if old, ok := prices[date]; ok && old != price {
		db.logger.Info("replacing recorded price", "id", id, "date", date, "old", old, "new", price)
	}
	prices = prices.Merge(core.Prices{date: price})
	return product.WritePrices(prices)
}

// History returns the stored price history of id.
// Returns nil, nil if the product has no record.
func (db *Database) History(id core.ProductID) (core.Prices, error) {
	product, err := db.store.GetProduct(id)
	if err != nil || product == nil {
		return nil, err
	}
	return product.ReadPrices()
}
