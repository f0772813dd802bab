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


// Package storage provides the storage abstraction layer for grakawa.
//
// This package defines the interfaces of the product store and the on-disk
// encodings shared by its implementations. The only implementation is the
// flat-file store in storage/flatfile, which keeps everything in plain JSON
// files under one root directory.
//
// # Constructor Return Type Pattern
//
// Public constructors return the interfaces defined here:
//
//	store, err := flatfile.Open("/path/to/db")  // returns storage.Store
//
// Internal helpers of an implementation package may return concrete types.
//
// # Architecture
//
//   - Store: owns the storage root for the lifetime of the process, keeps the
//     index of known product IDs and hands out Product handles
//   - Product: one product's directory and its price history
//
// # Usage
//
//	store, err := flatfile.Open("db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	product, err := store.GetOrAddProduct(123)
//	prices, err := product.ReadPrices()
//	prices[core.Today()] = core.FromCents(710)
//	err = product.WritePrices(prices)
//
// # Absent Products
//
// Lookups that find nothing return a nil Product and a nil error. Absence is
// an expected outcome, not a failure.
//
// # Thread Safety
//
// A Store is not safe for concurrent use. Only one Store may be open per root
// at a time, system-wide; this is enforced with a lock file. Callers that
// share a Store between goroutines must serialize access themselves.
package storage
