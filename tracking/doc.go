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


// Package tracking runs bulk operations that move data from an
// acquire.Source into a storage.Store.
//
// Two operations are provided:
//
//   - Updater refreshes the price history of tracked products. Histories are
//     fetched concurrently on a worker pool; merging and writing back is
//     serialized, since a store performs no locking of its own.
//   - Importer pages through search results and registers every product found
//     with a single index write.
//
// Acquisition failures of individual products are logged and counted in the
// run Summary. Storage failures abort the run: a store that cannot be written
// will not get better by trying the next product.
//
// Basic usage:
//
//	updater, err := tracking.NewUpdater(store, source, tracking.DefaultConfig(), os.Stderr)
//	if err != nil {
//	    return err
//	}
//	summary, err := updater.Run(ctx)
//
// Every run is tagged with a random run id that appears in all log lines of
// the run and in its Summary.
package tracking
