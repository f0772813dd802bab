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


// Package acquire defines the contract between grakawa and the component that
// fetches product data from a remote price comparison service.
//
// The storage layer never talks to the network. Everything it stores arrives
// through a Source:
//
//   - PriceHistory: the observed prices of one product, keyed by date
//   - Search: product identifiers from one page of search results
//
// # Implementation Packages
//
//   - acquire/httpsource: HTTP client for a JSON price service
//   - acquire/mock: Test double for unit testing without a network
//
// Public constructors return the Source interface:
//
//	source, err := httpsource.New(acquire.DefaultConfig())  // returns acquire.Source
//
// The mock constructor returns the concrete type so tests can inject behavior
// and count calls:
//
//	src := mock.NewMockSource().WithPriceHistoryFunc(...)
//	n := src.PriceHistoryCalls()
//
// # Error Classification
//
// Every error returned by a Source wraps either ErrTemporary or ErrPermanent.
// Temporary failures (network errors, HTTP 429 and 5xx) are worth retrying;
// permanent ones (other 4xx, malformed payloads) are not. Use IsRetryable to
// tell them apart. Whether and how often to retry is the caller's decision;
// RetryWithBackoff is provided for that.
package acquire
