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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidMoney indicates text that is not a non-negative decimal amount.
	ErrInvalidMoney = errors.New("invalid money amount")

	// ErrInvalidProductID indicates a product identifier outside 1..MaxProductID.
	ErrInvalidProductID = errors.New("invalid product id")

	// ErrInvalidDate indicates text that is not a 2006-01-02 calendar date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidPrices indicates a price series failed validation.
	ErrInvalidPrices = errors.New("invalid price series")
)
