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

import (
	"fmt"
)

// ValidateProductID checks that id can be stored.
//
// Zero is reserved, and identifiers above MaxProductID would overflow the
// fixed-width directory name and break its ordering.
func ValidateProductID(id ProductID) error {
	if id == 0 || id > MaxProductID {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidProductID, id, MaxProductID)
	}
	return nil
}

// ValidatePrices validates a price series according to domain rules.
//
// Validation rules:
//   - every date must be a real calendar day (no zero Date, no 2024-02-30)
//
// An empty or nil series is valid.
func ValidatePrices(prices Prices) error {
	for d := range prices {
		if d.IsZero() || DateOf(d.Time()) != d {
			return fmt.Errorf("%w: %w: %v", ErrInvalidPrices, ErrInvalidDate, d)
		}
	}
	return nil
}
