package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a non-negative amount of money stored as a count of cents.
type Money uint64

var maxCents = decimal.NewFromInt(math.MaxInt64)

// Exponents outside this range are rejected before any rescaling, which
// would otherwise allocate 10^|exp|.
const (
	minExponent = -20
	maxExponent = 18
)

// FromCents returns the Money value for the given number of cents.
func FromCents(cents uint64) Money {
	return Money(cents)
}

// ParseMoney parses a non-negative decimal amount such as "7.10", "7.1" or
// "7". Digits beyond the second fractional digit are truncated. Exponent
// form is accepted as long as the exponent stays within [-20, 18].
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	if exp := d.Exponent(); exp < minExponent || exp > maxExponent {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidMoney, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidMoney, s)
	}
	cents := d.Shift(2).Truncate(0)
	if cents.GreaterThan(maxCents) {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidMoney, s)
	}
	return Money(cents.IntPart()), nil
}

// Cents returns the amount as a count of cents.
func (m Money) Cents() uint64 {
	return uint64(m)
}

// Add returns m+other.
func (m Money) Add(other Money) Money {
	return m + other
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", uint64(m)/100, uint64(m)%100)
}

// MarshalText renders the amount with exactly two fractional digits.
func (m Money) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Money) UnmarshalText(text []byte) error {
	parsed, err := ParseMoney(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
