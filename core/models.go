package core

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ProductID identifies a tracked product.
// Valid identifiers lie between 1 and MaxProductID.
type ProductID uint32

// MaxProductID is the largest identifier that still fits the fixed-width
// nine digit directory name used on disk.
const MaxProductID ProductID = 999_999_999

// ParseProductID parses a decimal product identifier and validates its range.
func ParseProductID(s string) (ProductID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidProductID, s)
	}
	id := ProductID(v)
	if err := ValidateProductID(id); err != nil {
		return 0, err
	}
	return id, nil
}

func (id ProductID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// DateLayout is the ISO calendar date form used for price keys.
const DateLayout = "2006-01-02"

// Date is a calendar day without time of day or location.
// The zero Date is invalid.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a date in the 2006-01-02 form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after other.
func (d Date) Compare(other Date) int {
	return d.Time().Compare(other.Time())
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler so Date can be a JSON map key.
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return nil, ErrInvalidDate
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Prices is the price history of one product: at most one amount per day.
type Prices map[Date]Money

// Dates returns the dates of p in ascending order.
func (p Prices) Dates() []Date {
	dates := make([]Date, 0, len(p))
	for d := range p {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, Date.Compare)
	return dates
}

// Latest returns the most recent observation.
// ok is false for an empty series.
func (p Prices) Latest() (date Date, price Money, ok bool) {
	for d, m := range p {
		if !ok || date.Before(d) {
			date, price, ok = d, m, true
		}
	}
	return date, price, ok
}

// Merge returns a new series holding all observations of p and other.
// Observations in other win on equal dates.
func (p Prices) Merge(other Prices) Prices {
	merged := make(Prices, len(p)+len(other))
	for d, m := range p {
		merged[d] = m
	}
	for d, m := range other {
		merged[d] = m
	}
	return merged
}

// Equal reports whether p and other hold the same observations.
func (p Prices) Equal(other Prices) bool {
	if len(p) != len(other) {
		return false
	}
	for d, m := range p {
		if om, ok := other[d]; !ok || om != m {
			return false
		}
	}
	return true
}

// Fingerprint is a content hash of a price series.
type Fingerprint uint64

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// Fingerprint is the BLAKE2b-64 hash of the series' compact JSON encoding
// (keys in date order, amounts as strings). Equal series always produce
// equal fingerprints.
func (p Prices) Fingerprint() Fingerprint {
	if p == nil {
		p = Prices{}
	}
	// Date and Money marshal as text and never fail.
	data, _ := json.Marshal(p)
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	return Fingerprint(binary.LittleEndian.Uint64(h.Sum(nil)))
}
