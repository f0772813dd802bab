package core

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-crypt/x/blake2b"
)

func TestParseProductID(t *testing.T) {
	tests := []struct {
		input   string
		want    ProductID
		wantErr bool
	}{
		{input: "123", want: 123},
		{input: "999999999", want: MaxProductID},
		{input: "0", wantErr: true},
		{input: "1000000000", wantErr: true},
		{input: "-5", wantErr: true},
		{input: "12a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProductID(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidProductID) {
					t.Fatalf("ParseProductID(%q) error = %v, want ErrInvalidProductID", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseProductID(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseProductID(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestDate_TextRoundTrip(t *testing.T) {
	d, err := ParseDate("2024-01-02")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d != (Date{Year: 2024, Month: time.January, Day: 2}) {
		t.Errorf("ParseDate = %+v", d)
	}
	if d.String() != "2024-01-02" {
		t.Errorf("String() = %q", d.String())
	}

	if _, err := ParseDate("02.01.2024"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("ParseDate of a foreign layout should fail with ErrInvalidDate, got %v", err)
	}
	if _, err := (Date{}).MarshalText(); err == nil {
		t.Error("MarshalText of the zero Date should fail")
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	ts := time.Date(2024, time.March, 1, 1, 30, 0, 0, loc)
	if got := DateOf(ts); got.String() != "2024-03-01" {
		t.Errorf("DateOf() = %v, want the local calendar day", got)
	}
}

func TestPrices_JSONKeysAreSorted(t *testing.T) {
	p := Prices{
		{2024, time.January, 2}: 725,
		{2023, time.December, 31}: 5,
		{2024, time.January, 1}: 710,
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"2023-12-31":"0.05","2024-01-01":"7.10","2024-01-02":"7.25"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back Prices
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.Equal(p) {
		t.Errorf("round trip mismatch: %v vs %v", back, p)
	}
}

func TestPrices_DatesAndLatest(t *testing.T) {
	p := Prices{
		{2024, time.February, 1}: 300,
		{2024, time.January, 15}: 200,
		{2023, time.June, 1}:     100,
	}

	dates := p.Dates()
	if len(dates) != 3 || dates[0].String() != "2023-06-01" || dates[2].String() != "2024-02-01" {
		t.Errorf("Dates() = %v, want ascending order", dates)
	}

	d, m, ok := p.Latest()
	if !ok || d.String() != "2024-02-01" || m != 300 {
		t.Errorf("Latest() = %v, %v, %v", d, m, ok)
	}

	if _, _, ok := (Prices{}).Latest(); ok {
		t.Error("Latest() on an empty series should report !ok")
	}
}

func TestPrices_Merge(t *testing.T) {
	jan1 := Date{2024, time.January, 1}
	jan2 := Date{2024, time.January, 2}
	stored := Prices{jan1: 100, jan2: 200}
	fetched := Prices{jan2: 250}

	merged := stored.Merge(fetched)
	if merged[jan1] != 100 || merged[jan2] != 250 {
		t.Errorf("Merge() = %v, want fetched observation to win", merged)
	}
	if stored[jan2] != 200 {
		t.Error("Merge() must not modify the receiver")
	}
}

func TestPrices_Fingerprint(t *testing.T) {
	a := Prices{{2024, time.January, 1}: 710, {2024, time.January, 2}: 725}
	b := Prices{{2024, time.January, 2}: 725, {2024, time.January, 1}: 710}
	c := Prices{{2024, time.January, 1}: 711, {2024, time.January, 2}: 725}

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("equal series should have equal fingerprints")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("different series should have different fingerprints")
	}
	if (Prices{}).Fingerprint() != Prices(nil).Fingerprint() {
		t.Error("nil and empty series should have equal fingerprints")
	}

	canonical := []byte(`{"2024-01-01":"7.10","2024-01-02":"7.25"}`)
	h, _ := blake2b.New(8, nil)
	h.Write(canonical)
	if want := Fingerprint(binary.LittleEndian.Uint64(h.Sum(nil))); a.Fingerprint() != want {
		t.Errorf("fingerprint = %v, want hash of %s (%v)", a.Fingerprint(), canonical, want)
	}
	if len(a.Fingerprint().String()) != 16 {
		t.Errorf("fingerprint string %q should be 16 hex digits", a.Fingerprint())
	}
}
