package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Money
		wantErr bool
	}{
		{name: "two fractional digits", input: "7.10", want: 710},
		{name: "one fractional digit", input: "7.1", want: 710},
		{name: "integer", input: "7", want: 700},
		{name: "zero", input: "0", want: 0},
		{name: "surrounding whitespace", input: " 12.34 ", want: 1234},
		{name: "extra digits are truncated", input: "1.999", want: 199},
		{name: "exponent form", input: "1.5e2", want: 15000},
		{name: "negative", input: "-1.00", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "out of range", input: "1e40", wantErr: true},
		{name: "smallest exponent", input: "1e-20", want: 0},
		{name: "tiny exponent", input: "1e-20000000", wantErr: true},
		{name: "huge exponent", input: "1e20000000", wantErr: true},
		{name: "exponent beyond int32", input: "1e-3000000000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			got, err := ParseMoney(tt.input)
			if took := time.Since(start); took > 100*time.Millisecond {
				t.Errorf("ParseMoney(%q) took %v", tt.input, took)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMoney) {
					t.Fatalf("ParseMoney(%q) error = %v, want ErrInvalidMoney", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMoney(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMoney(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoney_String(t *testing.T) {
	tests := []struct {
		cents uint64
		want  string
	}{
		{710, "7.10"},
		{5, "0.05"},
		{0, "0.00"},
		{123456, "1234.56"},
	}

	for _, tt := range tests {
		if got := FromCents(tt.cents).String(); got != tt.want {
			t.Errorf("FromCents(%d).String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(FromCents(710))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"7.10"` {
		t.Errorf("Marshal = %s, want \"7.10\"", data)
	}

	var m Money
	if err := json.Unmarshal([]byte(`"0.99"`), &m); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if m.Cents() != 99 {
		t.Errorf("Unmarshal = %d cents, want 99", m.Cents())
	}

	if err := json.Unmarshal([]byte(`"-3"`), &m); err == nil {
		t.Error("Unmarshal of a negative amount should fail")
	}
}
