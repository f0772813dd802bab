package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateProductID(t *testing.T) {
	tests := []struct {
		name    string
		id      ProductID
		wantErr error
	}{
		{name: "smallest", id: 1},
		{name: "typical", id: 1758349},
		{name: "largest", id: MaxProductID},
		{name: "zero", id: 0, wantErr: ErrInvalidProductID},
		{name: "too wide", id: MaxProductID + 1, wantErr: ErrInvalidProductID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProductID(tt.id)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateProductID(%d) unexpected error: %v", tt.id, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateProductID(%d) error = %v, want %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePrices(t *testing.T) {
	tests := []struct {
		name    string
		prices  Prices
		wantErr bool
	}{
		{name: "nil series", prices: nil},
		{name: "empty series", prices: Prices{}},
		{name: "valid dates", prices: Prices{{2024, time.February, 29}: 100}},
		{name: "zero date", prices: Prices{{}: 100}, wantErr: true},
		{name: "impossible day", prices: Prices{{2023, time.February, 29}: 100}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePrices(tt.prices)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPrices) || !errors.Is(err, ErrInvalidDate) {
					t.Errorf("ValidatePrices() error = %v, want ErrInvalidPrices wrapping ErrInvalidDate", err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidatePrices() unexpected error: %v", err)
			}
		})
	}
}
