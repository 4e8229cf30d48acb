package domain

import (
	"errors"
	"testing"
)

func TestValidateCurrency(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		wantErr  bool
	}{
		{"upper case", "USD", false},
		{"lower case normalized", "eur", false},
		{"padded", " GBP ", false},
		{"unknown code", "XXX", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCurrency(tt.currency)
			if tt.wantErr && !errors.Is(err, ErrInvalidCurrency) {
				t.Errorf("expected ErrInvalidCurrency, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		currency string
		want     int32
	}{
		{"USD", 2},
		{"JPY", 0},
		{"KRW", 0},
		{"UGX", 0},
		{"ugx", 0},
		{"KES", 2},
	}

	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			if got := MinorUnits(tt.currency); got != tt.want {
				t.Errorf("MinorUnits(%s) = %d, want %d", tt.currency, got, tt.want)
			}
		})
	}
}
