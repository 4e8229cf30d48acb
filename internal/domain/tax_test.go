package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTax_Validate(t *testing.T) {
	accounts := accountMap{
		"acc-vat":  {ID: "acc-vat", AccountType: AccountTypeControl},
		"acc-bank": {ID: "acc-bank", AccountType: AccountTypeBank},
	}

	tests := []struct {
		name      string
		tax       *Tax
		wantErr   error
		wantErrAs string
	}{
		{
			name: "valid tax",
			tax:  &Tax{Name: "VAT", AccountID: "acc-vat", Rate: decimal.NewFromInt(20)},
		},
		{
			name: "zero rate is allowed",
			tax:  &Tax{Name: "Exempt", AccountID: "acc-vat", Rate: decimal.Zero},
		},
		{
			name:    "negative rate",
			tax:     &Tax{Name: "Bad", AccountID: "acc-vat", Rate: decimal.NewFromInt(-5)},
			wantErr: ErrInvalidTaxRate,
		},
		{
			name:      "non control account",
			tax:       &Tax{Name: "VAT", AccountID: "acc-bank", Rate: decimal.NewFromInt(20)},
			wantErrAs: "Tax account must be of type Control Account, Bank given",
		},
		{
			name:    "unknown account",
			tax:     &Tax{Name: "VAT", AccountID: "acc-missing", Rate: decimal.NewFromInt(20)},
			wantErr: ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tax.Validate(context.Background(), accounts)

			if tt.wantErr == nil && tt.wantErrAs == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErrAs != "" {
				if err == nil || err.Error() != tt.wantErrAs {
					t.Errorf("error = %v, want %q", err, tt.wantErrAs)
				}
			}
		})
	}
}

func TestTax_AmountOn(t *testing.T) {
	tests := []struct {
		name      string
		rate      string
		amount    string
		precision int32
		want      string
	}{
		{"whole percentage", "10", "100", 2, "10"},
		{"fractional result rounds", "7.5", "9.99", 2, "0.75"},
		{"half rounds up", "15", "0.10", 2, "0.02"},
		{"zero precision currency", "10", "105", 0, "11"},
		{"rounds to zero", "0.1", "1", 2, "0"},
		{"zero rate", "0", "500", 2, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax := &Tax{Rate: decimal.RequireFromString(tt.rate)}
			got := tax.AmountOn(decimal.RequireFromString(tt.amount), tt.precision)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("AmountOn(%s) at rate %s = %s, want %s", tt.amount, tt.rate, got, tt.want)
			}
		})
	}
}
