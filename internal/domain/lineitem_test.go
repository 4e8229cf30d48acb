package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLineItem_Validate(t *testing.T) {
	accounts := accountMap{
		"acc-expense": {ID: "acc-expense", AccountType: AccountTypeOperatingExpense},
	}

	tests := []struct {
		name    string
		item    *LineItem
		wantErr error
	}{
		{
			name: "valid line item",
			item: &LineItem{AccountID: "acc-expense", Amount: decimal.NewFromInt(10)},
		},
		{
			name:    "zero amount",
			item:    &LineItem{AccountID: "acc-expense", Amount: decimal.Zero},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			item:    &LineItem{AccountID: "acc-expense", Amount: decimal.NewFromInt(-1)},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "unknown account",
			item:    &LineItem{AccountID: "acc-missing", Amount: decimal.NewFromInt(10)},
			wantErr: ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate(context.Background(), accounts)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
