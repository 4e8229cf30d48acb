package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tax is a percentage rate applied to line items. Tax amounts post against
// the tax's account, which must be a control account.
type Tax struct {
	ID        string
	EntityID  string
	Name      string
	Code      string
	AccountID string
	Rate      decimal.Decimal
	Recyclable
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *Tax) RecordID() string { return t.ID }

func (t *Tax) ScopeEntityID() string { return t.EntityID }

// Validate checks the tax before it is flushed.
func (t *Tax) Validate(ctx context.Context, accounts AccountLookup) error {
	if t.Rate.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidTaxRate, t.Rate)
	}

	account, err := accounts.AccountByID(ctx, t.AccountID)
	if err != nil {
		return err
	}

	if account.AccountType != AccountTypeControl {
		return &InvalidTaxAccountError{AccountType: account.AccountType}
	}

	return nil
}

// AmountOn computes the tax charged on a base amount, rounded to the
// currency's minor unit precision.
func (t *Tax) AmountOn(amount decimal.Decimal, precision int32) decimal.Decimal {
	return amount.Mul(t.Rate).Div(decimal.NewFromInt(100)).Round(precision)
}
