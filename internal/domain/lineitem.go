package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one side of a transaction's breakdown: an amount posted
// against an account, optionally carrying a tax.
type LineItem struct {
	ID            string
	EntityID      string
	TransactionID string
	AccountID     string
	TaxID         string
	Amount        decimal.Decimal
	Narration     string
	Recyclable
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l *LineItem) RecordID() string { return l.ID }

func (l *LineItem) ScopeEntityID() string { return l.EntityID }

// Validate checks the line item before it is flushed.
func (l *LineItem) Validate(ctx context.Context, accounts AccountLookup) error {
	if l.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if _, err := accounts.AccountByID(ctx, l.AccountID); err != nil {
		return err
	}

	return nil
}
