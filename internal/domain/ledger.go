package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType tags the side a ledger row takes.
type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

// Ledger is an immutable posting row. Rows are produced only by the
// posting engine, always in balanced debit/credit pairs, and are never
// mutated after insertion except for hash finalization.
type Ledger struct {
	ID             string
	EntityID       string
	TransactionID  string
	PostAccountID  string
	FolioAccountID string
	Amount         decimal.Decimal
	EntryType      EntryType
	Hash           string
	CreatedAt      time.Time
}

func (l *Ledger) RecordID() string { return l.ID }

func (l *Ledger) ScopeEntityID() string { return l.EntityID }

// ComputeHash derives the tamper evidence hash from the row's immutable
// fields. Recomputing it from the stored columns must reproduce the
// persisted value exactly.
func (l *Ledger) ComputeHash() string {
	sum := sha256.Sum256([]byte(strings.Join([]string{
		l.ID,
		l.TransactionID,
		l.PostAccountID,
		l.FolioAccountID,
		l.Amount.String(),
		string(l.EntryType),
	}, "|")))

	return hex.EncodeToString(sum[:])
}

// VerifyHash reports whether the stored hash matches a recomputation from
// the row's immutable fields.
func (l *Ledger) VerifyHash() bool {
	return l.Hash != "" && l.Hash == l.ComputeHash()
}

// BuildLedgerEntries expands a transaction into its balanced set of ledger
// rows. For each line item, in attachment order:
//
//  1. a tax pair, if the line item carries a tax with a non-zero computed
//     amount, posting between the main account and the tax account;
//  2. the principal pair, posting between the main account and the line
//     item account.
//
// Within each pair the main account's row is emitted first. For credit
// direction transaction types the main account is credited and the counter
// account debited; the sides invert wholesale for debit direction types.
// Row order is a public contract.
//
// taxes must contain every tax referenced by the line items. precision is
// the main account currency's minor unit count.
func BuildLedgerEntries(transaction *Transaction, taxes map[string]*Tax, precision int32) ([]*Ledger, error) {
	mainSide, counterSide := EntryTypeDebit, EntryTypeCredit
	if transaction.TransactionType.CreditsMainAccount() {
		mainSide, counterSide = EntryTypeCredit, EntryTypeDebit
	}

	var entries []*Ledger

	pair := func(counterAccountID string, amount decimal.Decimal) {
		entries = append(entries,
			&Ledger{
				EntityID:       transaction.EntityID,
				TransactionID:  transaction.ID,
				PostAccountID:  transaction.MainAccountID,
				FolioAccountID: counterAccountID,
				Amount:         amount,
				EntryType:      mainSide,
			},
			&Ledger{
				EntityID:       transaction.EntityID,
				TransactionID:  transaction.ID,
				PostAccountID:  counterAccountID,
				FolioAccountID: transaction.MainAccountID,
				Amount:         amount,
				EntryType:      counterSide,
			},
		)
	}

	for _, item := range transaction.LineItems {
		if item.TaxID != "" {
			tax, ok := taxes[item.TaxID]
			if !ok {
				return nil, ErrTaxNotFound
			}

			if taxAmount := tax.AmountOn(item.Amount, precision); !taxAmount.IsZero() {
				pair(tax.AccountID, taxAmount)
			}
		}

		pair(item.AccountID, item.Amount.Round(precision))
	}

	if err := checkBalanced(entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// checkBalanced rejects an entry set whose debits and credits disagree.
// An unbalanced set is never a user error.
func checkBalanced(entries []*Ledger) error {
	delta := decimal.Zero
	for _, e := range entries {
		if e.EntryType == EntryTypeDebit {
			delta = delta.Sub(e.Amount)
		} else {
			delta = delta.Add(e.Amount)
		}
	}

	if !delta.IsZero() {
		return ErrUnbalanced
	}

	return nil
}
