package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// AccountType is the closed set of account classifications. Every account
// carries exactly one; transaction types restrict which are usable as main
// and line item accounts.
type AccountType string

const (
	AccountTypeNonCurrentAsset     AccountType = "non_current_asset"
	AccountTypeContraAsset         AccountType = "contra_asset"
	AccountTypeInventory           AccountType = "inventory"
	AccountTypeBank                AccountType = "bank"
	AccountTypeCurrentAsset        AccountType = "current_asset"
	AccountTypeReceivable          AccountType = "receivable"
	AccountTypeNonCurrentLiability AccountType = "non_current_liability"
	AccountTypeControl             AccountType = "control"
	AccountTypeCurrentLiability    AccountType = "current_liability"
	AccountTypePayable             AccountType = "payable"
	AccountTypeEquity              AccountType = "equity"
	AccountTypeOperatingRevenue    AccountType = "operating_revenue"
	AccountTypeOperatingExpense    AccountType = "operating_expense"
	AccountTypeNonOperatingRevenue AccountType = "non_operating_revenue"
	AccountTypeDirectExpense       AccountType = "direct_expense"
	AccountTypeOverheadExpense     AccountType = "overhead_expense"
	AccountTypeOtherExpense        AccountType = "other_expense"
	AccountTypeReconciliation      AccountType = "reconciliation"
)

// accountTypeNames maps types to their display names. OtherExpense is
// displayed as plain "Expense" in the chart of accounts.
var accountTypeNames = map[AccountType]string{
	AccountTypeNonCurrentAsset:     "Non Current Asset",
	AccountTypeContraAsset:         "Contra Asset",
	AccountTypeInventory:           "Inventory",
	AccountTypeBank:                "Bank",
	AccountTypeCurrentAsset:        "Current Asset",
	AccountTypeReceivable:          "Receivable",
	AccountTypeNonCurrentLiability: "Non Current Liability",
	AccountTypeControl:             "Control Account",
	AccountTypeCurrentLiability:    "Current Liability",
	AccountTypePayable:             "Payable",
	AccountTypeEquity:              "Equity",
	AccountTypeOperatingRevenue:    "Operating Revenue",
	AccountTypeOperatingExpense:    "Operating Expense",
	AccountTypeNonOperatingRevenue: "Non Operating Revenue",
	AccountTypeDirectExpense:       "Direct Expense",
	AccountTypeOverheadExpense:     "Overhead Expense",
	AccountTypeOtherExpense:        "Expense",
	AccountTypeReconciliation:      "Reconciliation",
}

// Name returns the display name of the account type.
func (t AccountType) Name() string {
	if name, ok := accountTypeNames[t]; ok {
		return name
	}

	return string(t)
}

// Valid reports whether t is a member of the closed enumeration.
func (t AccountType) Valid() bool {
	_, ok := accountTypeNames[t]
	return ok
}

// Account is a posting destination in an entity's chart of accounts.
type Account struct {
	ID           string
	EntityID     string
	Name         string
	Currency     string
	AccountType  AccountType
	SessionIndex int
	Recyclable
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Account) RecordID() string { return a.ID }

func (a *Account) ScopeEntityID() string { return a.EntityID }

// Validate checks the account before it is flushed.
func (a *Account) Validate(ctx context.Context, accounts AccountLookup) error {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if !a.AccountType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAccountType, a.AccountType)
	}

	if err := ValidateCurrency(a.Currency); err != nil {
		return err
	}

	return nil
}
