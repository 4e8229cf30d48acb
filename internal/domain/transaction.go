package domain

import (
	"context"
	"time"
)

// TransactionType is the closed set of business transaction kinds. Each
// kind fixes which account types are allowed as the main account and as
// line item accounts, and which side of the ledger the main account takes.
type TransactionType string

const (
	TransactionTypeCashPurchase  TransactionType = "cash_purchase"
	TransactionTypeCashSale      TransactionType = "cash_sale"
	TransactionTypeClientInvoice TransactionType = "client_invoice"
	TransactionTypeSupplierBill  TransactionType = "supplier_bill"
	TransactionTypeJournalEntry  TransactionType = "journal_entry"
)

var transactionTypeNames = map[TransactionType]string{
	TransactionTypeCashPurchase:  "CashPurchase",
	TransactionTypeCashSale:      "CashSale",
	TransactionTypeClientInvoice: "ClientInvoice",
	TransactionTypeSupplierBill:  "SupplierBill",
	TransactionTypeJournalEntry:  "JournalEntry",
}

// purchaseLineItemTypes is the canonical allowed set for transactions that
// acquire goods or services. Order is part of the public error contract.
var purchaseLineItemTypes = []AccountType{
	AccountTypeOperatingExpense,
	AccountTypeDirectExpense,
	AccountTypeOverheadExpense,
	AccountTypeOtherExpense,
	AccountTypeNonCurrentAsset,
	AccountTypeCurrentAsset,
	AccountTypeInventory,
}

var saleLineItemTypes = []AccountType{
	AccountTypeOperatingRevenue,
}

var (
	mainAccountTypes = map[TransactionType][]AccountType{
		TransactionTypeCashPurchase:  {AccountTypeBank},
		TransactionTypeCashSale:      {AccountTypeBank},
		TransactionTypeClientInvoice: {AccountTypeReceivable},
		TransactionTypeSupplierBill:  {AccountTypePayable},
	}

	lineItemAccountTypes = map[TransactionType][]AccountType{
		TransactionTypeCashPurchase:  purchaseLineItemTypes,
		TransactionTypeSupplierBill:  purchaseLineItemTypes,
		TransactionTypeCashSale:      saleLineItemTypes,
		TransactionTypeClientInvoice: saleLineItemTypes,
	}

	// Transaction types whose main account is credited on the principal
	// movement. The remaining types debit the main account, with the
	// debit/credit sides of every pair inverted wholesale.
	creditsMainAccount = map[TransactionType]bool{
		TransactionTypeCashPurchase: true,
		TransactionTypeSupplierBill: true,
	}
)

// Name returns the display name of the transaction type.
func (t TransactionType) Name() string {
	if name, ok := transactionTypeNames[t]; ok {
		return name
	}

	return string(t)
}

// Valid reports whether t is a member of the closed enumeration.
func (t TransactionType) Valid() bool {
	_, ok := transactionTypeNames[t]
	return ok
}

// MainAccountTypes returns the account types allowed as the transaction's
// main account. A nil result means any type is allowed.
func (t TransactionType) MainAccountTypes() []AccountType {
	return mainAccountTypes[t]
}

// LineItemAccountTypes returns the account types allowed on line items, in
// canonical order. A nil result means any type is allowed.
func (t TransactionType) LineItemAccountTypes() []AccountType {
	return lineItemAccountTypes[t]
}

// CreditsMainAccount reports the posting direction of the transaction
// type: true when the main account takes the credit side of each pair.
func (t TransactionType) CreditsMainAccount() bool {
	return creditsMainAccount[t]
}

// Transaction is a business transaction. It owns its line items and, once
// posted, the ledger rows the posting engine expanded it into.
type Transaction struct {
	ID              string
	EntityID        string
	TransactionType TransactionType
	MainAccountID   string
	Narration       string
	TransactionDate time.Time
	SessionIndex    int
	LineItems       []*LineItem
	Ledgers         []*Ledger
	Posted          bool
	Recyclable
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *Transaction) RecordID() string { return t.ID }

func (t *Transaction) ScopeEntityID() string { return t.EntityID }

// AttachLineItem adds a line item to the transaction, checking its account
// type eagerly against the allowed set for the transaction's type. The
// check runs at attachment, not at flush.
func (t *Transaction) AttachLineItem(item *LineItem, accountType AccountType) error {
	if t.Posted {
		return ErrAlreadyPosted
	}

	allowed := t.TransactionType.LineItemAccountTypes()
	if allowed != nil && !containsAccountType(allowed, accountType) {
		return &InvalidLineItemAccountError{
			TransactionType: t.TransactionType,
			Allowed:         allowed,
		}
	}

	item.TransactionID = t.ID
	t.LineItems = append(t.LineItems, item)

	return nil
}

// Validate checks the transaction before it is flushed. The main account
// must exist within the session's scope and its type must be in the
// allowed set for the transaction type.
func (t *Transaction) Validate(ctx context.Context, accounts AccountLookup) error {
	main, err := accounts.AccountByID(ctx, t.MainAccountID)
	if err != nil {
		return err
	}

	allowed := t.TransactionType.MainAccountTypes()
	if allowed != nil && !containsAccountType(allowed, main.AccountType) {
		return &InvalidMainAccountError{
			TransactionType: t.TransactionType,
			Allowed:         allowed,
		}
	}

	return nil
}

func containsAccountType(types []AccountType, t AccountType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}

	return false
}
