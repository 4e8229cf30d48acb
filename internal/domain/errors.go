package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Session errors
	ErrMissingEntity = errors.New("accounting records must be associated with an entity")

	// Posting errors
	ErrAlreadyPosted = errors.New("transaction has already been posted")
	ErrUnbalanced    = errors.New("ledger entries do not balance: debits do not equal credits")
	ErrNotPersisted  = errors.New("transaction must be flushed before it can be posted")

	// Lookup errors
	ErrEntityNotFound      = errors.New("entity not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTaxNotFound         = errors.New("tax not found")
	ErrLineItemNotFound    = errors.New("line item not found")

	// Validation errors
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrInvalidTaxRate     = errors.New("tax rate must not be negative")
)

// InvalidMainAccountError reports a transaction whose main account type is
// outside the allowed set for its transaction type.
type InvalidMainAccountError struct {
	TransactionType TransactionType
	Allowed         []AccountType
}

func (e *InvalidMainAccountError) Error() string {
	return fmt.Sprintf(
		"%s Transaction main Account be of type %s",
		e.TransactionType.Name(), accountTypeList(e.Allowed),
	)
}

// InvalidLineItemAccountError reports a line item whose account type is
// outside the allowed set for the owning transaction's type. The allowed
// types are enumerated in canonical order.
type InvalidLineItemAccountError struct {
	TransactionType TransactionType
	Allowed         []AccountType
}

func (e *InvalidLineItemAccountError) Error() string {
	return fmt.Sprintf(
		"%s Transaction Line Item Account type be one of: %s",
		e.TransactionType.Name(), accountTypeList(e.Allowed),
	)
}

// InvalidTaxAccountError reports a tax whose posting account is not a
// control account.
type InvalidTaxAccountError struct {
	AccountType AccountType
}

func (e *InvalidTaxAccountError) Error() string {
	return fmt.Sprintf(
		"Tax account must be of type %s, %s given",
		AccountTypeControl.Name(), e.AccountType.Name(),
	)
}

func accountTypeList(types []AccountType) string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.Name())
	}

	return strings.Join(names, ", ")
}
