package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// CreateEntityRequest represents a request to create an entity.
type CreateEntityRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEntityRequest) ToUseCaseInput() usecase.CreateEntityInput {
	return usecase.CreateEntityInput{
		Name:     r.Name,
		Currency: r.Currency,
	}
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	EntityID    string `json:"entity_id"`
	Name        string `json:"name"`
	Currency    string `json:"currency,omitempty"`
	AccountType string `json:"account_type"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		EntityID:    r.EntityID,
		Name:        r.Name,
		Currency:    r.Currency,
		AccountType: domain.AccountType(r.AccountType),
	}
}

// CreateTaxRequest represents a request to create a tax.
type CreateTaxRequest struct {
	EntityID  string          `json:"entity_id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	AccountID string          `json:"account_id"`
	Rate      decimal.Decimal `json:"rate"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTaxRequest) ToUseCaseInput() usecase.CreateTaxInput {
	return usecase.CreateTaxInput{
		EntityID:  r.EntityID,
		Name:      r.Name,
		Code:      r.Code,
		AccountID: r.AccountID,
		Rate:      r.Rate,
	}
}

// LineItemRequest represents a line item within a transaction request.
type LineItemRequest struct {
	AccountID string          `json:"account_id"`
	TaxID     string          `json:"tax_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Narration string          `json:"narration,omitempty"`
}

// CreateTransactionRequest represents a request to create a transaction.
type CreateTransactionRequest struct {
	EntityID        string            `json:"entity_id"`
	TransactionType string            `json:"transaction_type"`
	MainAccountID   string            `json:"main_account_id"`
	Narration       string            `json:"narration,omitempty"`
	TransactionDate *time.Time        `json:"transaction_date,omitempty"`
	LineItems       []LineItemRequest `json:"line_items,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput() usecase.CreateTransactionInput {
	items := make([]usecase.LineItemInput, len(r.LineItems))
	for i, item := range r.LineItems {
		items[i] = usecase.LineItemInput{
			AccountID: item.AccountID,
			TaxID:     item.TaxID,
			Amount:    item.Amount,
			Narration: item.Narration,
		}
	}

	input := usecase.CreateTransactionInput{
		EntityID:        r.EntityID,
		TransactionType: domain.TransactionType(r.TransactionType),
		MainAccountID:   r.MainAccountID,
		Narration:       r.Narration,
		LineItems:       items,
	}
	if r.TransactionDate != nil {
		input.TransactionDate = *r.TransactionDate
	}

	return input
}

// AttachLineItemRequest represents a request to attach a line item to an
// existing transaction.
type AttachLineItemRequest struct {
	EntityID  string          `json:"entity_id"`
	AccountID string          `json:"account_id"`
	TaxID     string          `json:"tax_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Narration string          `json:"narration,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AttachLineItemRequest) ToUseCaseInput(transactionID string) usecase.AttachLineItemInput {
	return usecase.AttachLineItemInput{
		EntityID:      r.EntityID,
		TransactionID: transactionID,
		AccountID:     r.AccountID,
		TaxID:         r.TaxID,
		Amount:        r.Amount,
		Narration:     r.Narration,
	}
}

// PostTransactionRequest represents a request to post a transaction.
type PostTransactionRequest struct {
	EntityID string `json:"entity_id"`
}
