package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
)

// EntityResponse represents an entity in API responses.
type EntityResponse struct {
	ID              string                   `json:"id"`
	Name            string                   `json:"name"`
	Currency        string                   `json:"currency"`
	ReportingPeriod *ReportingPeriodResponse `json:"reporting_period,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// ReportingPeriodResponse represents a reporting period in API responses.
type ReportingPeriodResponse struct {
	ID           string `json:"id"`
	CalendarYear int    `json:"calendar_year"`
	PeriodCount  int    `json:"period_count"`
}

// EntityFromDomain converts a domain entity to a response.
func EntityFromDomain(e *domain.Entity) *EntityResponse {
	resp := &EntityResponse{
		ID:        e.ID,
		Name:      e.Name,
		Currency:  e.Currency,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if e.ReportingPeriod != nil {
		resp.ReportingPeriod = &ReportingPeriodResponse{
			ID:           e.ReportingPeriod.ID,
			CalendarYear: e.ReportingPeriod.CalendarYear,
			PeriodCount:  e.ReportingPeriod.PeriodCount,
		}
	}

	return resp
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID          string     `json:"id"`
	EntityID    string     `json:"entity_id"`
	Name        string     `json:"name"`
	Currency    string     `json:"currency"`
	AccountType string     `json:"account_type"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:          a.ID,
		EntityID:    a.EntityID,
		Name:        a.Name,
		Currency:    a.Currency,
		AccountType: string(a.AccountType),
		DeletedAt:   a.DeletedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents an account listing.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// TaxResponse represents a tax in API responses.
type TaxResponse struct {
	ID        string          `json:"id"`
	EntityID  string          `json:"entity_id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	AccountID string          `json:"account_id"`
	Rate      decimal.Decimal `json:"rate"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TaxFromDomain converts a domain tax to a response.
func TaxFromDomain(t *domain.Tax) *TaxResponse {
	return &TaxResponse{
		ID:        t.ID,
		EntityID:  t.EntityID,
		Name:      t.Name,
		Code:      t.Code,
		AccountID: t.AccountID,
		Rate:      t.Rate,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// LineItemResponse represents a line item in API responses.
type LineItemResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id,omitempty"`
	AccountID     string          `json:"account_id"`
	TaxID         string          `json:"tax_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Narration     string          `json:"narration,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LineItemFromDomain converts a domain line item to a response.
func LineItemFromDomain(l *domain.LineItem) *LineItemResponse {
	return &LineItemResponse{
		ID:            l.ID,
		TransactionID: l.TransactionID,
		AccountID:     l.AccountID,
		TaxID:         l.TaxID,
		Amount:        l.Amount,
		Narration:     l.Narration,
		CreatedAt:     l.CreatedAt,
	}
}

// LineItemsFromDomain converts domain line items to responses.
func LineItemsFromDomain(items []*domain.LineItem) []*LineItemResponse {
	result := make([]*LineItemResponse, len(items))
	for i, item := range items {
		result[i] = LineItemFromDomain(item)
	}
	return result
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID              string              `json:"id"`
	EntityID        string              `json:"entity_id"`
	TransactionType string              `json:"transaction_type"`
	MainAccountID   string              `json:"main_account_id"`
	Narration       string              `json:"narration,omitempty"`
	TransactionDate time.Time           `json:"transaction_date"`
	Posted          bool                `json:"posted"`
	LineItems       []*LineItemResponse `json:"line_items,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              t.ID,
		EntityID:        t.EntityID,
		TransactionType: string(t.TransactionType),
		MainAccountID:   t.MainAccountID,
		Narration:       t.Narration,
		TransactionDate: t.TransactionDate,
		Posted:          t.Posted,
		LineItems:       LineItemsFromDomain(t.LineItems),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// LedgerResponse represents a ledger row in API responses.
type LedgerResponse struct {
	ID             string          `json:"id"`
	TransactionID  string          `json:"transaction_id"`
	PostAccountID  string          `json:"post_account_id"`
	FolioAccountID string          `json:"folio_account_id"`
	Amount         decimal.Decimal `json:"amount"`
	EntryType      string          `json:"entry_type"`
	Hash           string          `json:"hash"`
	CreatedAt      time.Time       `json:"created_at"`
}

// LedgerFromDomain converts a domain ledger row to a response.
func LedgerFromDomain(l *domain.Ledger) *LedgerResponse {
	return &LedgerResponse{
		ID:             l.ID,
		TransactionID:  l.TransactionID,
		PostAccountID:  l.PostAccountID,
		FolioAccountID: l.FolioAccountID,
		Amount:         l.Amount,
		EntryType:      string(l.EntryType),
		Hash:           l.Hash,
		CreatedAt:      l.CreatedAt,
	}
}

// LedgersFromDomain converts domain ledger rows to responses.
func LedgersFromDomain(ledgers []*domain.Ledger) []*LedgerResponse {
	result := make([]*LedgerResponse, len(ledgers))
	for i, l := range ledgers {
		result[i] = LedgerFromDomain(l)
	}
	return result
}

// ConsistencyResponse represents a ledger consistency check result.
type ConsistencyResponse struct {
	Consistent bool `json:"consistent"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
