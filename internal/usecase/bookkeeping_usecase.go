package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/scope"
)

// BookkeepingUseCase orchestrates record lifecycle operations: it opens a
// session per call, binds it to the caller's entity, routes writes through
// the session's flush and reads through the scoped repositories.
type BookkeepingUseCase struct {
	sessions     *SessionFactory
	entities     EntityRepository
	accounts     AccountRepository
	taxes        TaxRepository
	transactions TransactionRepository
	idGen        IDGenerator
	logger       zerolog.Logger
	now          func() time.Time
}

// NewBookkeepingUseCase creates a new BookkeepingUseCase.
func NewBookkeepingUseCase(
	sessions *SessionFactory,
	entities EntityRepository,
	accounts AccountRepository,
	taxes TaxRepository,
	transactions TransactionRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
) *BookkeepingUseCase {
	return &BookkeepingUseCase{
		sessions:     sessions,
		entities:     entities,
		accounts:     accounts,
		taxes:        taxes,
		transactions: transactions,
		idGen:        idGen,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SessionForEntity opens a session bound to the given entity.
func (uc *BookkeepingUseCase) SessionForEntity(ctx context.Context, entityID string, opts ...scope.Option) (*Session, error) {
	entity, err := uc.entities.GetByID(ctx, entityID)
	if err != nil {
		return nil, err
	}

	sess := uc.sessions.NewSession(opts...)
	if err := sess.Bind(ctx, entity); err != nil {
		return nil, err
	}

	return sess, nil
}

// CreateEntityInput represents input for creating an entity.
type CreateEntityInput struct {
	Name     string
	Currency string
}

// CreateEntity creates a new tenant entity and its first reporting period.
func (uc *BookkeepingUseCase) CreateEntity(ctx context.Context, input CreateEntityInput) (*domain.Entity, error) {
	entity := &domain.Entity{
		Name:     input.Name,
		Currency: input.Currency,
	}

	sess := uc.sessions.NewSession()
	if err := sess.Add(ctx, entity); err != nil {
		return nil, err
	}

	if err := sess.Flush(ctx); err != nil {
		return nil, err
	}

	// The period is resolvable only once the entity has an id.
	if err := sess.Bind(ctx, entity); err != nil {
		return nil, err
	}

	uc.logger.Info().Str("entity_id", entity.ID).Msg("entity created")

	return entity, nil
}

// GetEntity retrieves an entity by ID.
func (uc *BookkeepingUseCase) GetEntity(ctx context.Context, id string) (*domain.Entity, error) {
	return uc.entities.GetByID(ctx, id)
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	EntityID    string
	Name        string
	Currency    string
	AccountType domain.AccountType
}

// CreateAccount creates a new account under the input's entity.
func (uc *BookkeepingUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	sess, err := uc.SessionForEntity(ctx, input.EntityID)
	if err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = sess.Entity().Currency
	}

	account := &domain.Account{
		EntityID:    input.EntityID,
		Name:        input.Name,
		Currency:    currency,
		AccountType: input.AccountType,
	}

	if err := sess.Add(ctx, account); err != nil {
		return nil, err
	}

	if err := sess.Flush(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account within the entity's scope.
func (uc *BookkeepingUseCase) GetAccount(ctx context.Context, entityID, id string, opts ...scope.Option) (*domain.Account, error) {
	sess, err := uc.SessionForEntity(ctx, entityID, opts...)
	if err != nil {
		return nil, err
	}

	return uc.accounts.GetByID(ctx, sess, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	EntityID       string
	Limit          int
	Offset         int
	IncludeDeleted bool
}

// ListAccounts lists the entity's accounts with pagination.
func (uc *BookkeepingUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	var opts []scope.Option
	if input.IncludeDeleted {
		opts = append(opts, scope.IncludeDeleted())
	}

	sess, err := uc.SessionForEntity(ctx, input.EntityID, opts...)
	if err != nil {
		return nil, err
	}

	return uc.accounts.List(ctx, sess, input.Limit, input.Offset)
}

// RecycleAccount soft deletes an account.
func (uc *BookkeepingUseCase) RecycleAccount(ctx context.Context, entityID, id string) error {
	sess, err := uc.SessionForEntity(ctx, entityID)
	if err != nil {
		return err
	}

	return uc.accounts.Recycle(ctx, sess, id, uc.now())
}

// RestoreAccount reverses a soft delete.
func (uc *BookkeepingUseCase) RestoreAccount(ctx context.Context, entityID, id string) error {
	sess, err := uc.SessionForEntity(ctx, entityID, scope.IncludeDeleted())
	if err != nil {
		return err
	}

	return uc.accounts.Restore(ctx, sess, id)
}

// DestroyAccount permanently retires an account. Destroyed accounts never
// come back; Restore does not apply to them.
func (uc *BookkeepingUseCase) DestroyAccount(ctx context.Context, entityID, id string) error {
	sess, err := uc.SessionForEntity(ctx, entityID)
	if err != nil {
		return err
	}

	return uc.accounts.Destroy(ctx, sess, id, uc.now())
}

// CreateTaxInput represents input for creating a tax.
type CreateTaxInput struct {
	EntityID  string
	Name      string
	Code      string
	AccountID string
	Rate      decimal.Decimal
}

// CreateTax creates a new tax under the input's entity.
func (uc *BookkeepingUseCase) CreateTax(ctx context.Context, input CreateTaxInput) (*domain.Tax, error) {
	sess, err := uc.SessionForEntity(ctx, input.EntityID)
	if err != nil {
		return nil, err
	}

	tax := &domain.Tax{
		EntityID:  input.EntityID,
		Name:      input.Name,
		Code:      input.Code,
		AccountID: input.AccountID,
		Rate:      input.Rate,
	}

	if err := sess.Add(ctx, tax); err != nil {
		return nil, err
	}

	if err := sess.Flush(ctx); err != nil {
		return nil, err
	}

	return tax, nil
}

// GetTax retrieves a tax within the entity's scope.
func (uc *BookkeepingUseCase) GetTax(ctx context.Context, entityID, id string) (*domain.Tax, error) {
	sess, err := uc.SessionForEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	return uc.taxes.GetByID(ctx, sess, id)
}

// LineItemInput represents a line item within a transaction create call.
type LineItemInput struct {
	AccountID string
	TaxID     string
	Amount    decimal.Decimal
	Narration string
}

// CreateTransactionInput represents input for creating a transaction with
// its line items.
type CreateTransactionInput struct {
	EntityID        string
	TransactionType domain.TransactionType
	MainAccountID   string
	Narration       string
	TransactionDate time.Time
	LineItems       []LineItemInput
}

// CreateTransaction creates an unposted transaction and its line items in
// one flush. Line item account types are checked eagerly at attachment.
func (uc *BookkeepingUseCase) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	sess, err := uc.SessionForEntity(ctx, input.EntityID)
	if err != nil {
		return nil, err
	}

	transactionDate := input.TransactionDate
	if transactionDate.IsZero() {
		transactionDate = uc.now()
	}

	transaction := &domain.Transaction{
		EntityID:        input.EntityID,
		TransactionType: input.TransactionType,
		MainAccountID:   input.MainAccountID,
		Narration:       input.Narration,
		TransactionDate: transactionDate,
	}

	if err := sess.Add(ctx, transaction); err != nil {
		return nil, err
	}

	for _, itemInput := range input.LineItems {
		item := &domain.LineItem{
			EntityID:  input.EntityID,
			AccountID: itemInput.AccountID,
			TaxID:     itemInput.TaxID,
			Amount:    itemInput.Amount,
			Narration: itemInput.Narration,
		}

		if err := sess.Add(ctx, item); err != nil {
			return nil, err
		}

		if err := sess.AttachLineItem(ctx, transaction, item); err != nil {
			return nil, err
		}
	}

	if err := sess.Flush(ctx); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("transaction_id", transaction.ID).
		Str("transaction_type", transaction.TransactionType.Name()).
		Msg("transaction created")

	return transaction, nil
}

// AttachLineItemInput represents input for attaching a line item to an
// existing unposted transaction.
type AttachLineItemInput struct {
	EntityID      string
	TransactionID string
	AccountID     string
	TaxID         string
	Amount        decimal.Decimal
	Narration     string
}

// AttachLineItem adds a line item to an existing transaction.
func (uc *BookkeepingUseCase) AttachLineItem(ctx context.Context, input AttachLineItemInput) (*domain.LineItem, error) {
	sess, err := uc.SessionForEntity(ctx, input.EntityID)
	if err != nil {
		return nil, err
	}

	transaction, err := uc.transactions.GetByID(ctx, sess, input.TransactionID)
	if err != nil {
		return nil, err
	}

	item := &domain.LineItem{
		EntityID:  input.EntityID,
		AccountID: input.AccountID,
		TaxID:     input.TaxID,
		Amount:    input.Amount,
		Narration: input.Narration,
	}

	if err := sess.Add(ctx, item); err != nil {
		return nil, err
	}

	if err := sess.AttachLineItem(ctx, transaction, item); err != nil {
		return nil, err
	}

	if err := sess.Flush(ctx); err != nil {
		return nil, err
	}

	return item, nil
}

// GetTransaction retrieves a transaction with its line items.
func (uc *BookkeepingUseCase) GetTransaction(ctx context.Context, entityID, id string) (*domain.Transaction, error) {
	sess, err := uc.SessionForEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	return uc.transactions.GetByID(ctx, sess, id)
}
