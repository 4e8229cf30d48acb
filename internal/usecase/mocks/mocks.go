package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/scope"
	"github.com/iho/bookkeeper/internal/usecase"
)

// MockTransaction is a mock implementation of usecase.Transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTxManager is a mock implementation of usecase.TransactionManager.
type MockTxManager struct {
	mu     sync.Mutex
	Begun  []*MockTransaction
	Begins int

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

func (m *MockTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Begins++
	tx := &MockTransaction{}
	m.Begun = append(m.Begun, tx)
	return tx, nil
}

// MockIDGenerator is a mock implementation of usecase.IDGenerator. IDs are
// sequential and lexicographically ordered, like in-process ULIDs.
type MockIDGenerator struct {
	mu sync.Mutex
	n  int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	return fmt.Sprintf("%026d", m.n)
}

// MockRetrier is a mock implementation of usecase.Retrier that runs the
// operation exactly once.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockEntityRepository is a mock implementation of usecase.EntityRepository.
type MockEntityRepository struct {
	mu       sync.RWMutex
	entities map[string]*domain.Entity

	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, entity *domain.Entity) error
	GetByIDFunc  func(ctx context.Context, id string) (*domain.Entity, error)
}

func NewMockEntityRepository() *MockEntityRepository {
	return &MockEntityRepository{
		entities: make(map[string]*domain.Entity),
	}
}

func (m *MockEntityRepository) CreateTx(ctx context.Context, tx usecase.Transaction, entity *domain.Entity) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, entity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[entity.ID] = entity
	return nil
}

func (m *MockEntityRepository) GetByID(ctx context.Context, id string) (*domain.Entity, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entities[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEntityNotFound
}

// Seed stores an entity directly.
func (m *MockEntityRepository) Seed(entity *domain.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[entity.ID] = entity
}

// MockReportingPeriodRepository is a mock implementation of
// usecase.ReportingPeriodRepository.
type MockReportingPeriodRepository struct {
	mu      sync.Mutex
	periods map[string]*domain.ReportingPeriod // entityID|year

	GetOrCreateFunc func(ctx context.Context, entityID string, calendarYear int, id string) (*domain.ReportingPeriod, error)
}

func NewMockReportingPeriodRepository() *MockReportingPeriodRepository {
	return &MockReportingPeriodRepository{
		periods: make(map[string]*domain.ReportingPeriod),
	}
}

func (m *MockReportingPeriodRepository) GetOrCreate(ctx context.Context, entityID string, calendarYear int, id string) (*domain.ReportingPeriod, error) {
	if m.GetOrCreateFunc != nil {
		return m.GetOrCreateFunc(ctx, entityID, calendarYear, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s|%d", entityID, calendarYear)
	if p, ok := m.periods[key]; ok {
		return p, nil
	}
	count := 0
	for _, p := range m.periods {
		if p.EntityID == entityID {
			count++
		}
	}
	period := &domain.ReportingPeriod{
		ID:           id,
		EntityID:     entityID,
		CalendarYear: calendarYear,
		PeriodCount:  count + 1,
		CreatedAt:    time.Now().UTC(),
	}
	m.periods[key] = period
	return period, nil
}

// MockAccountRepository is a mock implementation of usecase.AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc  func(ctx context.Context, sess *usecase.Session, id string, opts ...scope.Option) (*domain.Account, error)
	ListFunc     func(ctx context.Context, sess *usecase.Session, limit, offset int, opts ...scope.Option) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

// visible applies the scope semantics the real repository delegates to SQL:
// tenant isolation plus soft delete filtering, per the resolved options.
func (m *MockAccountRepository) visible(account *domain.Account, o scope.Options, entityID string) bool {
	if !o.IgnoreIsolation && account.EntityID != entityID {
		return false
	}
	if !o.IncludeDeleted && (account.DeletedAt != nil || account.DestroyedAt != nil) {
		return false
	}
	return true
}

func (m *MockAccountRepository) GetByID(ctx context.Context, sess *usecase.Session, id string, opts ...scope.Option) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, sess, id, opts...)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	o := sess.ScopeOptions(opts...)
	if !o.IgnoreIsolation && sess.EntityID() == "" {
		return nil, scope.ErrNoEntity
	}
	if a, ok := m.accounts[id]; ok && m.visible(a, o, sess.EntityID()) {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) List(ctx context.Context, sess *usecase.Session, limit, offset int, opts ...scope.Option) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, sess, limit, offset, opts...)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	o := sess.ScopeOptions(opts...)
	if !o.IgnoreIsolation && sess.EntityID() == "" {
		return nil, scope.ErrNoEntity
	}
	var accounts []*domain.Account
	for _, a := range m.accounts {
		if m.visible(a, o, sess.EntityID()) {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	if offset >= len(accounts) {
		return nil, nil
	}
	accounts = accounts[offset:]
	if limit < len(accounts) {
		accounts = accounts[:limit]
	}
	return accounts, nil
}

func (m *MockAccountRepository) Recycle(ctx context.Context, sess *usecase.Session, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.EntityID != sess.EntityID() || a.DeletedAt != nil || a.DestroyedAt != nil {
		return domain.ErrAccountNotFound
	}
	a.DeletedAt = &at
	return nil
}

func (m *MockAccountRepository) Restore(ctx context.Context, sess *usecase.Session, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.EntityID != sess.EntityID() || a.DeletedAt == nil || a.DestroyedAt != nil {
		return domain.ErrAccountNotFound
	}
	a.DeletedAt = nil
	return nil
}

func (m *MockAccountRepository) Destroy(ctx context.Context, sess *usecase.Session, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.EntityID != sess.EntityID() || a.DestroyedAt != nil {
		return domain.ErrAccountNotFound
	}
	a.DestroyedAt = &at
	if a.DeletedAt == nil {
		a.DeletedAt = &at
	}
	return nil
}

// Seed stores an account directly.
func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

// MockTaxRepository is a mock implementation of usecase.TaxRepository.
type MockTaxRepository struct {
	mu    sync.RWMutex
	taxes map[string]*domain.Tax

	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, tax *domain.Tax) error
	GetByIDFunc  func(ctx context.Context, sess *usecase.Session, id string, opts ...scope.Option) (*domain.Tax, error)
}

func NewMockTaxRepository() *MockTaxRepository {
	return &MockTaxRepository{
		taxes: make(map[string]*domain.Tax),
	}
}

func (m *MockTaxRepository) CreateTx(ctx context.Context, tx usecase.Transaction, tax *domain.Tax) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, tax)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.taxes[tax.ID] = tax
	return nil
}

func (m *MockTaxRepository) GetByID(ctx context.Context, sess *usecase.Session, id string, opts ...scope.Option) (*domain.Tax, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, sess, id, opts...)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.taxes[id]; ok && t.EntityID == sess.EntityID() {
		return t, nil
	}
	return nil, domain.ErrTaxNotFound
}

func (m *MockTaxRepository) GetByIDs(ctx context.Context, sess *usecase.Session, ids []string, opts ...scope.Option) (map[string]*domain.Tax, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]*domain.Tax, len(ids))
	for _, id := range ids {
		if t, ok := m.taxes[id]; ok && t.EntityID == sess.EntityID() {
			result[id] = t
		}
	}
	return result, nil
}

// Seed stores a tax directly.
func (m *MockTaxRepository) Seed(tax *domain.Tax) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.taxes[tax.ID] = tax
}

// MockLineItemRepository is a mock implementation of
// usecase.LineItemRepository.
type MockLineItemRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.LineItem

	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, item *domain.LineItem) error
	AttachTxFunc func(ctx context.Context, tx usecase.Transaction, transactionID string, itemIDs []string) error
}

func NewMockLineItemRepository() *MockLineItemRepository {
	return &MockLineItemRepository{
		items: make(map[string]*domain.LineItem),
	}
}

func (m *MockLineItemRepository) CreateTx(ctx context.Context, tx usecase.Transaction, item *domain.LineItem) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *MockLineItemRepository) AttachTx(ctx context.Context, tx usecase.Transaction, transactionID string, itemIDs []string) error {
	if m.AttachTxFunc != nil {
		return m.AttachTxFunc(ctx, tx, transactionID, itemIDs)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range itemIDs {
		if item, ok := m.items[id]; ok {
			item.TransactionID = transactionID
		}
	}
	return nil
}

func (m *MockLineItemRepository) GetByTransaction(ctx context.Context, sess *usecase.Session, transactionID string, opts ...scope.Option) ([]*domain.LineItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []*domain.LineItem
	for _, item := range m.items {
		if item.TransactionID == transactionID && item.EntityID == sess.EntityID() {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// MockTransactionRepository is a mock implementation of
// usecase.TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction

	CreateTxFunc     func(ctx context.Context, tx usecase.Transaction, transaction *domain.Transaction) error
	GetByIDFunc      func(ctx context.Context, sess *usecase.Session, id string, opts ...scope.Option) (*domain.Transaction, error)
	MarkPostedTxFunc func(ctx context.Context, tx usecase.Transaction, id string, at time.Time) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) CreateTx(ctx context.Context, tx usecase.Transaction, transaction *domain.Transaction) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, transaction)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[transaction.ID] = transaction
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, sess *usecase.Session, id string, opts ...scope.Option) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, sess, id, opts...)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transactions[id]; ok && t.EntityID == sess.EntityID() {
		return t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) MarkPostedTx(ctx context.Context, tx usecase.Transaction, id string, at time.Time) error {
	if m.MarkPostedTxFunc != nil {
		return m.MarkPostedTxFunc(ctx, tx, id, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if t.Posted {
		return domain.ErrAlreadyPosted
	}
	t.Posted = true
	t.UpdatedAt = at
	return nil
}

// Seed stores a transaction directly.
func (m *MockTransactionRepository) Seed(transaction *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[transaction.ID] = transaction
}

// MockLedgerRepository is a mock implementation of usecase.LedgerRepository.
type MockLedgerRepository struct {
	mu      sync.RWMutex
	Entries []*domain.Ledger

	CreateTxFunc  func(ctx context.Context, tx usecase.Transaction, entry *domain.Ledger) error
	SetHashTxFunc func(ctx context.Context, tx usecase.Transaction, id, hash string) error
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

func (m *MockLedgerRepository) CreateTx(ctx context.Context, tx usecase.Transaction, entry *domain.Ledger) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockLedgerRepository) SetHashTx(ctx context.Context, tx usecase.Transaction, id, hash string) error {
	if m.SetHashTxFunc != nil {
		return m.SetHashTxFunc(ctx, tx, id, hash)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if e.ID == id {
			e.Hash = hash
			return nil
		}
	}
	return fmt.Errorf("ledger row not found: %s", id)
}

func (m *MockLedgerRepository) GetByTransaction(ctx context.Context, sess *usecase.Session, transactionID string, opts ...scope.Option) ([]*domain.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Ledger
	for _, e := range m.Entries {
		if e.TransactionID == transactionID {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (m *MockLedgerRepository) Totals(ctx context.Context) (debits, credits decimal.Decimal, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	debits, credits = decimal.Zero, decimal.Zero
	for _, e := range m.Entries {
		if e.EntryType == domain.EntryTypeDebit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits, nil
}

// MockCache is a mock implementation of usecase.Cache.
type MockCache struct {
	mu     sync.RWMutex
	values map[string]string

	GetFunc func(ctx context.Context, key string) (string, error)
	SetFunc func(ctx context.Context, key, value string, ttl time.Duration) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		values: make(map[string]string),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("cache miss: %s", key)
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
