package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/scope"
)

// ErrSessionBound is returned when a bound session is bound to a different
// entity without an explicit Reset.
var ErrSessionBound = errors.New("session is already bound to a different entity")

// SessionFactoryConfig holds the collaborators shared by all sessions.
type SessionFactoryConfig struct {
	TxManager    TransactionManager
	Entities     EntityRepository
	Periods      ReportingPeriodRepository
	Accounts     AccountRepository
	Taxes        TaxRepository
	LineItems    LineItemRepository
	Transactions TransactionRepository
	IDGen        IDGenerator
	Defaults     scope.Options
	Logger       zerolog.Logger
	Now          func() time.Time
}

// SessionFactory creates sessions. One factory is shared by all callers;
// each session is a single-caller unit of work.
type SessionFactory struct {
	cfg SessionFactoryConfig
}

// NewSessionFactory creates a new SessionFactory.
func NewSessionFactory(cfg SessionFactoryConfig) *SessionFactory {
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}

	return &SessionFactory{cfg: cfg}
}

// NewSession opens a session with the factory's default filter options,
// overridden by the given per-session options.
func (f *SessionFactory) NewSession(opts ...scope.Option) *Session {
	return &Session{
		factory: f,
		opts:    scope.Merge(f.cfg.Defaults, opts...),
	}
}

// Session is the per-unit-of-work context: the bound tenant entity, its
// current reporting period, the filter option defaults, and the pending
// write set. Sessions are not shared across concurrent callers and carry
// no locking; the backing store provides all cross-session concurrency
// control.
//
// Tenant binding is an explicit Unbound to Bound transition. It happens at
// most once, triggered automatically when the first tenant scoped record
// is added, or explicitly via Bind.
type Session struct {
	factory *SessionFactory
	opts    scope.Options

	entity *domain.Entity
	period *domain.ReportingPeriod

	pending  []domain.Record
	attached []*domain.Transaction
}

// Entity returns the bound tenant entity, or nil while unbound.
func (s *Session) Entity() *domain.Entity { return s.entity }

// EntityID returns the bound tenant's id, or "" while unbound.
func (s *Session) EntityID() string {
	if s.entity == nil {
		return ""
	}

	return s.entity.ID
}

// ReportingPeriod returns the entity's current reporting period.
func (s *Session) ReportingPeriod() *domain.ReportingPeriod { return s.period }

// Options returns the session-level filter options.
func (s *Session) Options() scope.Options { return s.opts }

// ScopeOptions merges per-call options over the session defaults.
// Per-call options take precedence.
func (s *Session) ScopeOptions(opts ...scope.Option) scope.Options {
	return scope.Merge(s.opts, opts...)
}

// SetIncludeDeleted sets the session-level soft delete suppression.
func (s *Session) SetIncludeDeleted(v bool) { s.opts.IncludeDeleted = v }

// SetIgnoreIsolation sets the session-level tenant filter suppression.
func (s *Session) SetIgnoreIsolation(v bool) { s.opts.IgnoreIsolation = v }

// Bind binds the session to a tenant. Given an entity it binds directly;
// given any other record it requires the record's entity id to be set and
// resolves the entity by it. Binding an already bound session to the same
// entity is a no-op; to a different one, an error.
func (s *Session) Bind(ctx context.Context, record domain.Record) error {
	if s.entity == nil {
		switch rec := record.(type) {
		case *domain.Entity:
			s.entity = rec
		default:
			scoped, ok := record.(domain.EntityScoped)
			if !ok || scoped.ScopeEntityID() == "" {
				return domain.ErrMissingEntity
			}

			entity, err := s.factory.cfg.Entities.GetByID(ctx, scoped.ScopeEntityID())
			if err != nil {
				return err
			}

			s.entity = entity
		}
	} else if scoped, ok := record.(domain.EntityScoped); ok && scoped.ScopeEntityID() != "" && scoped.ScopeEntityID() != s.entity.ID {
		return ErrSessionBound
	} else if entity, ok := record.(*domain.Entity); ok && entity.ID != "" && entity.ID != s.entity.ID {
		return ErrSessionBound
	}

	return s.ensureReportingPeriod(ctx)
}

// ensureReportingPeriod resolves the entity's period for the current
// calendar year, creating it when absent. Skipped while the entity has no
// durable identity yet; the next scoped write picks it up.
func (s *Session) ensureReportingPeriod(ctx context.Context) error {
	if s.entity == nil || s.entity.ID == "" {
		return nil
	}

	year := s.factory.cfg.Now().Year()
	if s.period != nil && s.period.CalendarYear == year {
		return nil
	}

	if s.entity.ReportingPeriod != nil && s.entity.ReportingPeriod.CalendarYear == year {
		s.period = s.entity.ReportingPeriod
		return nil
	}

	period, err := s.factory.cfg.Periods.GetOrCreate(ctx, s.entity.ID, year, s.factory.cfg.IDGen.Generate())
	if err != nil {
		return err
	}

	s.period = period
	s.entity.ReportingPeriod = period

	s.factory.cfg.Logger.Debug().
		Str("entity_id", s.entity.ID).
		Int("calendar_year", period.CalendarYear).
		Msg("reporting period resolved")

	return nil
}

// Add moves a record into the session's pending write set. The first
// tenant scoped record binds the session; new accounts and transactions
// receive their session index here, before they have a durable identity.
func (s *Session) Add(ctx context.Context, record domain.Record) error {
	if err := s.Bind(ctx, record); err != nil {
		return err
	}

	s.assignSessionIndex(record)
	s.pending = append(s.pending, record)

	return nil
}

// assignSessionIndex computes the zero-based per-type ordinal for new
// accounts and transactions: the number of same-typed records already
// pending, counted before this one. Never recomputed once the record has
// a durable identity.
func (s *Session) assignSessionIndex(record domain.Record) {
	switch rec := record.(type) {
	case *domain.Account:
		if rec.ID != "" {
			return
		}

		index := 0
		for _, p := range s.pending {
			if other, ok := p.(*domain.Account); ok && other.AccountType == rec.AccountType {
				index++
			}
		}

		rec.SessionIndex = index
	case *domain.Transaction:
		if rec.ID != "" {
			return
		}

		index := 0
		for _, p := range s.pending {
			if other, ok := p.(*domain.Transaction); ok && other.TransactionType == rec.TransactionType {
				index++
			}
		}

		rec.SessionIndex = index
	}
}

// AttachLineItem attaches a persisted line item to a transaction. The line
// item's account type is checked against the transaction type's allowed
// set here, at attachment, not at flush.
func (s *Session) AttachLineItem(ctx context.Context, transaction *domain.Transaction, item *domain.LineItem) error {
	account, err := s.AccountByID(ctx, item.AccountID)
	if err != nil {
		return err
	}

	if err := transaction.AttachLineItem(item, account.AccountType); err != nil {
		return err
	}

	s.attached = append(s.attached, transaction)

	return nil
}

// AccountByID resolves an account within the session's scope. Session
// implements domain.AccountLookup for the validation gate.
func (s *Session) AccountByID(ctx context.Context, id string) (*domain.Account, error) {
	return s.factory.cfg.Accounts.GetByID(ctx, s, id)
}

// Flush runs the validation gate over every pending and modified record,
// then persists the pending set in one storage transaction. Any validation
// failure aborts the whole flush; nothing is written.
func (s *Session) Flush(ctx context.Context) error {
	for _, record := range s.pending {
		if v, ok := record.(domain.Validatable); ok {
			if err := v.Validate(ctx, s); err != nil {
				return err
			}
		}
	}

	for _, transaction := range s.attached {
		if err := transaction.Validate(ctx, s); err != nil {
			return err
		}
	}

	if len(s.pending) == 0 && len(s.attached) == 0 {
		return nil
	}

	tx, err := s.factory.cfg.TxManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.writePending(ctx, tx); err != nil {
		return err
	}

	for _, transaction := range s.attached {
		itemIDs := make([]string, 0, len(transaction.LineItems))
		for _, item := range transaction.LineItems {
			if item.ID != "" {
				itemIDs = append(itemIDs, item.ID)
			}
		}

		if len(itemIDs) == 0 {
			continue
		}

		if err := s.factory.cfg.LineItems.AttachTx(ctx, tx, transaction.ID, itemIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.pending = nil
	s.attached = nil

	return nil
}

// writePending inserts pending records ordered by referential rank, so a
// record never lands before the records it references.
func (s *Session) writePending(ctx context.Context, tx Transaction) error {
	cfg := s.factory.cfg
	now := cfg.Now()

	records := make([]domain.Record, len(s.pending))
	copy(records, s.pending)
	sort.SliceStable(records, func(i, j int) bool {
		return recordRank(records[i]) < recordRank(records[j])
	})

	for _, record := range records {
		switch rec := record.(type) {
		case *domain.Entity:
			if rec.ID == "" {
				rec.ID = cfg.IDGen.Generate()
				rec.CreatedAt = now
			}
			rec.UpdatedAt = now

			if err := cfg.Entities.CreateTx(ctx, tx, rec); err != nil {
				return err
			}
		case *domain.Account:
			if rec.ID == "" {
				rec.ID = cfg.IDGen.Generate()
				rec.CreatedAt = now
			}
			rec.UpdatedAt = now

			if err := cfg.Accounts.CreateTx(ctx, tx, rec); err != nil {
				return err
			}
		case *domain.Tax:
			if rec.ID == "" {
				rec.ID = cfg.IDGen.Generate()
				rec.CreatedAt = now
			}
			rec.UpdatedAt = now

			if err := cfg.Taxes.CreateTx(ctx, tx, rec); err != nil {
				return err
			}
		case *domain.Transaction:
			if rec.ID == "" {
				rec.ID = cfg.IDGen.Generate()
				rec.CreatedAt = now
			}
			rec.UpdatedAt = now

			if err := cfg.Transactions.CreateTx(ctx, tx, rec); err != nil {
				return err
			}

			// Attached line items reference the id assigned above.
			for _, item := range rec.LineItems {
				item.TransactionID = rec.ID
			}
		case *domain.LineItem:
			if rec.ID == "" {
				rec.ID = cfg.IDGen.Generate()
				rec.CreatedAt = now
			}
			rec.UpdatedAt = now

			if err := cfg.LineItems.CreateTx(ctx, tx, rec); err != nil {
				return err
			}
		}
	}

	return nil
}

func recordRank(record domain.Record) int {
	switch record.(type) {
	case *domain.Entity:
		return 0
	case *domain.Account:
		return 1
	case *domain.Tax:
		return 2
	case *domain.Transaction:
		return 3
	case *domain.LineItem:
		return 4
	default:
		return 5
	}
}

// Reset unbinds the session and discards its pending set.
func (s *Session) Reset() {
	s.entity = nil
	s.period = nil
	s.pending = nil
	s.attached = nil
}
