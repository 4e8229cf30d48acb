package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/bookkeeper/internal/domain"
)

// PostingUseCase expands a business transaction into its balanced set of
// ledger rows and persists them. Posting is the only way ledger rows are
// created.
type PostingUseCase struct {
	txManager    TransactionManager
	accounts     AccountRepository
	transactions TransactionRepository
	taxes        TaxRepository
	ledgers      LedgerRepository
	idGen        IDGenerator
	retrier      Retrier
	logger       zerolog.Logger
}

// NewPostingUseCase creates a new PostingUseCase.
func NewPostingUseCase(
	txManager TransactionManager,
	accounts AccountRepository,
	transactions TransactionRepository,
	taxes TaxRepository,
	ledgers LedgerRepository,
	idGen IDGenerator,
	retrier Retrier,
	logger zerolog.Logger,
) *PostingUseCase {
	return &PostingUseCase{
		txManager:    txManager,
		accounts:     accounts,
		transactions: transactions,
		taxes:        taxes,
		ledgers:      ledgers,
		idGen:        idGen,
		retrier:      retrier,
		logger:       logger,
	}
}

// Post expands the transaction into ledger rows and writes them in one
// storage transaction. It is callable once per transaction; a second call
// returns domain.ErrAlreadyPosted and writes nothing. Each row's hash is
// finalized right after its insert, inside the same storage transaction.
func (uc *PostingUseCase) Post(ctx context.Context, sess *Session, transaction *domain.Transaction) error {
	if transaction.Posted {
		return domain.ErrAlreadyPosted
	}

	if sess.Entity() == nil {
		return domain.ErrMissingEntity
	}

	if transaction.ID == "" {
		return domain.ErrNotPersisted
	}

	main, err := uc.accounts.GetByID(ctx, sess, transaction.MainAccountID)
	if err != nil {
		return err
	}

	taxes, err := uc.lineItemTaxes(ctx, sess, transaction)
	if err != nil {
		return err
	}

	entries, err := domain.BuildLedgerEntries(transaction, taxes, domain.MinorUnits(main.Currency))
	if err != nil {
		return err
	}

	now := uc.now(sess)
	for _, entry := range entries {
		entry.ID = uc.idGen.Generate()
		entry.CreatedAt = now
	}

	err = uc.retrier.Retry(ctx, func() error {
		return uc.write(ctx, sess, transaction, entries, now)
	})
	if err != nil {
		return err
	}

	transaction.Posted = true
	transaction.Ledgers = entries

	uc.logger.Info().
		Str("transaction_id", transaction.ID).
		Str("transaction_type", transaction.TransactionType.Name()).
		Int("ledger_rows", len(entries)).
		Msg("transaction posted")

	return nil
}

// write persists the ledger rows and the posted flag atomically. The
// posted flag is flipped under the storage transaction so a concurrent
// post of the same row loses with domain.ErrAlreadyPosted.
func (uc *PostingUseCase) write(ctx context.Context, sess *Session, transaction *domain.Transaction, entries []*domain.Ledger, now time.Time) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.transactions.MarkPostedTx(ctx, tx, transaction.ID, now); err != nil {
		return err
	}

	for _, entry := range entries {
		if err := uc.ledgers.CreateTx(ctx, tx, entry); err != nil {
			return err
		}

		// Hash finalization is skipped for sessions without a bound
		// entity; posting always has one, ad hoc writes may not.
		if sess.Entity() != nil {
			hash := entry.ComputeHash()
			if err := uc.ledgers.SetHashTx(ctx, tx, entry.ID, hash); err != nil {
				return err
			}

			entry.Hash = hash
		}
	}

	return tx.Commit(ctx)
}

func (uc *PostingUseCase) lineItemTaxes(ctx context.Context, sess *Session, transaction *domain.Transaction) (map[string]*domain.Tax, error) {
	var taxIDs []string

	seen := make(map[string]bool)
	for _, item := range transaction.LineItems {
		if item.TaxID != "" && !seen[item.TaxID] {
			seen[item.TaxID] = true
			taxIDs = append(taxIDs, item.TaxID)
		}
	}

	if len(taxIDs) == 0 {
		return map[string]*domain.Tax{}, nil
	}

	return uc.taxes.GetByIDs(ctx, sess, taxIDs)
}

func (uc *PostingUseCase) now(sess *Session) time.Time {
	return sess.factory.cfg.Now()
}
