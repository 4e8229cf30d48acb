package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

func fastRetrier() *Retrier {
	return &Retrier{
		maxAttempts:     3,
		initialInterval: time.Microsecond,
		maxInterval:     time.Millisecond,
		maxElapsedTime:  time.Second,
		logger:          zerolog.Nop(),
	}
}

func TestRetrier_ReplaysSerializationFailure(t *testing.T) {
	r := fastRetrier()

	calls := 0
	err := r.Retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: pgErrSerializationFailure}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestRetrier_PermanentErrorIsNotReplayed(t *testing.T) {
	r := fastRetrier()

	boom := errors.New("constraint violated")
	calls := 0
	err := r.Retry(context.Background(), func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the original error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("a permanent failure must not be replayed, got %d calls", calls)
	}
}

func TestRetrier_GivesUpAfterAttemptBudget(t *testing.T) {
	r := fastRetrier()

	pgErr := &pgconn.PgError{Code: pgErrDeadlock}
	calls := 0
	err := r.Retry(context.Background(), func() error {
		calls++
		return pgErr
	})
	if !errors.Is(err, pgErr) {
		t.Fatalf("expected the deadlock error, got %v", err)
	}
	if calls != r.maxAttempts+1 {
		t.Errorf("expected %d attempts, got %d", r.maxAttempts+1, calls)
	}
}
