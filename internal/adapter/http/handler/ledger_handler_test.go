package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/adapter/http/dto"
	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/scope"
	"github.com/iho/bookkeeper/internal/usecase"
)

type ledgerServiceStub struct {
	consistencyFn func(ctx context.Context) (bool, error)
	listFn        func(ctx context.Context, sess *usecase.Session, transactionID string) ([]*domain.Ledger, error)
	verifyFn      func(ctx context.Context, sess *usecase.Session, transactionID string) ([]string, error)
}

func (s *ledgerServiceStub) CheckConsistency(ctx context.Context) (bool, error) {
	return s.consistencyFn(ctx)
}

func (s *ledgerServiceStub) LedgersByTransaction(ctx context.Context, sess *usecase.Session, transactionID string) ([]*domain.Ledger, error) {
	return s.listFn(ctx, sess, transactionID)
}

func (s *ledgerServiceStub) VerifyHashes(ctx context.Context, sess *usecase.Session, transactionID string) ([]string, error) {
	return s.verifyFn(ctx, sess, transactionID)
}

type sessionServiceStub struct{}

func (s *sessionServiceStub) SessionForEntity(ctx context.Context, entityID string, opts ...scope.Option) (*usecase.Session, error) {
	return &usecase.Session{}, nil
}

func TestLedgerHandler_ListByTransaction(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		listFn: func(ctx context.Context, sess *usecase.Session, transactionID string) ([]*domain.Ledger, error) {
			return []*domain.Ledger{
				{ID: "led-1", TransactionID: transactionID, Amount: decimal.NewFromInt(10), EntryType: domain.EntryTypeCredit},
				{ID: "led-2", TransactionID: transactionID, Amount: decimal.NewFromInt(10), EntryType: domain.EntryTypeDebit},
			}, nil
		},
	}, &sessionServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/transactions/txn-1/ledgers?entity_id=ent-1", nil)
	req = setChiURLParam(req, "id", "txn-1")
	rec := httptest.NewRecorder()

	handler.ListByTransaction(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp []*dto.LedgerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 || resp[0].ID != "led-1" {
		t.Fatalf("expected rows in posting order, got %+v", resp)
	}
}

func TestLedgerHandler_VerifyHashes(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		verifyFn: func(ctx context.Context, sess *usecase.Session, transactionID string) ([]string, error) {
			return []string{"led-2"}, nil
		},
	}, &sessionServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/transactions/txn-1/ledgers/verify?entity_id=ent-1", nil)
	req = setChiURLParam(req, "id", "txn-1")
	rec := httptest.NewRecorder()

	handler.VerifyHashes(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Valid    bool     `json:"valid"`
		Tampered []string `json:"tampered"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Valid || len(resp.Tampered) != 1 || resp.Tampered[0] != "led-2" {
		t.Fatalf("expected led-2 flagged, got %+v", resp)
	}
}

func TestLedgerHandler_Consistency(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		consistencyFn: func(ctx context.Context) (bool, error) {
			return true, nil
		},
	}, &sessionServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/ledger/consistency", nil)
	rec := httptest.NewRecorder()

	handler.Consistency(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ConsistencyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Consistent {
		t.Fatal("expected consistent ledger")
	}
}
