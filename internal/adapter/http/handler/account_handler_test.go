package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bookkeeper/internal/adapter/http/dto"
	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/scope"
	"github.com/iho/bookkeeper/internal/usecase"
)

type accountServiceStub struct {
	createFn  func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn     func(ctx context.Context, entityID, id string, opts ...scope.Option) (*domain.Account, error)
	listFn    func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	recycleFn func(ctx context.Context, entityID, id string) error
	restoreFn func(ctx context.Context, entityID, id string) error
	destroyFn func(ctx context.Context, entityID, id string) error
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, entityID, id string, opts ...scope.Option) (*domain.Account, error) {
	return s.getFn(ctx, entityID, id, opts...)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return s.listFn(ctx, input)
}

func (s *accountServiceStub) RecycleAccount(ctx context.Context, entityID, id string) error {
	return s.recycleFn(ctx, entityID, id)
}

func (s *accountServiceStub) RestoreAccount(ctx context.Context, entityID, id string) error {
	return s.restoreFn(ctx, entityID, id)
}

func (s *accountServiceStub) DestroyAccount(ctx context.Context, entityID, id string) error {
	return s.destroyFn(ctx, entityID, id)
}

func TestAccountHandler_Create_Success(t *testing.T) {
	account := &domain.Account{
		ID:          "acc-1",
		EntityID:    "ent-1",
		Name:        "Office Supplies",
		Currency:    "USD",
		AccountType: domain.AccountTypeOperatingExpense,
	}

	var captured usecase.CreateAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			return account, nil
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{
		EntityID:    "ent-1",
		Name:        "Office Supplies",
		AccountType: "operating_expense",
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.EntityID != "ent-1" || captured.AccountType != domain.AccountTypeOperatingExpense {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" {
		t.Fatalf("expected account ID acc-1, got %s", resp.ID)
	}
}

func TestAccountHandler_Create_InvalidType(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			return nil, domain.ErrInvalidAccountType
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{
		EntityID:    "ent-1",
		Name:        "Cash",
		AccountType: "petty_cash",
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_Success(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, entityID, id string, opts ...scope.Option) (*domain.Account, error) {
			if entityID != "ent-1" || id != "acc-1" {
				t.Fatalf("unexpected lookup: entity=%s id=%s", entityID, id)
			}
			return &domain.Account{ID: "acc-1", EntityID: "ent-1", Name: "Bank"}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1?entity_id=ent-1", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAccountHandler_Get_MissingEntity(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without entity_id, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, entityID, id string, opts ...scope.Option) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-x?entity_id=ent-1", nil)
	req = setChiURLParam(req, "id", "acc-x")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_List_Success(t *testing.T) {
	var captured usecase.ListAccountsInput
	handler := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
			captured = input
			return []*domain.Account{
				{ID: "acc-1", EntityID: "ent-1"},
				{ID: "acc-2", EntityID: "ent-1"},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts?entity_id=ent-1&limit=50&include_deleted=true", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.EntityID != "ent-1" || captured.Limit != 50 || !captured.IncludeDeleted {
		t.Fatalf("expected query to map to input, got %+v", captured)
	}

	var resp dto.ListAccountsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(resp.Accounts))
	}
}

func TestAccountHandler_Lifecycle(t *testing.T) {
	var recycled, restored, destroyed bool
	handler := NewAccountHandler(&accountServiceStub{
		recycleFn: func(ctx context.Context, entityID, id string) error {
			recycled = true
			return nil
		},
		restoreFn: func(ctx context.Context, entityID, id string) error {
			restored = true
			return nil
		},
		destroyFn: func(ctx context.Context, entityID, id string) error {
			destroyed = true
			return nil
		},
	})

	for _, step := range []struct {
		name string
		fn   http.HandlerFunc
	}{
		{"recycle", handler.Recycle},
		{"restore", handler.Restore},
		{"destroy", handler.Destroy},
	} {
		req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/"+step.name+"?entity_id=ent-1", nil)
		req = setChiURLParam(req, "id", "acc-1")
		rec := httptest.NewRecorder()

		step.fn(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", step.name, rec.Code, rec.Body.String())
		}
	}

	if !recycled || !restored || !destroyed {
		t.Fatalf("expected all lifecycle operations to run: recycle=%v restore=%v destroy=%v", recycled, restored, destroyed)
	}
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}
