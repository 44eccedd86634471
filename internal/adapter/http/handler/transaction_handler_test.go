package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/olek/paywire/internal/adapter/http/dto"
	"github.com/olek/paywire/internal/adapter/http/middleware"
	"github.com/olek/paywire/internal/domain"
	"github.com/olek/paywire/internal/usecase"
)

type transferServiceStub struct {
	transferFn func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error)
}

func (s *transferServiceStub) Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
	if s.transferFn == nil {
		return nil, nil
	}
	return s.transferFn(ctx, input)
}

type ledgerServiceStub struct {
	listFn        func(ctx context.Context, accountID int64, page int) (*usecase.AccountStatement, error)
	getFn         func(ctx context.Context, id string) (*domain.Transaction, error)
	consistencyFn func(ctx context.Context) (*usecase.ConsistencyResult, error)
}

func (s *ledgerServiceStub) ListForAccount(ctx context.Context, accountID int64, page int) (*usecase.AccountStatement, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, accountID, page)
}

func (s *ledgerServiceStub) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	if s.getFn == nil {
		return nil, nil
	}
	return s.getFn(ctx, id)
}

func (s *ledgerServiceStub) CheckConsistency(ctx context.Context) (*usecase.ConsistencyResult, error) {
	if s.consistencyFn == nil {
		return nil, nil
	}
	return s.consistencyFn(ctx)
}

type countingRetrier struct {
	attempts int
	max      int
}

func (r *countingRetrier) Retry(ctx context.Context, operation func() error) error {
	var err error
	for i := 0; i < r.max; i++ {
		r.attempts++
		if err = operation(); err == nil {
			return nil
		}
	}
	return err
}

func authedRequest(method, target string, body []byte, accountID int64) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	ctx := middleware.WithPrincipal(req.Context(), &middleware.Principal{
		AccountID: accountID,
		Email:     "sender@example.com",
	})

	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)

	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func sampleTransaction() *domain.Transaction {
	return &domain.Transaction{
		ID:            "01J0000000000000000000XYZA",
		Sender:        &domain.AccountRef{ID: 1, Name: "Alice"},
		Receiver:      &domain.AccountRef{ID: 2, Name: "Bob"},
		SenderID:      1,
		ReceiverID:    2,
		Amount:        decimal.RequireFromString("100.00"),
		CommissionFee: decimal.RequireFromString("1.50"),
		TotalDebited:  decimal.RequireFromString("101.50"),
		BalanceAfter:  decimal.RequireFromString("898.50"),
		Status:        domain.TransactionStatusCompleted,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestTransactionHandler_Create_Success(t *testing.T) {
	var captured usecase.TransferInput

	handler := NewTransactionHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
			captured = input
			return sampleTransaction(), nil
		},
	}, &ledgerServiceStub{}, nil, nil)

	body, _ := json.Marshal(dto.CreateTransactionRequest{
		ReceiverID: 2,
		Amount:     decimal.RequireFromString("100.00"),
	})

	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest(http.MethodPost, "/api/transactions", body, 1))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.SenderID != 1 {
		t.Fatalf("expected sender from token, got %d", captured.SenderID)
	}
	if captured.ReceiverID != 2 {
		t.Fatalf("expected receiver 2, got %d", captured.ReceiverID)
	}

	var resp dto.CreateTransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Transaction == nil {
		t.Fatal("expected transaction in response")
	}
	if resp.Transaction.CommissionFee != "1.50" {
		t.Fatalf("expected fee 1.50, got %s", resp.Transaction.CommissionFee)
	}
	if resp.Transaction.Sender == nil || resp.Transaction.Sender.Name != "Alice" {
		t.Fatalf("expected expanded sender, got %+v", resp.Transaction.Sender)
	}
}

func TestTransactionHandler_Create_SenderFromTokenOnly(t *testing.T) {
	var captured usecase.TransferInput

	handler := NewTransactionHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
			captured = input
			return sampleTransaction(), nil
		},
	}, &ledgerServiceStub{}, nil, nil)

	// A caller-supplied sender_id has no field to land in and is dropped.
	body := []byte(`{"sender_id": 99, "receiver_id": 2, "amount": "50.00"}`)

	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest(http.MethodPost, "/api/transactions", body, 1))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if captured.SenderID != 1 {
		t.Fatalf("expected sender 1 from token, got %d", captured.SenderID)
	}
}

func TestTransactionHandler_Create_Unauthenticated(t *testing.T) {
	handler := NewTransactionHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
			t.Fatal("Transfer should not be called")
			return nil, nil
		},
	}, &ledgerServiceStub{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestTransactionHandler_Create_InvalidBody(t *testing.T) {
	handler := NewTransactionHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
			t.Fatal("Transfer should not be called")
			return nil, nil
		},
	}, &ledgerServiceStub{}, nil, nil)

	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest(http.MethodPost, "/api/transactions", []byte("{bad json"), 1))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransactionHandler_Create_ValidationErrors(t *testing.T) {
	handler := NewTransactionHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
			t.Fatal("Transfer should not be called")
			return nil, nil
		},
	}, &ledgerServiceStub{}, nil, nil)

	body := []byte(`{"receiver_id": 0, "amount": "0"}`)

	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest(http.MethodPost, "/api/transactions", body, 1))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var resp dto.ValidationErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := resp.Errors["receiver_id"]; !ok {
		t.Fatalf("expected receiver_id error, got %+v", resp.Errors)
	}
	if _, ok := resp.Errors["amount"]; !ok {
		t.Fatalf("expected amount error, got %+v", resp.Errors)
	}
}

func TestTransactionHandler_Create_DomainErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"insufficient balance", domain.ErrInsufficientBalance, http.StatusBadRequest},
		{"receiver not found", domain.ErrReceiverNotFound, http.StatusBadRequest},
		{"lock timeout", domain.ErrLockTimeout, http.StatusServiceUnavailable},
		{"transfer failed", domain.ErrTransferFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTransactionHandler(&transferServiceStub{
				transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
					return nil, tt.err
				},
			}, &ledgerServiceStub{}, nil, nil)

			body, _ := json.Marshal(dto.CreateTransactionRequest{
				ReceiverID: 2,
				Amount:     decimal.RequireFromString("100.00"),
			})

			rec := httptest.NewRecorder()
			handler.Create(rec, authedRequest(http.MethodPost, "/api/transactions", body, 1))

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}

func TestTransactionHandler_Create_RetriesThroughRetrier(t *testing.T) {
	calls := 0
	handler := NewTransactionHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
			calls++
			if calls < 3 {
				return nil, domain.ErrTransferFailed
			}
			return sampleTransaction(), nil
		},
	}, &ledgerServiceStub{}, &countingRetrier{max: 5}, nil)

	body, _ := json.Marshal(dto.CreateTransactionRequest{
		ReceiverID: 2,
		Amount:     decimal.RequireFromString("100.00"),
	})

	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest(http.MethodPost, "/api/transactions", body, 1))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 after retries, got %d", rec.Code)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestTransactionHandler_List(t *testing.T) {
	var gotAccountID int64
	var gotPage int

	handler := NewTransactionHandler(&transferServiceStub{}, &ledgerServiceStub{
		listFn: func(ctx context.Context, accountID int64, page int) (*usecase.AccountStatement, error) {
			gotAccountID = accountID
			gotPage = page
			return &usecase.AccountStatement{
				Transactions: []*domain.Transaction{sampleTransaction()},
				Balance:      decimal.RequireFromString("898.50"),
				Page:         page,
				PerPage:      usecase.DefaultPageSize,
			}, nil
		},
	}, nil, nil)

	rec := httptest.NewRecorder()
	handler.List(rec, authedRequest(http.MethodGet, "/api/transactions?page=2", nil, 1))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotAccountID != 1 || gotPage != 2 {
		t.Fatalf("expected account 1 page 2, got account %d page %d", gotAccountID, gotPage)
	}

	var resp dto.TransactionListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(resp.Transactions))
	}
	if resp.Balance != "898.50" {
		t.Fatalf("expected balance 898.50, got %s", resp.Balance)
	}
}

func TestTransactionHandler_Get(t *testing.T) {
	handler := NewTransactionHandler(&transferServiceStub{}, &ledgerServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Transaction, error) {
			if id != "txn-1" {
				return nil, domain.ErrTransactionNotFound
			}
			return sampleTransaction(), nil
		},
	}, nil, nil)

	t.Run("participant sees transaction", func(t *testing.T) {
		req := withURLParam(authedRequest(http.MethodGet, "/api/transactions/txn-1", nil, 2), "id", "txn-1")
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("outsider gets 404", func(t *testing.T) {
		req := withURLParam(authedRequest(http.MethodGet, "/api/transactions/txn-1", nil, 3), "id", "txn-1")
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("missing transaction", func(t *testing.T) {
		req := withURLParam(authedRequest(http.MethodGet, "/api/transactions/nope", nil, 1), "id", "nope")
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_Consistency(t *testing.T) {
	handler := NewTransactionHandler(&transferServiceStub{}, &ledgerServiceStub{
		consistencyFn: func(ctx context.Context) (*usecase.ConsistencyResult, error) {
			return &usecase.ConsistencyResult{
				Consistent:       false,
				InconsistentRows: []string{"txn-bad"},
			}, nil
		},
	}, nil, nil)

	rec := httptest.NewRecorder()
	handler.Consistency(rec, authedRequest(http.MethodGet, "/api/ledger/consistency", nil, 1))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ConsistencyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Consistent {
		t.Fatal("expected inconsistent result")
	}
	if len(resp.InconsistentRows) != 1 || resp.InconsistentRows[0] != "txn-bad" {
		t.Fatalf("unexpected rows %+v", resp.InconsistentRows)
	}
}
