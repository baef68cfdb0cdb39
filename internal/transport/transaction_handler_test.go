package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shop-ledger/internal/domain"
	"shop-ledger/internal/repository"
	"shop-ledger/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stub ledger service recording calls and serving canned entries.
type stubLedgerService struct {
	recorded   []service.RecordTransactionInput
	removed    []uuid.UUID
	lastFilter repository.TransactionFilter
	entries    []*domain.Transaction
}

func (s *stubLedgerService) RecordTransaction(ctx context.Context, input service.RecordTransactionInput) (*domain.Transaction, error) {
	s.recorded = append(s.recorded, input)
	return &domain.Transaction{
		ID:          uuid.New(),
		Date:        input.Date,
		Shop:        input.Shop,
		ProductName: input.ProductName,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
		Total:       int64(input.Quantity) * input.UnitPrice,
		Type:        input.Type,
		Period:      domain.PeriodOf(input.Date),
		CreatedAt:   time.Now(),
	}, nil
}

func (s *stubLedgerService) RemoveTransaction(ctx context.Context, id uuid.UUID) error {
	s.removed = append(s.removed, id)
	return nil
}

func (s *stubLedgerService) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]*domain.Transaction, error) {
	s.lastFilter = filter
	return s.entries, nil
}

func (s *stubLedgerService) ComputeBalances(ctx context.Context, filter repository.TransactionFilter) (*service.BalanceReport, error) {
	s.lastFilter = filter
	return &service.BalanceReport{PerShop: map[string]int64{}}, nil
}

func (s *stubLedgerService) Statistics(ctx context.Context, period *string) (*service.Statistics, error) {
	stats := &service.Statistics{}
	if period != nil {
		stats.Period = *period
	}
	return stats, nil
}

func newTransactionRouter(svc service.LedgerService) http.Handler {
	r := chi.NewRouter()
	NewTransactionHandler(svc, zap.NewNop()).RegisterRoutes(r)
	return r
}

func TestRecordTransaction_Created(t *testing.T) {
	svc := &stubLedgerService{}
	router := newTransactionRouter(svc)

	body := `{"date":"2026-01-15","shop":"뚜샵","product_name":"머그컵","quantity":3,"unit_price":1000,"transaction_type":"lend"}`
	req := httptest.NewRequest("POST", "/api/transactions", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp TransactionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Total != 3000 {
		t.Errorf("expected derived total 3000, got %d", resp.Total)
	}
	if resp.Period != "2026-01" {
		t.Errorf("expected derived period 2026-01, got %q", resp.Period)
	}

	if len(svc.recorded) != 1 {
		t.Fatalf("expected one recorded transaction, got %d", len(svc.recorded))
	}
	if svc.recorded[0].Type != domain.TypeLend {
		t.Errorf("expected lend type, got %q", svc.recorded[0].Type)
	}
}

func TestRecordTransaction_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing shop", `{"date":"2026-01-15","product_name":"머그컵","quantity":1,"unit_price":100,"transaction_type":"lend"}`},
		{"zero quantity", `{"date":"2026-01-15","shop":"뚜샵","product_name":"머그컵","quantity":0,"unit_price":100,"transaction_type":"lend"}`},
		{"bad date", `{"date":"15/01/2026","shop":"뚜샵","product_name":"머그컵","quantity":1,"unit_price":100,"transaction_type":"lend"}`},
		{"unknown type", `{"date":"2026-01-15","shop":"뚜샵","product_name":"머그컵","quantity":1,"unit_price":100,"transaction_type":"gift"}`},
		{"not json", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubLedgerService{}
			router := newTransactionRouter(svc)

			req := httptest.NewRequest("POST", "/api/transactions", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
			if len(svc.recorded) != 0 {
				t.Error("invalid request must not reach the service")
			}
		})
	}
}

func TestListTransactions_FilterParsing(t *testing.T) {
	svc := &stubLedgerService{entries: []*domain.Transaction{}}
	router := newTransactionRouter(svc)

	req := httptest.NewRequest("GET", "/api/transactions?period=2026-01&shop=온리&type=borrow&limit=5", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	f := svc.lastFilter
	if f.Period == nil || *f.Period != "2026-01" {
		t.Errorf("period filter not passed through: %+v", f)
	}
	if f.Shop == nil || *f.Shop != "온리" {
		t.Errorf("shop filter not passed through: %+v", f)
	}
	if f.Type == nil || *f.Type != domain.TypeBorrow {
		t.Errorf("type filter not passed through: %+v", f)
	}
	if f.Limit != 5 {
		t.Errorf("limit not passed through: %+v", f)
	}

	var resp TransactionListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Count != 0 || resp.Transactions == nil {
		t.Errorf("expected empty list with count 0, got %+v", resp)
	}
}

func TestListTransactions_RejectsMalformedParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bad period", "?period=January"},
		{"bad type", "?type=gift"},
		{"zero limit", "?limit=0"},
		{"non-numeric limit", "?limit=ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTransactionRouter(&stubLedgerService{})

			req := httptest.NewRequest("GET", "/api/transactions"+tt.query, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestRemoveTransaction(t *testing.T) {
	svc := &stubLedgerService{}
	router := newTransactionRouter(svc)

	id := uuid.New()
	req := httptest.NewRequest("DELETE", "/api/transactions/"+id.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if len(svc.removed) != 1 || svc.removed[0] != id {
		t.Errorf("expected removal of %s, got %v", id, svc.removed)
	}

	// A malformed id never reaches the service.
	req = httptest.NewRequest("DELETE", "/api/transactions/not-a-uuid", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", w.Code)
	}
	if len(svc.removed) != 1 {
		t.Error("malformed id must not reach the service")
	}
}
