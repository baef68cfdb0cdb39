package service

import (
	"context"
	"fmt"
	"time"

	"shop-ledger/internal/balance"
	"shop-ledger/internal/domain"
	"shop-ledger/internal/repository"

	"github.com/google/uuid"
)

// RecordTransactionInput carries the fields for a new ledger entry.
// Total and period are derived, never taken from the caller.
type RecordTransactionInput struct {
	Date        time.Time
	Shop        string
	ProductName string
	Quantity    int
	UnitPrice   int64
	Type        domain.TransactionType
}

// BalanceReport is the settlement view for one period, or all time when
// no period filter was given.
type BalanceReport struct {
	NetBalance int64                 `json:"net_balance"`
	PerShop    map[string]int64      `json:"per_shop"`
	Ranked     []balance.ShopBalance `json:"ranked"`
	Totals     balance.TypeTotals    `json:"totals"`
}

// Statistics is the monthly-statistics view: gross figures for the
// selected period plus all-time per-shop accumulation.
type Statistics struct {
	Period   string              `json:"period,omitempty"`
	Totals   balance.TypeTotals  `json:"totals"`
	Net      int64               `json:"net_balance"`
	AllShops []balance.ShopStats `json:"shop_stats"`
}

// LedgerService defines the interface for ledger business logic
type LedgerService interface {
	RecordTransaction(ctx context.Context, input RecordTransactionInput) (*domain.Transaction, error)
	RemoveTransaction(ctx context.Context, id uuid.UUID) error
	ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]*domain.Transaction, error)
	ComputeBalances(ctx context.Context, filter repository.TransactionFilter) (*BalanceReport, error)
	Statistics(ctx context.Context, period *string) (*Statistics, error)
}

type ledgerService struct {
	txRepo repository.TransactionRepository
}

// NewLedgerService creates a new instance of LedgerService
func NewLedgerService(txRepo repository.TransactionRepository) LedgerService {
	return &ledgerService{txRepo: txRepo}
}

// RecordTransaction validates the input, derives total and period, and
// appends the entry to the ledger under a fresh id.
func (s *ledgerService) RecordTransaction(ctx context.Context, input RecordTransactionInput) (*domain.Transaction, error) {
	if err := validateTransactionInput(input); err != nil {
		return nil, err
	}

	tx := &domain.Transaction{
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
	}

	if err := s.txRepo.Insert(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	return tx, nil
}

// RemoveTransaction hard-deletes by id. Removing an id that was already
// removed succeeds silently, mirroring the user-facing tolerance for
// "already gone".
func (s *ledgerService) RemoveTransaction(ctx context.Context, id uuid.UUID) error {
	if err := s.txRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to remove transaction: %w", err)
	}
	return nil
}

// ListTransactions returns filtered entries, most recent first.
func (s *ledgerService) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]*domain.Transaction, error) {
	transactions, err := s.txRepo.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

// ComputeBalances re-derives the settlement view from the raw ledger.
func (s *ledgerService) ComputeBalances(ctx context.Context, filter repository.TransactionFilter) (*BalanceReport, error) {
	filter.Limit = 0 // balances always cover the whole filtered set
	transactions, err := s.txRepo.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for balances: %w", err)
	}

	return &BalanceReport{
		NetBalance: balance.NetBalance(transactions),
		PerShop:    balance.PerShopBalances(transactions),
		Ranked:     balance.RankedShopBalances(transactions),
		Totals:     balance.ComputeTypeTotals(transactions),
	}, nil
}

// Statistics builds the monthly view: gross totals and counts for the
// period (or all time), plus all-time per-shop lend/borrow/net figures.
func (s *ledgerService) Statistics(ctx context.Context, period *string) (*Statistics, error) {
	scoped, err := s.txRepo.Query(ctx, repository.TransactionFilter{Period: period})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for statistics: %w", err)
	}

	all := scoped
	if period != nil {
		all, err = s.txRepo.Query(ctx, repository.TransactionFilter{})
		if err != nil {
			return nil, fmt.Errorf("failed to load all transactions for statistics: %w", err)
		}
	}

	stats := &Statistics{
		Totals:   balance.ComputeTypeTotals(scoped),
		Net:      balance.NetBalance(scoped),
		AllShops: balance.PerShopStats(all),
	}
	if period != nil {
		stats.Period = *period
	}

	return stats, nil
}

func validateTransactionInput(input RecordTransactionInput) error {
	var fields []FieldError

	if input.Date.IsZero() {
		fields = append(fields, FieldError{Field: "date", Message: "date is required"})
	}
	if input.Shop == "" {
		fields = append(fields, FieldError{Field: "shop", Message: "shop must not be empty"})
	}
	if input.ProductName == "" {
		fields = append(fields, FieldError{Field: "product_name", Message: "product name must not be empty"})
	}
	if input.Quantity < 1 {
		fields = append(fields, FieldError{Field: "quantity", Message: "quantity must be at least 1"})
	}
	if input.UnitPrice < 0 {
		fields = append(fields, FieldError{Field: "unit_price", Message: "unit price must not be negative"})
	}
	if !input.Type.Valid() {
		fields = append(fields, FieldError{Field: "transaction_type", Message: "transaction type must be lend or borrow"})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
