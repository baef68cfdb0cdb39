package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"shop-ledger/internal/csvimport"
	"shop-ledger/internal/domain"
	"shop-ledger/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpsertProductInput carries the fields for a manual catalog upsert.
type UpsertProductInput struct {
	ProductName string
	SKU         string
	SupplyPrice int64
}

// CatalogService defines the interface for product catalog business logic
type CatalogService interface {
	UpsertProduct(ctx context.Context, input UpsertProductInput) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	ClearProducts(ctx context.Context) error
	ImportProductsCSV(ctx context.Context, r io.Reader) (csvimport.Summary, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, logger *zap.Logger) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// UpsertProduct validates the input and performs the atomic
// insert-or-replace keyed on SKU. On success the stored row is returned.
func (s *catalogService) UpsertProduct(ctx context.Context, input UpsertProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		ProductName: input.ProductName,
		SKU:         input.SKU,
		SupplyPrice: input.SupplyPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Upsert(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to upsert product: %w", err)
	}

	// The upsert may have kept an existing row's id; read the stored row
	// back so the caller sees what the catalog actually holds.
	stored, err := s.productRepo.FindBySKU(ctx, input.SKU)
	if err != nil {
		return nil, fmt.Errorf("failed to load upserted product: %w", err)
	}

	return stored, nil
}

// ListProducts returns the catalog ordered by product name ascending.
func (s *catalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ClearProducts removes the whole catalog. Callers are expected to have
// confirmed the action; the catalog executes it unconditionally.
func (s *catalogService) ClearProducts(ctx context.Context) error {
	if err := s.productRepo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}
	s.logger.Info("Product catalog cleared")
	return nil
}

// ImportProductsCSV runs the heuristic CSV importer, upserting one
// product per accepted row. A row whose upsert fails is counted as an
// error without aborting the rest of the batch.
func (s *catalogService) ImportProductsCSV(ctx context.Context, r io.Reader) (csvimport.Summary, error) {
	summary, err := csvimport.Import(ctx, r, func(ctx context.Context, row csvimport.Row) error {
		now := time.Now()
		return s.productRepo.Upsert(ctx, &domain.Product{
			ID:          uuid.New(),
			ProductName: row.ProductName,
			SKU:         row.SKU,
			SupplyPrice: row.SupplyPrice,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	})
	if err != nil {
		return csvimport.Summary{}, err
	}

	s.logger.Info("CSV product import finished",
		zap.Int("success_count", summary.SuccessCount),
		zap.Int("error_count", summary.ErrorCount),
	)

	return summary, nil
}

func validateProductInput(input UpsertProductInput) error {
	var fields []FieldError

	if input.SKU == "" {
		fields = append(fields, FieldError{Field: "sku", Message: "sku must not be empty"})
	}
	if input.SupplyPrice < 0 {
		fields = append(fields, FieldError{Field: "supply_price", Message: "supply price must not be negative"})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
