package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop-ledger/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for catalog data access
type ProductRepository interface {
	Upsert(ctx context.Context, product *domain.Product) error
	FindBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	Clear(ctx context.Context) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Upsert inserts a product or, when the SKU already exists, replaces its
// name and supply price. The whole operation is a single statement so two
// back-to-back upserts for the same SKU can never leave a duplicate row
// or a half-written one.
func (r *productRepository) Upsert(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, product_name, sku, supply_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (sku) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			supply_price = EXCLUDED.supply_price,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.ProductName,
		product.SKU,
		product.SupplyPrice,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	return nil
}

// FindBySKU retrieves a product by its business key
func (r *productRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `
		SELECT id, product_name, sku, supply_price, created_at, updated_at
		FROM products
		WHERE sku = $1
	`

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, sku).Scan(
		&product.ID,
		&product.ProductName,
		&product.SKU,
		&product.SupplyPrice,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by SKU: %w", err)
	}

	return product, nil
}

// List retrieves the whole catalog ordered by product name ascending
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, product_name, sku, supply_price, created_at, updated_at
		FROM products
		ORDER BY product_name ASC, sku ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.ID,
			&product.ProductName,
			&product.SKU,
			&product.SupplyPrice,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Clear removes every product unconditionally. The confirm-twice guard
// around this lives in the client, not here.
func (r *productRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}

	return nil
}
