package repository

import (
	"context"
	"sort"
	"testing"
	"time"

	"shop-ledger/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newCatalogEntry(name, sku string, price int64) *domain.Product {
	now := time.Now()
	return &domain.Product{
		ID:          uuid.New(),
		ProductName: name,
		SKU:         sku,
		SupplyPrice: price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestProperty_UpsertKeepsOneRowPerSKU(t *testing.T) {
	repo := NewProductRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("upserting the same SKU repeatedly leaves one row holding the last values", prop.ForAll(
		func(sku string, firstName string, firstPrice int64, secondName string, secondPrice int64) bool {
			ctx := context.Background()

			// Clean up before each case
			_, _ = testDB.Exec("DELETE FROM products WHERE sku = $1", sku)

			if err := repo.Upsert(ctx, newCatalogEntry(firstName, sku, firstPrice)); err != nil {
				t.Logf("FAIL: first upsert: %v", err)
				return false
			}
			if err := repo.Upsert(ctx, newCatalogEntry(secondName, sku, secondPrice)); err != nil {
				t.Logf("FAIL: second upsert: %v", err)
				return false
			}

			var count int
			if err := testDB.QueryRow("SELECT COUNT(*) FROM products WHERE sku = $1", sku).Scan(&count); err != nil {
				t.Logf("FAIL: count query: %v", err)
				return false
			}
			if count != 1 {
				t.Logf("FAIL: expected 1 row for sku %s, got %d", sku, count)
				return false
			}

			stored, err := repo.FindBySKU(ctx, sku)
			if err != nil {
				t.Logf("FAIL: find by sku: %v", err)
				return false
			}
			if stored.ProductName != secondName || stored.SupplyPrice != secondPrice {
				t.Logf("FAIL: expected last-written values, got %+v", stored)
				return false
			}

			_, _ = testDB.Exec("DELETE FROM products WHERE sku = $1", sku)
			return true
		},
		gen.RegexMatch(`[A-Z0-9]{4,12}`),
		gen.RegexMatch(`[A-Za-z ]{1,30}`),
		gen.Int64Range(0, 1000000),
		gen.RegexMatch(`[A-Za-z ]{1,30}`),
		gen.Int64Range(0, 1000000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductRepository_ListOrderAndClear(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}

	for _, p := range []*domain.Product{
		newCatalogEntry("Mug", "M1", 1000),
		newCatalogEntry("Cup", "C1", 500),
		newCatalogEntry("Plate", "P1", 700),
	} {
		if err := repo.Upsert(ctx, p); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
	}

	products, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}

	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.ProductName)
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("products not sorted by name: %v", names)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}

	products, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("failed to list after clear: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("expected empty catalog after clear, got %d", len(products))
	}

	// Clearing again is still fine.
	if err := repo.Clear(ctx); err != nil {
		t.Errorf("clearing an empty catalog must succeed, got %v", err)
	}
}
