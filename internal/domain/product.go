package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry keyed by its SKU. The SKU is the business
// key: there is at most one product per SKU, and upserts replace the
// name and supply price of an existing row rather than duplicating it.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ProductName string    `json:"product_name" db:"product_name"`
	SKU         string    `json:"sku" db:"sku"`
	SupplyPrice int64     `json:"supply_price" db:"supply_price"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
