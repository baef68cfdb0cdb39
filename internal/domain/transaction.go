package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType distinguishes the direction of an inter-shop movement.
type TransactionType string

const (
	// TypeLend means this shop gave inventory to the counterparty (receivable).
	TypeLend TransactionType = "lend"
	// TypeBorrow means this shop received inventory from the counterparty (payable).
	TypeBorrow TransactionType = "borrow"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TypeLend || t == TypeBorrow
}

// Transaction is a single lending movement against a counterparty shop.
// Total is always quantity * unit price, and Period is the YYYY-MM bucket
// derived from Date. Transactions are never mutated after creation.
type Transaction struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Seq         int64           `json:"-" db:"seq"`
	Date        time.Time       `json:"date" db:"date"`
	Shop        string          `json:"shop" db:"shop"`
	ProductName string          `json:"product_name" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   int64           `json:"unit_price" db:"unit_price"`
	Total       int64           `json:"total" db:"total"`
	Type        TransactionType `json:"transaction_type" db:"transaction_type"`
	Period      string          `json:"period" db:"period"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// PeriodOf derives the YYYY-MM grouping key for a date.
func PeriodOf(date time.Time) string {
	return date.Format("2006-01")
}
