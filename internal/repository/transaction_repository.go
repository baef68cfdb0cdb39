package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop-ledger/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
)

// TransactionFilter narrows a ledger query. Nil fields match everything;
// set fields are combined with AND.
type TransactionFilter struct {
	Period *string
	Shop   *string
	Type   *domain.TransactionType
	Limit  int // 0 means no limit
}

// TransactionRepository defines the interface for ledger data access
type TransactionRepository interface {
	Insert(ctx context.Context, tx *domain.Transaction) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
	Query(ctx context.Context, filter TransactionFilter) ([]*domain.Transaction, error)
}

type transactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new instance of TransactionRepository
func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Insert appends a new transaction to the ledger using parameterized queries.
// The seq column is assigned by the database and read back so the caller
// sees the same recency ordering the Query contract uses.
func (r *transactionRepository) Insert(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, date, shop, product_name, quantity, unit_price, total, transaction_type, period, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		tx.ID,
		tx.Date,
		tx.Shop,
		tx.ProductName,
		tx.Quantity,
		tx.UnitPrice,
		tx.Total,
		tx.Type,
		tx.Period,
		tx.CreatedAt,
	).Scan(&tx.Seq)

	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// DeleteByID removes the transaction with the given id. Deleting an id
// that is absent is not an error: the row is simply already gone.
func (r *transactionRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM transactions WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	return nil
}

// Query retrieves transactions matching all set filter fields, most
// recent first (date descending, insertion order descending on ties).
func (r *transactionRepository) Query(ctx context.Context, filter TransactionFilter) ([]*domain.Transaction, error) {
	query := `
		SELECT id, seq, date, shop, product_name, quantity, unit_price, total, transaction_type, period, created_at
		FROM transactions
		WHERE 1=1
	`

	args := []interface{}{}
	argIndex := 1

	if filter.Period != nil {
		query += fmt.Sprintf(" AND period = $%d", argIndex)
		args = append(args, *filter.Period)
		argIndex++
	}
	if filter.Shop != nil {
		query += fmt.Sprintf(" AND shop = $%d", argIndex)
		args = append(args, *filter.Shop)
		argIndex++
	}
	if filter.Type != nil {
		query += fmt.Sprintf(" AND transaction_type = $%d", argIndex)
		args = append(args, *filter.Type)
		argIndex++
	}

	query += " ORDER BY date DESC, seq DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*domain.Transaction{}
	for rows.Next() {
		tx := &domain.Transaction{}
		err := rows.Scan(
			&tx.ID,
			&tx.Seq,
			&tx.Date,
			&tx.Shop,
			&tx.ProductName,
			&tx.Quantity,
			&tx.UnitPrice,
			&tx.Total,
			&tx.Type,
			&tx.Period,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}
