// Package csvimport turns arbitrary CSV-like product sheets into catalog
// upserts. Column names are not fixed: the importer infers the name, SKU
// and supply-price columns from the header row, accepting both English
// and Korean tokens, then validates each data row independently.
package csvimport

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// HeaderError means a required column could not be located in the header
// row. It is fatal to the whole import: no row is processed.
type HeaderError struct {
	Missing []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("required columns not found: %s", strings.Join(e.Missing, ", "))
}

// Row is the validated intermediate form of one CSV line, projected from
// the loosely-typed cells before it reaches the strict catalog.
type Row struct {
	ProductName string
	SKU         string
	SupplyPrice int64
}

// Summary reports the outcome of a batch import. Rows that failed
// validation or upserting are counted, never propagated.
type Summary struct {
	SuccessCount int `json:"success_count"`
	ErrorCount   int `json:"error_count"`
}

// UpsertFunc persists one accepted row. An error counts the row as
// failed without aborting the rest of the batch.
type UpsertFunc func(ctx context.Context, row Row) error

type columns struct {
	name  int
	sku   int
	price int
}

// Import reads CSV data with a header row, resolves the three required
// columns, and upserts every valid data row. Header resolution failure
// or unreadable input returns an error and performs zero upserts;
// per-row failures only increment the error counter.
func Import(ctx context.Context, r io.Reader, upsert UpsertFunc) (Summary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return Summary{}, fmt.Errorf("CSV input is empty")
	}

	cols, err := resolveColumns(records[0])
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, record := range records[1:] {
		row, ok := parseRow(record, cols)
		if !ok {
			summary.ErrorCount++
			continue
		}
		if err := upsert(ctx, row); err != nil {
			summary.ErrorCount++
			continue
		}
		summary.SuccessCount++
	}

	return summary, nil
}

// resolveColumns scans the header once, left to right. The first header
// matching a target claims it, and each header can claim at most one
// target (name is checked before SKU, SKU before price).
func resolveColumns(header []string) (columns, error) {
	cols := columns{name: -1, sku: -1, price: -1}

	for i, raw := range header {
		h := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case cols.name == -1 && matchesAny(h, "상품명", "product", "name"):
			cols.name = i
		case cols.sku == -1 && matchesAny(h, "sku", "code", "코드"):
			cols.sku = i
		case cols.price == -1 && matchesAny(h, "공급가", "가격", "price", "supply"):
			cols.price = i
		}
	}

	var missing []string
	if cols.name == -1 {
		missing = append(missing, "product name")
	}
	if cols.sku == -1 {
		missing = append(missing, "sku")
	}
	if cols.price == -1 {
		missing = append(missing, "supply price")
	}
	if len(missing) > 0 {
		return cols, &HeaderError{Missing: missing}
	}

	return cols, nil
}

// parseRow projects one record into a Row. A row is accepted only when
// the name and SKU are non-empty and the parsed price is positive.
func parseRow(record []string, cols columns) (Row, bool) {
	name := strings.TrimSpace(cell(record, cols.name))
	sku := strings.TrimSpace(cell(record, cols.sku))

	price, err := parsePrice(cell(record, cols.price))
	if err != nil {
		return Row{}, false
	}
	if name == "" || sku == "" || price <= 0 {
		return Row{}, false
	}

	return Row{ProductName: name, SKU: sku, SupplyPrice: price}, true
}

// parsePrice normalizes a price cell: thousands separators and the 원
// currency suffix are stripped, then the value is parsed as a float and
// truncated to a whole currency unit.
func parsePrice(raw string) (int64, error) {
	s := strings.ReplaceAll(raw, ",", "")
	s = strings.TrimSuffix(strings.TrimSpace(s), "원")
	s = strings.TrimSpace(s)

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func matchesAny(header string, tokens ...string) bool {
	for _, token := range tokens {
		if strings.Contains(header, token) {
			return true
		}
	}
	return false
}
