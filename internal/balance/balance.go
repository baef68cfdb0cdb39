// Package balance computes settlement figures from raw ledger rows.
//
// Every function here is pure: it derives its result from the
// transactions it is handed and keeps no state, so results can be
// recomputed from the ledger at any time.
package balance

import (
	"sort"

	"shop-ledger/internal/domain"
)

// ShopBalance pairs a counterparty with its signed net balance.
type ShopBalance struct {
	Shop    string `json:"shop"`
	Balance int64  `json:"balance"`
}

// TypeTotals holds gross (unsigned) volume per transaction type.
type TypeTotals struct {
	LendTotal   int64 `json:"lend_total"`
	BorrowTotal int64 `json:"borrow_total"`
	LendCount   int   `json:"lend_count"`
	BorrowCount int   `json:"borrow_count"`
}

// ShopStats accumulates all-time gross and net figures for one shop.
type ShopStats struct {
	Shop        string `json:"shop"`
	LendTotal   int64  `json:"lend_total"`
	BorrowTotal int64  `json:"borrow_total"`
	Net         int64  `json:"net"`
}

// SignedAmount is the foundational sign convention: lending out is a
// receivable (positive), borrowing is a payable (negative).
func SignedAmount(tx *domain.Transaction) int64 {
	if tx.Type == domain.TypeLend {
		return tx.Total
	}
	return -tx.Total
}

// NetBalance sums SignedAmount over the given transactions.
func NetBalance(transactions []*domain.Transaction) int64 {
	var net int64
	for _, tx := range transactions {
		net += SignedAmount(tx)
	}
	return net
}

// PerShopBalances groups transactions by counterparty and nets each
// group. The sum of all values equals NetBalance of the full set.
func PerShopBalances(transactions []*domain.Transaction) map[string]int64 {
	balances := make(map[string]int64)
	for _, tx := range transactions {
		balances[tx.Shop] += SignedAmount(tx)
	}
	return balances
}

// ComputeTypeTotals sums gross totals and counts per transaction type.
// Gross volume is unsigned, distinct from the net balance.
func ComputeTypeTotals(transactions []*domain.Transaction) TypeTotals {
	var totals TypeTotals
	for _, tx := range transactions {
		if tx.Type == domain.TypeLend {
			totals.LendTotal += tx.Total
			totals.LendCount++
		} else {
			totals.BorrowTotal += tx.Total
			totals.BorrowCount++
		}
	}
	return totals
}

// RankedShopBalances returns per-shop balances ordered by absolute value
// descending, so the largest exposure comes first whether it is a
// receivable or a payable. Ties are broken by shop name ascending to
// keep the output deterministic.
func RankedShopBalances(transactions []*domain.Transaction) []ShopBalance {
	balances := PerShopBalances(transactions)

	ranked := make([]ShopBalance, 0, len(balances))
	for shop, bal := range balances {
		ranked = append(ranked, ShopBalance{Shop: shop, Balance: bal})
	}

	sort.Slice(ranked, func(i, j int) bool {
		ai, aj := abs(ranked[i].Balance), abs(ranked[j].Balance)
		if ai != aj {
			return ai > aj
		}
		return ranked[i].Shop < ranked[j].Shop
	})

	return ranked
}

// PerShopStats accumulates lend/borrow/net figures per shop, ordered by
// shop name ascending.
func PerShopStats(transactions []*domain.Transaction) []ShopStats {
	byShop := make(map[string]*ShopStats)
	for _, tx := range transactions {
		stats, ok := byShop[tx.Shop]
		if !ok {
			stats = &ShopStats{Shop: tx.Shop}
			byShop[tx.Shop] = stats
		}
		if tx.Type == domain.TypeLend {
			stats.LendTotal += tx.Total
			stats.Net += tx.Total
		} else {
			stats.BorrowTotal += tx.Total
			stats.Net -= tx.Total
		}
	}

	out := make([]ShopStats, 0, len(byShop))
	for _, stats := range byShop {
		out = append(out, *stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Shop < out[j].Shop })

	return out
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
