package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateCategoryTotal is one row of the grouped view.
type DateCategoryTotal struct {
	Date        time.Time       `json:"date"`
	Category    string          `json:"category"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Totals holds income, expenses and the resulting balance of a set of records.
type Totals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// groupKey compares instants, not time.Time values, so the same moment in two
// locations lands in one bucket.
type groupKey struct {
	sec      int64
	nsec     int
	category string
}

// GroupByDateAndCategory sums records sharing the exact same date and category.
// Rows come out in order of first occurrence. Dates are not truncated; use
// NormalizeDays first to group per calendar day.
func GroupByDateAndCategory(txs []Transaction) []DateCategoryTotal {
	index := make(map[groupKey]int)
	grouped := make([]DateCategoryTotal, 0)

	for _, tx := range txs {
		if !isValid(tx) {
			continue
		}

		key := groupKey{sec: tx.Date.Unix(), nsec: tx.Date.Nanosecond(), category: tx.Category}
		if i, ok := index[key]; ok {
			grouped[i].TotalAmount = grouped[i].TotalAmount.Add(tx.Amount)
			continue
		}

		index[key] = len(grouped)
		grouped = append(grouped, DateCategoryTotal{
			Date:        tx.Date,
			Category:    tx.Category,
			TotalAmount: tx.Amount,
		})
	}

	return grouped
}

// CategoryDistribution sums expense amounts per category. Income records are
// left out and categories that total zero are omitted.
func CategoryDistribution(txs []Transaction) map[string]decimal.Decimal {
	distribution := make(map[string]decimal.Decimal)

	for _, tx := range txs {
		if tx.IsIncome || !isValid(tx) {
			continue
		}
		distribution[tx.Category] = distribution[tx.Category].Add(tx.Amount)
	}

	for category, total := range distribution {
		if total.IsZero() {
			delete(distribution, category)
		}
	}

	return distribution
}

// ComputeTotals sums income and expenses over txs. No time window is applied:
// callers pass an already filtered slice.
func ComputeTotals(txs []Transaction) Totals {
	income := decimal.Zero
	expenses := decimal.Zero

	for _, tx := range txs {
		if !isValid(tx) {
			continue
		}
		if tx.IsIncome {
			income = income.Add(tx.Amount)
		} else {
			expenses = expenses.Add(tx.Amount)
		}
	}

	return Totals{
		Income:   income,
		Expenses: expenses,
		Balance:  income.Sub(expenses),
	}
}

// DayOf truncates t to midnight in its own location.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NormalizeDays returns a copy of txs with every date truncated by DayOf.
func NormalizeDays(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	for i, tx := range txs {
		tx.Date = DayOf(tx.Date)
		out[i] = tx
	}
	return out
}

// Window keeps the records with from <= date < to. A zero bound is open.
func Window(txs []Transaction, from, to time.Time) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if !from.IsZero() && tx.Date.Before(from) {
			continue
		}
		if !to.IsZero() && !tx.Date.Before(to) {
			continue
		}
		out = append(out, tx)
	}
	return out
}
