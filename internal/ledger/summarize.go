package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidBoundary is returned when a period start is not the first instant
// of its week or month.
var ErrInvalidBoundary = errors.New("invalid period boundary")

const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// CategorySubtotal is the spending of one category inside a summary window.
type CategorySubtotal struct {
	Category    string          `json:"category"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type WeeklySummary struct {
	WeekStart  time.Time          `json:"week_start"`
	TotalSpent decimal.Decimal    `json:"total_spent"`
	Categories []CategorySubtotal `json:"categories"`
}

type MonthlySummary struct {
	MonthStart time.Time          `json:"month_start"`
	TotalSpent decimal.Decimal    `json:"total_spent"`
	Categories []CategorySubtotal `json:"categories"`
}

// Summarizer rolls a log into weekly and monthly spending summaries.
type Summarizer struct {
	WeekStartsOn time.Weekday
}

// NewSummarizer returns a Summarizer whose weeks begin on weekStartsOn.
func NewSummarizer(weekStartsOn time.Weekday) Summarizer {
	return Summarizer{WeekStartsOn: weekStartsOn}
}

var defaultSummarizer = NewSummarizer(time.Monday)

// SummarizeWeek summarizes with Monday-based weeks.
func SummarizeWeek(txs []Transaction, weekStart time.Time) (WeeklySummary, error) {
	return defaultSummarizer.SummarizeWeek(txs, weekStart)
}

// SummarizeMonth summarizes the calendar month beginning at monthStart.
func SummarizeMonth(txs []Transaction, monthStart time.Time) (MonthlySummary, error) {
	return defaultSummarizer.SummarizeMonth(txs, monthStart)
}

// SummarizeWeek totals the expenses dated in [weekStart, weekStart+7 days).
// weekStart must be midnight of the configured first weekday.
func (s Summarizer) SummarizeWeek(txs []Transaction, weekStart time.Time) (WeeklySummary, error) {
	if !isMidnight(weekStart) || weekStart.Weekday() != s.WeekStartsOn {
		return WeeklySummary{}, fmt.Errorf("%w: week start %s is not midnight on %s",
			ErrInvalidBoundary, weekStart.Format(time.RFC3339), s.WeekStartsOn)
	}

	total, categories := subtotals(txs, weekStart, weekStart.AddDate(0, 0, 7))

	return WeeklySummary{
		WeekStart:  weekStart,
		TotalSpent: total,
		Categories: categories,
	}, nil
}

// SummarizeMonth totals the expenses dated inside the calendar month that
// starts at monthStart.
func (s Summarizer) SummarizeMonth(txs []Transaction, monthStart time.Time) (MonthlySummary, error) {
	if !isMidnight(monthStart) || monthStart.Day() != 1 {
		return MonthlySummary{}, fmt.Errorf("%w: month start %s is not midnight on day 1",
			ErrInvalidBoundary, monthStart.Format(time.RFC3339))
	}

	total, categories := subtotals(txs, monthStart, monthStart.AddDate(0, 1, 0))

	return MonthlySummary{
		MonthStart: monthStart,
		TotalSpent: total,
		Categories: categories,
	}, nil
}

// WeekStart returns midnight of the first day of the week containing t.
func (s Summarizer) WeekStart(t time.Time) time.Time {
	day := DayOf(t)
	offset := (int(day.Weekday()) - int(s.WeekStartsOn) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// MonthStart returns midnight of the first day of the month containing t.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

// subtotals sums expenses in [start, end) per category. The total is the sum
// of the subtotals so the two can never disagree.
func subtotals(txs []Transaction, start, end time.Time) (decimal.Decimal, []CategorySubtotal) {
	byCategory := make(map[string]decimal.Decimal)

	for _, tx := range txs {
		if tx.IsIncome || !isValid(tx) {
			continue
		}
		if tx.Date.Before(start) || !tx.Date.Before(end) {
			continue
		}
		byCategory[tx.Category] = byCategory[tx.Category].Add(tx.Amount)
	}

	categories := make([]CategorySubtotal, 0, len(byCategory))
	for category, amount := range byCategory {
		categories = append(categories, CategorySubtotal{Category: category, TotalAmount: amount})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Category < categories[j].Category
	})

	total := decimal.Zero
	for _, c := range categories {
		total = total.Add(c.TotalAmount)
	}

	return total, categories
}
