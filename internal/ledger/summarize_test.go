package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-03-11 is a Monday.
var monday = time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)

func TestSummarizeWeek_WindowIsHalfOpen(t *testing.T) {
	txs := []Transaction{
		tx(100, "Food", false, monday),
		tx(50, "Food", false, monday.AddDate(0, 0, 7)),
		tx(30, "Travel", false, monday.Add(-time.Second)),
		tx(20, "Travel", false, monday.AddDate(0, 0, 7).Add(-time.Nanosecond)),
	}

	summary, err := SummarizeWeek(txs, monday)
	require.NoError(t, err)

	assert.True(t, summary.TotalSpent.Equal(decimal.NewFromInt(120)))
	require.Len(t, summary.Categories, 2)
	assert.Equal(t, "Food", summary.Categories[0].Category)
	assert.True(t, summary.Categories[0].TotalAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "Travel", summary.Categories[1].Category)
	assert.True(t, summary.Categories[1].TotalAmount.Equal(decimal.NewFromInt(20)))
	assert.True(t, summary.WeekStart.Equal(monday))
}

func TestSummarizeWeek_ExcludesIncome(t *testing.T) {
	txs := []Transaction{
		tx(500, "Food", false, monday.Add(10*time.Hour)),
		tx(5000, "Income", true, monday.Add(11*time.Hour)),
		tx(300, "Food", true, monday.Add(12*time.Hour)),
	}

	summary, err := SummarizeWeek(txs, monday)
	require.NoError(t, err)

	assert.True(t, summary.TotalSpent.Equal(decimal.NewFromInt(500)))
	require.Len(t, summary.Categories, 1)
	assert.Equal(t, "Food", summary.Categories[0].Category)
	assert.True(t, summary.Categories[0].TotalAmount.Equal(decimal.NewFromInt(500)))

	totals := ComputeTotals(txs)
	assert.True(t, totals.Income.Equal(decimal.NewFromInt(5300)))
}

func TestSummarizeWeek_TotalMatchesCategoriesAndSortsThem(t *testing.T) {
	txs := []Transaction{
		tx(40, "Shopping", false, monday.Add(time.Hour)),
		tx(15, "Bills", false, monday.Add(2*time.Hour)),
		tx(25, "Entertainment", false, monday.Add(3*time.Hour)),
		tx(10, "Bills", false, monday.AddDate(0, 0, 3)),
		{Category: "Food", Date: monday.Add(time.Hour)},
	}

	summary, err := SummarizeWeek(txs, monday)
	require.NoError(t, err)

	sum := decimal.Zero
	names := make([]string, 0, len(summary.Categories))
	for _, c := range summary.Categories {
		sum = sum.Add(c.TotalAmount)
		names = append(names, c.Category)
	}
	assert.True(t, summary.TotalSpent.Equal(sum))
	assert.Equal(t, []string{"Bills", "Entertainment", "Shopping"}, names)
}

func TestSummarizeWeek_Idempotent(t *testing.T) {
	txs := []Transaction{
		tx(40, "Shopping", false, monday.Add(time.Hour)),
		tx(15, "Bills", false, monday.Add(2*time.Hour)),
		tx(25, "Food", false, monday.Add(3*time.Hour)),
	}

	first, err := SummarizeWeek(txs, monday)
	require.NoError(t, err)
	second, err := SummarizeWeek(txs, monday)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	reversed := []Transaction{txs[2], txs[1], txs[0]}
	third, err := SummarizeWeek(reversed, monday)
	require.NoError(t, err)
	assert.Equal(t, first.Categories, third.Categories)
}

func TestSummarizeWeek_EmptyWindow(t *testing.T) {
	summary, err := SummarizeWeek(nil, monday)
	require.NoError(t, err)

	assert.True(t, summary.TotalSpent.IsZero())
	assert.NotNil(t, summary.Categories)
	assert.Empty(t, summary.Categories)
}

func TestSummarizeWeek_RejectsMisalignedStart(t *testing.T) {
	cases := map[string]time.Time{
		"tuesday":      monday.AddDate(0, 0, 1),
		"not midnight": monday.Add(time.Hour),
		"one nanosec":  monday.Add(time.Nanosecond),
	}

	for name, start := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := SummarizeWeek(nil, start)
			assert.ErrorIs(t, err, ErrInvalidBoundary)
		})
	}
}

func TestSummarizer_CustomWeekStart(t *testing.T) {
	sunday := monday.AddDate(0, 0, -1)
	s := NewSummarizer(time.Sunday)

	_, err := s.SummarizeWeek(nil, sunday)
	assert.NoError(t, err)

	_, err = s.SummarizeWeek(nil, monday)
	assert.ErrorIs(t, err, ErrInvalidBoundary)

	assert.True(t, s.WeekStart(monday.Add(30*time.Hour)).Equal(sunday))
}

func TestSummarizer_WeekStartNormalizes(t *testing.T) {
	s := NewSummarizer(time.Monday)

	assert.True(t, s.WeekStart(monday).Equal(monday))
	assert.True(t, s.WeekStart(monday.AddDate(0, 0, 6).Add(23*time.Hour)).Equal(monday))
	assert.True(t, s.WeekStart(monday.AddDate(0, 0, 7)).Equal(monday.AddDate(0, 0, 7)))
}

func TestSummarizeMonth_HandlesMonthLength(t *testing.T) {
	feb := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx(10, "Food", false, feb),
		tx(20, "Food", false, time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC)),
		tx(40, "Food", false, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)),
		tx(80, "Food", false, feb.Add(-time.Second)),
	}

	summary, err := SummarizeMonth(txs, feb)
	require.NoError(t, err)

	assert.True(t, summary.TotalSpent.Equal(decimal.NewFromInt(30)))
	assert.True(t, summary.MonthStart.Equal(feb))
}

func TestSummarizeMonth_RejectsMisalignedStart(t *testing.T) {
	_, err := SummarizeMonth(nil, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrInvalidBoundary)

	_, err = SummarizeMonth(nil, time.Date(2024, time.March, 1, 6, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrInvalidBoundary)
}

func TestMonthStart(t *testing.T) {
	got := MonthStart(time.Date(2024, time.December, 31, 18, 4, 0, 0, time.UTC))
	assert.True(t, got.Equal(time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)))
}
