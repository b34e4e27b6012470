package dto

import (
	"time"

	"expenzy/internal/models"

	"github.com/shopspring/decimal"
)

// CategorySubtotalResponse is one category line of a summary
type CategorySubtotalResponse struct {
	Category    string          `json:"category"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// SummaryResponse is the public view of a persisted summary
type SummaryResponse struct {
	Kind        string                     `json:"kind"`
	PeriodStart time.Time                  `json:"period_start"`
	TotalSpent  decimal.Decimal            `json:"total_spent"`
	Categories  []CategorySubtotalResponse `json:"categories"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// ToSummaryResponse converts a stored summary, keeping category order
func ToSummaryResponse(s *models.Summary) SummaryResponse {
	categories := make([]CategorySubtotalResponse, 0, len(s.Categories))
	for _, c := range s.Subtotals() {
		categories = append(categories, CategorySubtotalResponse{Category: c.Category, TotalAmount: c.TotalAmount})
	}
	return SummaryResponse{
		Kind:        s.Kind,
		PeriodStart: s.PeriodStart,
		TotalSpent:  s.TotalSpent,
		Categories:  categories,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ToSummaryResponses converts a list of stored summaries
func ToSummaryResponses(summaries []models.Summary) []SummaryResponse {
	out := make([]SummaryResponse, 0, len(summaries))
	for i := range summaries {
		out = append(out, ToSummaryResponse(&summaries[i]))
	}
	return out
}
