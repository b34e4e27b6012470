package models

import (
	"errors"
	"time"

	"expenzy/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	SummaryKindWeekly  = ledger.PeriodWeekly
	SummaryKindMonthly = ledger.PeriodMonthly
)

var ErrInvalidSummaryKind = errors.New("invalid summary kind")

// Summary is a persisted weekly or monthly spending rollup. A user has at
// most one summary per kind and period start.
type Summary struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_summaries_period,priority:1" json:"user_id"`
	Kind        string            `gorm:"type:varchar(10);not null;uniqueIndex:idx_summaries_period,priority:2" json:"kind"`
	PeriodStart time.Time         `gorm:"not null;uniqueIndex:idx_summaries_period,priority:3" json:"period_start"`
	TotalSpent  decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"total_spent"`
	Categories  []SummaryCategory `gorm:"foreignKey:SummaryID;constraint:OnDelete:CASCADE" json:"categories"`
	UpdatedAt   time.Time         `gorm:"not null" json:"updated_at"`
}

// SummaryCategory is one per-category subtotal of a Summary.
type SummaryCategory struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"-"`
	SummaryID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Category    string          `gorm:"type:varchar(50);not null" json:"category"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	Position    int             `gorm:"not null" json:"-"`
}

func (s *Summary) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	return s.Validate()
}

func (c *SummaryCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (s *Summary) Validate() error {
	if !IsValidSummaryKind(s.Kind) {
		return ErrInvalidSummaryKind
	}
	if s.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}
	return nil
}

func (s *Summary) TableName() string {
	return "summaries"
}

func (c *SummaryCategory) TableName() string {
	return "summary_categories"
}

func IsValidSummaryKind(kind string) bool {
	return kind == SummaryKindWeekly || kind == SummaryKindMonthly
}

// NewWeeklySummary converts a computed weekly rollup into its persisted form.
func NewWeeklySummary(userID uuid.UUID, w ledger.WeeklySummary) *Summary {
	return newSummary(userID, SummaryKindWeekly, w.WeekStart, w.TotalSpent, w.Categories)
}

// NewMonthlySummary converts a computed monthly rollup into its persisted form.
func NewMonthlySummary(userID uuid.UUID, m ledger.MonthlySummary) *Summary {
	return newSummary(userID, SummaryKindMonthly, m.MonthStart, m.TotalSpent, m.Categories)
}

func newSummary(userID uuid.UUID, kind string, start time.Time, total decimal.Decimal, subtotals []ledger.CategorySubtotal) *Summary {
	categories := make([]SummaryCategory, 0, len(subtotals))
	for i, c := range subtotals {
		categories = append(categories, SummaryCategory{
			Category:    c.Category,
			TotalAmount: c.TotalAmount,
			Position:    i,
		})
	}

	return &Summary{
		UserID:      userID,
		Kind:        kind,
		PeriodStart: start.UTC(),
		TotalSpent:  total,
		Categories:  categories,
	}
}

// Subtotals returns the categories in stored order as ledger subtotals.
func (s *Summary) Subtotals() []ledger.CategorySubtotal {
	out := make([]ledger.CategorySubtotal, 0, len(s.Categories))
	for _, c := range s.Categories {
		out = append(out, ledger.CategorySubtotal{Category: c.Category, TotalAmount: c.TotalAmount})
	}
	return out
}
