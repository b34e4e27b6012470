package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddTransactionRequest records one income or expense entry
type AddTransactionRequest struct {
	Email       string          `json:"email" validate:"required,email"`
	Amount      decimal.Decimal `json:"amount" validate:"positive_amount"`
	Category    string          `json:"category" validate:"category_label"`
	Description string          `json:"description" validate:"max=500"`
	Date        *time.Time      `json:"date"`
	IsIncome    bool            `json:"is_income"`
}

// QuickAddRequest carries a free-text phrase such as "paid 200 for lunch"
type QuickAddRequest struct {
	Email string `json:"email" validate:"required,email"`
	Text  string `json:"text" validate:"required,max=500"`
}

// OverviewResponse holds totals and the expense distribution for a window
type OverviewResponse struct {
	Income          decimal.Decimal            `json:"income"`
	Expenses        decimal.Decimal            `json:"expenses"`
	Balance         decimal.Decimal            `json:"balance"`
	Distribution    map[string]decimal.Decimal `json:"distribution"`
	From            *time.Time                 `json:"from,omitempty"`
	To              *time.Time                 `json:"to,omitempty"`
	Transactions    int                        `json:"transactions"`
	ExcludedRecords int                        `json:"excluded_records"`
}

// SeedResponse reports how many development transactions were generated
type SeedResponse struct {
	Created int `json:"created"`
}
