package ledger

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrParseFailure is wrapped by every *ParseError.
var ErrParseFailure = errors.New("quick-add parse failure")

const (
	CategoryFood          = "Food"
	CategoryTravel        = "Travel"
	CategoryBills         = "Bills"
	CategoryShopping      = "Shopping"
	CategoryEntertainment = "Entertainment"
	CategoryIncome        = "Income"
)

var moneyPattern = regexp.MustCompile(`(₹|\$|€|£)?(\d+(\.\d+)?)`)

// ParseError is returned when a phrase yields no usable transaction.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrParseFailure
}

// CategoryKeywords maps a category to the substrings that select it.
type CategoryKeywords struct {
	Category string
	Keywords []string
}

// Parser extracts an amount, a category and the income flag from short
// phrases like "paid 250 for uber". Categories are tried in order.
type Parser struct {
	Categories      []CategoryKeywords
	IncomeKeywords  []string
	DefaultCategory string
	IncomeCategory  string
	Now             func() time.Time
}

// DefaultCategoryKeywords is the built-in keyword table.
func DefaultCategoryKeywords() []CategoryKeywords {
	return []CategoryKeywords{
		{Category: CategoryFood, Keywords: []string{"food", "swiggy", "zomato", "lunch", "dinner", "breakfast", "burger", "pizza", "restaurant", "cafe", "grocery", "groceries"}},
		{Category: CategoryTravel, Keywords: []string{"travel", "uber", "ola", "taxi", "flight", "train", "bus", "metro", "fuel", "gas", "petrol"}},
		{Category: CategoryBills, Keywords: []string{"bill", "electricity", "water", "rent", "recharge", "wifi", "internet", "mobile", "phone", "subscription", "airtel"}},
		{Category: CategoryShopping, Keywords: []string{"shopping", "amazon", "flipkart", "myntra", "clothes", "shoes", "electronics", "gadgets"}},
		{Category: CategoryEntertainment, Keywords: []string{"entertainment", "netflix", "amazon prime", "hotstar", "movie", "concert", "spotify", "music"}},
	}
}

// NewParser returns a Parser with the built-in table and time.Now.
func NewParser() *Parser {
	return &Parser{
		Categories:      DefaultCategoryKeywords(),
		IncomeKeywords:  []string{"income", "salary", "received", "earned"},
		DefaultCategory: CategoryFood,
		IncomeCategory:  CategoryIncome,
		Now:             time.Now,
	}
}

// Parse turns text into a Transaction dated now. It either returns a record
// that passes Validate or a *ParseError, never a partial record.
func (p *Parser) Parse(text string) (Transaction, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Transaction{}, &ParseError{Input: text, Reason: "empty input"}
	}

	amount, ok := extractAmount(trimmed)
	if !ok || !amount.IsPositive() {
		return Transaction{}, &ParseError{Input: text, Reason: "no amount found"}
	}
	amount = RoundAmount(amount)
	if !amount.IsPositive() {
		return Transaction{}, &ParseError{Input: text, Reason: "amount is below the smallest unit"}
	}

	lowered := strings.ToLower(trimmed)
	isIncome := containsAny(lowered, p.IncomeKeywords)

	category := p.DefaultCategory
	if isIncome {
		category = p.IncomeCategory
	} else if matched, found := p.classify(lowered); found {
		category = matched
	}

	if strings.TrimSpace(category) == "" {
		return Transaction{}, &ParseError{Input: text, Reason: "no category configured"}
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	return Transaction{
		Amount:      amount,
		Category:    category,
		Description: text,
		Date:        now().UTC(),
		IsIncome:    isIncome,
	}, nil
}

func (p *Parser) classify(lowered string) (string, bool) {
	for _, entry := range p.Categories {
		if containsAny(lowered, entry.Keywords) {
			return entry.Category, true
		}
	}
	return "", false
}

func containsAny(lowered string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(lowered, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

func extractAmount(text string) (decimal.Decimal, bool) {
	if match := moneyPattern.FindStringSubmatch(text); match != nil {
		amount, err := decimal.NewFromString(match[2])
		if err == nil {
			return amount, true
		}
	}

	if n, ok := firstNumberWords(text); ok {
		return decimal.NewFromInt(n), true
	}

	return decimal.Zero, false
}
