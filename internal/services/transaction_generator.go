package services

import (
	"fmt"
	"sort"
	"time"

	"expenzy/internal/ledger"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

// merchantInfo is a payee whose name contains a quick-add keyword, so the
// generated description classifies into the same category it was given.
type merchantInfo struct {
	Name     string
	Category string
}

type amountRange struct {
	min float64
	max float64
}

type transactionGenerator struct {
	merchantPool []merchantInfo
	amounts      map[string]amountRange
	faker        *gofakeit.Faker
}

// incomeEvery controls how often a generated record is a salary credit.
const incomeEvery = 8

// NewTransactionGenerator creates a generator seeded from the clock
func NewTransactionGenerator() TransactionGeneratorInterface {
	return NewSeededTransactionGenerator(0)
}

// NewSeededTransactionGenerator returns a generator with a fixed seed. A zero
// seed means random.
func NewSeededTransactionGenerator(seed uint64) TransactionGeneratorInterface {
	return &transactionGenerator{
		merchantPool: initializeMerchantPool(),
		amounts: map[string]amountRange{
			ledger.CategoryFood:          {min: 80, max: 1200},
			ledger.CategoryTravel:        {min: 40, max: 6000},
			ledger.CategoryBills:         {min: 199, max: 4500},
			ledger.CategoryShopping:      {min: 250, max: 9000},
			ledger.CategoryEntertainment: {min: 99, max: 1500},
			ledger.CategoryIncome:        {min: 25000, max: 120000},
		},
		faker: gofakeit.New(seed),
	}
}

func initializeMerchantPool() []merchantInfo {
	return []merchantInfo{
		{"Swiggy", ledger.CategoryFood},
		{"Zomato", ledger.CategoryFood},
		{"Corner Cafe", ledger.CategoryFood},
		{"Pizza Express", ledger.CategoryFood},
		{"Weekly groceries", ledger.CategoryFood},
		{"Office lunch", ledger.CategoryFood},
		{"Uber", ledger.CategoryTravel},
		{"Ola", ledger.CategoryTravel},
		{"Metro card top-up", ledger.CategoryTravel},
		{"Petrol pump", ledger.CategoryTravel},
		{"Train tickets", ledger.CategoryTravel},
		{"Electricity bill", ledger.CategoryBills},
		{"Airtel recharge", ledger.CategoryBills},
		{"Home wifi", ledger.CategoryBills},
		{"Monthly rent", ledger.CategoryBills},
		{"Amazon", ledger.CategoryShopping},
		{"Flipkart", ledger.CategoryShopping},
		{"Myntra", ledger.CategoryShopping},
		{"New shoes", ledger.CategoryShopping},
		{"Netflix", ledger.CategoryEntertainment},
		{"Spotify", ledger.CategoryEntertainment},
		{"Movie night", ledger.CategoryEntertainment},
		{"Concert tickets", ledger.CategoryEntertainment},
	}
}

// Generate returns count records dated in [start, end), ordered by date.
func (g *transactionGenerator) Generate(count int, start, end time.Time) []ledger.Transaction {
	if count <= 0 || !end.After(start) {
		return []ledger.Transaction{}
	}

	txs := make([]ledger.Transaction, 0, count)
	for i := 0; i < count; i++ {
		date := g.timestamp(start, end)
		if i%incomeEvery == incomeEvery-1 {
			txs = append(txs, g.salary(date))
			continue
		}
		txs = append(txs, g.purchase(date))
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})

	return txs
}

func (g *transactionGenerator) purchase(date time.Time) ledger.Transaction {
	merchant := g.merchantPool[g.faker.IntRange(0, len(g.merchantPool)-1)]
	amount := g.amount(merchant.Category)

	return ledger.Transaction{
		Amount:      amount,
		Category:    merchant.Category,
		Description: fmt.Sprintf("%s %s", merchant.Name, amount.StringFixed(0)),
		Date:        date,
	}
}

func (g *transactionGenerator) salary(date time.Time) ledger.Transaction {
	amount := g.amount(ledger.CategoryIncome)

	return ledger.Transaction{
		Amount:      amount,
		Category:    ledger.CategoryIncome,
		Description: fmt.Sprintf("Salary received %s from %s", amount.StringFixed(0), g.faker.Company()),
		Date:        date,
		IsIncome:    true,
	}
}

func (g *transactionGenerator) amount(category string) decimal.Decimal {
	r, ok := g.amounts[category]
	if !ok {
		r = amountRange{min: 1, max: 1000}
	}
	return decimal.NewFromFloat(g.faker.Float64Range(r.min, r.max)).Round(2)
}

// timestamp picks a moment in [start, end) truncated to the minute.
func (g *transactionGenerator) timestamp(start, end time.Time) time.Time {
	span := end.Sub(start) / time.Minute
	if span <= 0 {
		return start.UTC()
	}
	offset := time.Duration(g.faker.IntRange(0, int(span)-1)) * time.Minute
	return start.Add(offset).UTC()
}
