package services

import (
	"testing"
	"time"

	"expenzy/internal/ledger"

	"github.com/stretchr/testify/suite"
)

type TransactionGeneratorTestSuite struct {
	suite.Suite
	generator *transactionGenerator
	start     time.Time
	end       time.Time
}

func TestTransactionGeneratorSuite(t *testing.T) {
	suite.Run(t, new(TransactionGeneratorTestSuite))
}

func (s *TransactionGeneratorTestSuite) SetupTest() {
	s.generator = NewSeededTransactionGenerator(42).(*transactionGenerator)
	s.start = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	s.end = s.start.AddDate(0, 1, 0)
}

func (s *TransactionGeneratorTestSuite) TestGenerate_CountAndRange() {
	txs := s.generator.Generate(50, s.start, s.end)

	s.Len(txs, 50)
	for _, tx := range txs {
		s.False(tx.Date.Before(s.start))
		s.True(tx.Date.Before(s.end))
	}
}

func (s *TransactionGeneratorTestSuite) TestGenerate_OrderedByDate() {
	txs := s.generator.Generate(40, s.start, s.end)

	for i := 1; i < len(txs); i++ {
		s.False(txs[i].Date.Before(txs[i-1].Date), "record %d is out of order", i)
	}
}

func (s *TransactionGeneratorTestSuite) TestGenerate_RecordsAreAggregatable() {
	txs := s.generator.Generate(64, s.start, s.end)

	valid, rejected := ledger.Partition(txs)

	s.Len(valid, 64)
	s.Empty(rejected)
}

func (s *TransactionGeneratorTestSuite) TestGenerate_IncludesSalaryCredits() {
	txs := s.generator.Generate(16, s.start, s.end)

	income := 0
	for _, tx := range txs {
		if tx.IsIncome {
			income++
			s.Equal(ledger.CategoryIncome, tx.Category)
		}
	}
	s.Equal(2, income)
}

func (s *TransactionGeneratorTestSuite) TestGenerate_DescriptionsClassifyToTheirCategory() {
	parser := ledger.NewParser()

	for _, tx := range s.generator.Generate(100, s.start, s.end) {
		parsed, err := parser.Parse(tx.Description)
		s.Require().NoError(err, tx.Description)
		s.Equal(tx.Category, parsed.Category, tx.Description)
		s.Equal(tx.IsIncome, parsed.IsIncome, tx.Description)
	}
}

func (s *TransactionGeneratorTestSuite) TestGenerate_EmptyInputs() {
	s.Empty(s.generator.Generate(0, s.start, s.end))
	s.Empty(s.generator.Generate(5, s.end, s.start))
}

func (s *TransactionGeneratorTestSuite) TestMerchantPool_CoversEveryExpenseCategory() {
	categories := make(map[string]bool)
	for _, merchant := range s.generator.merchantPool {
		categories[merchant.Category] = true
	}

	for _, c := range ledger.DefaultCategoryKeywords() {
		s.True(categories[c.Category], "no merchant for %s", c.Category)
	}
}
