package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ParserTestSuite struct {
	suite.Suite
	parser *Parser
	now    time.Time
}

func TestParserSuite(t *testing.T) {
	suite.Run(t, new(ParserTestSuite))
}

func (s *ParserTestSuite) SetupTest() {
	s.now = time.Date(2024, time.May, 4, 13, 30, 0, 0, time.UTC)
	s.parser = NewParser()
	s.parser.Now = func() time.Time { return s.now }
}

func (s *ParserTestSuite) TestParse_ExpenseWithKeyword() {
	text := "I paid 200 to Swiggy for lunch"

	got, err := s.parser.Parse(text)

	s.Require().NoError(err)
	s.True(got.Amount.Equal(decimal.NewFromInt(200)))
	s.Equal(CategoryFood, got.Category)
	s.False(got.IsIncome)
	s.Equal(text, got.Description)
	s.True(got.Date.Equal(s.now))
	s.NoError(Validate(got))
}

func (s *ParserTestSuite) TestParse_Income() {
	got, err := s.parser.Parse("Received 5000 from freelance work")

	s.Require().NoError(err)
	s.True(got.Amount.Equal(decimal.NewFromInt(5000)))
	s.True(got.IsIncome)
	s.Equal(CategoryIncome, got.Category)
}

func (s *ParserTestSuite) TestParse_Categories() {
	testCases := []struct {
		text     string
		category string
		amount   string
	}{
		{"uber to office 349", CategoryTravel, "349"},
		{"paid ₹1200.50 electricity", CategoryBills, "1200.5"},
		{"$45 shoes", CategoryShopping, "45"},
		{"netflix £9.99", CategoryEntertainment, "9.99"},
		{"€15 something odd", CategoryFood, "15"},
		{"Salary credited 90000", CategoryIncome, "90000"},
	}

	for _, tc := range testCases {
		s.Run(tc.text, func() {
			got, err := s.parser.Parse(tc.text)
			s.Require().NoError(err)
			s.Equal(tc.category, got.Category)
			s.Equal(tc.amount, got.Amount.String())
		})
	}
}

func (s *ParserTestSuite) TestParse_RoundsToStoredPrecision() {
	got, err := s.parser.Parse("coffee 12.345")

	s.Require().NoError(err)
	s.Equal("12.35", got.Amount.String())
}

func (s *ParserTestSuite) TestParse_SubCentAmountIsRejected() {
	got, err := s.parser.Parse("tea 0.001")

	var parseErr *ParseError
	s.Require().ErrorAs(err, &parseErr)
	s.Equal("amount is below the smallest unit", parseErr.Reason)
	s.ErrorIs(err, ErrParseFailure)
	s.Equal(Transaction{}, got)
}

func (s *ParserTestSuite) TestParse_FirstCategoryInTableWins() {
	got, err := s.parser.Parse("amazon prime 1499")

	s.Require().NoError(err)
	s.Equal(CategoryShopping, got.Category)
}

func (s *ParserTestSuite) TestParse_FirstNumberWins() {
	got, err := s.parser.Parse("2 pizzas for 800")

	s.Require().NoError(err)
	s.Equal("2", got.Amount.String())
}

func (s *ParserTestSuite) TestParse_NumberWordFallback() {
	testCases := map[string]int64{
		"spent twenty on coffee":                   20,
		"two hundred and fifty for dinner":         250,
		"metro card twenty-five":                   25,
		"rent of twelve thousand five hundred":     12500,
		"got three lakh bonus income":              300000,
	}

	for text, want := range testCases {
		s.Run(text, func() {
			got, err := s.parser.Parse(text)
			s.Require().NoError(err)
			s.True(got.Amount.Equal(decimal.NewFromInt(want)), "got %s", got.Amount)
		})
	}
}

func (s *ParserTestSuite) TestParse_OversizedNumberWordsAreRejected() {
	for _, text := range []string{
		"nine hundred hundred hundred hundred hundred hundred hundred hundred hundred hundred",
		"twenty hundred hundred billion for a yacht",
		"ninety nine hundred billion and ninety nine hundred billion",
	} {
		s.Run(text, func() {
			got, err := s.parser.Parse(text)

			var parseErr *ParseError
			s.Require().ErrorAs(err, &parseErr)
			s.Equal("no amount found", parseErr.Reason)
			s.Equal(Transaction{}, got)
		})
	}
}

func (s *ParserTestSuite) TestFirstNumberWords_Bounds() {
	got, ok := firstNumberWords("ninety nine hundred ninety nine billion")
	s.True(ok)
	s.Equal(int64(9_999_000_000_000), got)

	_, ok = firstNumberWords("twenty hundred hundred billion")
	s.False(ok)

	_, ok = firstNumberWords("nine hundred hundred hundred hundred hundred hundred hundred")
	s.False(ok)
}

func (s *ParserTestSuite) TestParse_NoAmount() {
	for _, text := range []string{"lunch with friends", "paid 0 for parking", "zero bus", "   "} {
		s.Run(text, func() {
			got, err := s.parser.Parse(text)

			s.Error(err)
			s.True(errors.Is(err, ErrParseFailure))
			var parseErr *ParseError
			s.Require().True(errors.As(err, &parseErr))
			s.Equal(text, parseErr.Input)
			s.Equal(Transaction{}, got)
		})
	}
}

func (s *ParserTestSuite) TestParse_NoAmountReason() {
	_, err := s.parser.Parse("lunch with friends")

	var parseErr *ParseError
	s.Require().True(errors.As(err, &parseErr))
	s.Equal("no amount found", parseErr.Reason)
}

func (s *ParserTestSuite) TestParse_InjectedTable() {
	s.parser.Categories = []CategoryKeywords{
		{Category: "Pets", Keywords: []string{"vet", "kibble"}},
	}
	s.parser.DefaultCategory = "Misc"

	got, err := s.parser.Parse("Kibble 30")
	s.Require().NoError(err)
	s.Equal("Pets", got.Category)

	got, err = s.parser.Parse("lunch 30")
	s.Require().NoError(err)
	s.Equal("Misc", got.Category)
}

func (s *ParserTestSuite) TestParse_DoesNotMutateTable() {
	before := DefaultCategoryKeywords()

	_, err := s.parser.Parse("Dinner 400")

	s.Require().NoError(err)
	s.Equal(before, s.parser.Categories)
}
