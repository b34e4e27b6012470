package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expenseInput struct {
	Amount   decimal.Decimal `json:"amount" validate:"positive_amount"`
	Income   decimal.Decimal `json:"income" validate:"non_negative_amount"`
	Category string          `json:"category" validate:"category_label"`
	Kind     string          `json:"kind" validate:"omitempty,summary_kind"`
}

func failedFields(t *testing.T, err error) []string {
	t.Helper()
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

func TestValidator_ValidInput(t *testing.T) {
	v := GetValidator().GetValidate()

	err := v.Struct(expenseInput{
		Amount:   decimal.RequireFromString("699.50"),
		Income:   decimal.Zero,
		Category: "Food",
		Kind:     "Weekly",
	})

	assert.NoError(t, err)
}

func TestValidator_RejectsNonPositiveAmount(t *testing.T) {
	v := NewValidator().GetValidate()

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		err := v.Struct(expenseInput{Amount: amount, Category: "Food"})
		assert.Equal(t, []string{"amount"}, failedFields(t, err), amount.String())
	}
}

func TestValidator_RejectsNegativeIncome(t *testing.T) {
	v := NewValidator().GetValidate()

	err := v.Struct(expenseInput{Amount: decimal.NewFromInt(1), Income: decimal.NewFromInt(-1), Category: "Food"})

	assert.Equal(t, []string{"income"}, failedFields(t, err))
}

func TestValidator_CategoryLabel(t *testing.T) {
	v := NewValidator().GetValidate()
	long := make([]byte, maxCategoryLength+1)
	for i := range long {
		long[i] = 'a'
	}

	for _, category := range []string{"", "   ", string(long)} {
		err := v.Struct(expenseInput{Amount: decimal.NewFromInt(1), Category: category})
		assert.Equal(t, []string{"category"}, failedFields(t, err), "category %q", category)
	}
}

func TestValidator_SummaryKind(t *testing.T) {
	v := NewValidator().GetValidate()

	err := v.Struct(expenseInput{Amount: decimal.NewFromInt(1), Category: "Food", Kind: "daily"})

	assert.Equal(t, []string{"kind"}, failedFields(t, err))
}

func TestGetValidator_ReturnsSameInstance(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}
