package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type priced struct {
	Name  string           `json:"name" validate:"required"`
	Price *decimal.Decimal `json:"cost_price" validate:"required,gte=0"`
	State string           `json:"status" validate:"omitempty,invoice_status"`
	Move  string           `json:"type" validate:"omitempty,stock_direction"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	registerOn(v)
	return v
}

func TestDecimalFieldsUseNumericTags(t *testing.T) {
	v := newValidator()
	neg := decimal.NewFromInt(-1)
	ok := decimal.RequireFromString("4.50")

	assert.NoError(t, v.Struct(priced{Name: "Paracetamol", Price: &ok}))

	err := v.Struct(priced{Name: "Paracetamol", Price: &neg})
	require.Error(t, err)
	assert.Equal(t, "cost_price must be greater than or equal to 0", Describe(err))

	err = v.Struct(priced{Name: "Paracetamol"})
	require.Error(t, err)
	assert.Equal(t, "cost_price is required", Describe(err))
}

func TestEnumTags(t *testing.T) {
	v := newValidator()
	price := decimal.NewFromInt(1)

	assert.NoError(t, v.Struct(priced{Name: "x", Price: &price, State: "overdue", Move: "subtract"}))
	assert.Error(t, v.Struct(priced{Name: "x", Price: &price, State: "archived"}))
	assert.Error(t, v.Struct(priced{Name: "x", Price: &price, Move: "sideways"}))
}

func TestNormalizeDirection(t *testing.T) {
	for in, want := range map[string]string{"add": StockIncrease, "Increase": StockIncrease, "subtract": StockDecrease, " decrease ": StockDecrease} {
		got, ok := NormalizeDirection(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := NormalizeDirection("set")
	assert.False(t, ok)
}
