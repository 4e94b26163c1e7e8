package form

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func productSchema() Schema {
	return Schema{
		Resource: "product",
		Fields: []Field{
			{Name: "name", Kind: KindString, Required: true, MaxLen: 120},
			{Name: "price", Kind: KindDecimal, Required: true, Min: dec("0.01")},
			{Name: "stock", Kind: KindInt, Required: true, Min: dec("0")},
			{Name: "featured", Kind: KindBool},
			{Name: "role", Kind: KindString, Enum: []string{"customer", "admin"}},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	errs := productSchema().Validate(map[string]any{
		"name":     "Lavender Pillar",
		"price":    "12.50",
		"stock":    float64(10),
		"featured": true,
	})
	assert.Nil(t, errs)
}

func TestValidate_MissingRequired(t *testing.T) {
	errs := productSchema().Validate(map[string]any{"price": "9.99"})

	require.NotNil(t, errs)
	assert.Equal(t, "required", errs["name"])
	assert.Equal(t, "required", errs["stock"])
	assert.NotContains(t, errs, "price")
}

func TestValidate_BlankRequiredString(t *testing.T) {
	errs := productSchema().Validate(map[string]any{
		"name":  "   ",
		"price": "5",
		"stock": float64(1),
	})
	require.NotNil(t, errs)
	assert.Equal(t, "required", errs["name"])
}

func TestValidate_DecimalForms(t *testing.T) {
	s := productSchema()

	// Decimal as JSON number is accepted.
	errs := s.Validate(map[string]any{"name": "x", "price": 3.5, "stock": float64(1)})
	assert.Nil(t, errs)

	// Garbage string is not.
	errs = s.Validate(map[string]any{"name": "x", "price": "free", "stock": float64(1)})
	require.NotNil(t, errs)
	assert.Equal(t, "must be a decimal number", errs["price"])
}

func TestValidate_Bounds(t *testing.T) {
	s := productSchema()

	errs := s.Validate(map[string]any{"name": "x", "price": "0.00", "stock": float64(0)})
	require.NotNil(t, errs)
	assert.Equal(t, "must be at least 0.01", errs["price"])

	errs = s.Validate(map[string]any{"name": "x", "price": "1", "stock": float64(-2)})
	require.NotNil(t, errs)
	assert.Equal(t, "must be at least 0", errs["stock"])
}

func TestValidate_IntRejectsFraction(t *testing.T) {
	errs := productSchema().Validate(map[string]any{"name": "x", "price": "1", "stock": 2.5})
	require.NotNil(t, errs)
	assert.Equal(t, "must be an integer", errs["stock"])
}

func TestValidate_Enum(t *testing.T) {
	s := productSchema()

	errs := s.Validate(map[string]any{"name": "x", "price": "1", "stock": float64(1), "role": "admin"})
	assert.Nil(t, errs)

	errs = s.Validate(map[string]any{"name": "x", "price": "1", "stock": float64(1), "role": "root"})
	require.NotNil(t, errs)
	assert.Contains(t, errs["role"], "must be one of")
}

func TestValidate_MaxLen(t *testing.T) {
	long := make([]byte, 121)
	for i := range long {
		long[i] = 'a'
	}
	errs := productSchema().Validate(map[string]any{"name": string(long), "price": "1", "stock": float64(1)})
	require.NotNil(t, errs)
	assert.Equal(t, "must be at most 120 characters", errs["name"])
}

func TestValidate_IgnoresUnknownKeys(t *testing.T) {
	errs := productSchema().Validate(map[string]any{
		"name": "x", "price": "1", "stock": float64(1),
		"clientOnlyField": "whatever",
	})
	assert.Nil(t, errs)
}

func TestErrors_ErrorString(t *testing.T) {
	errs := Errors{"name": "required"}
	assert.Contains(t, errs.Error(), "name: required")
}
