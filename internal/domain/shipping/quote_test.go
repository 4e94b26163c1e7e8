package shipping

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func rates(flat, threshold string) Rates {
	return Rates{
		FlatRate:      decimal.RequireFromString(flat),
		FreeThreshold: decimal.RequireFromString(threshold),
	}
}

func TestCompute_BelowThreshold(t *testing.T) {
	q := Compute(decimal.RequireFromString("45"), rates("5", "50"))

	assert.True(t, decimal.RequireFromString("5").Equal(q.Cost))
	assert.True(t, decimal.RequireFromString("5").Equal(q.Remaining))
	assert.True(t, decimal.RequireFromString("90").Equal(q.Progress))
}

func TestCompute_AtThreshold(t *testing.T) {
	q := Compute(decimal.RequireFromString("50"), rates("5", "50"))

	assert.True(t, q.Cost.IsZero())
	assert.True(t, q.Remaining.IsZero())
	assert.True(t, decimal.NewFromInt(100).Equal(q.Progress))
}

func TestCompute_AboveThreshold(t *testing.T) {
	q := Compute(decimal.RequireFromString("120.50"), rates("7.99", "50"))

	assert.True(t, q.Cost.IsZero())
}

func TestCompute_ThresholdDisabled(t *testing.T) {
	q := Compute(decimal.RequireFromString("10000"), rates("5", "0"))

	assert.True(t, decimal.NewFromInt(5).Equal(q.Cost))
	assert.True(t, q.Progress.IsZero())

	q = Compute(decimal.Zero, rates("5", "-1"))
	assert.True(t, decimal.NewFromInt(5).Equal(q.Cost))
}

func TestCompute_ZeroSubtotal(t *testing.T) {
	q := Compute(decimal.Zero, rates("5", "50"))

	assert.True(t, decimal.NewFromInt(5).Equal(q.Cost))
	assert.True(t, decimal.NewFromInt(50).Equal(q.Remaining))
	assert.True(t, q.Progress.IsZero())
}

func TestParseRates_Valid(t *testing.T) {
	r := ParseRates("7.50", "75")

	assert.True(t, decimal.RequireFromString("7.50").Equal(r.FlatRate))
	assert.True(t, decimal.NewFromInt(75).Equal(r.FreeThreshold))
}

func TestParseRates_FallsBackToDefaults(t *testing.T) {
	r := ParseRates("not-a-number", "")

	assert.True(t, DefaultFlatRate.Equal(r.FlatRate))
	assert.True(t, DefaultFreeThreshold.Equal(r.FreeThreshold))
}

func TestParseRates_PartialFallback(t *testing.T) {
	r := ParseRates("9.99", "NaN")

	assert.True(t, decimal.RequireFromString("9.99").Equal(r.FlatRate))
	assert.True(t, DefaultFreeThreshold.Equal(r.FreeThreshold))
}
