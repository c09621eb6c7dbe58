package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestComputeTotalsWithCodeAndPoints(t *testing.T) {
	p := DefaultPricing()

	totals := p.ComputeTotals(d(1000000), d(10), d(50000))

	assert.True(t, totals.DiscountAmount.Equal(d(100000)), totals.DiscountAmount.String())
	assert.True(t, totals.PointsUsed.Equal(d(50000)))
	assert.True(t, totals.ShippingFee.IsZero())
	assert.True(t, totals.Total.Equal(d(850000)), totals.Total.String())
}

func TestComputeTotalsCapsPoints(t *testing.T) {
	p := DefaultPricing()

	totals := p.ComputeTotals(d(200000), d(50), d(150000))

	assert.True(t, totals.DiscountAmount.Equal(d(100000)))
	assert.True(t, totals.PointsUsed.Equal(d(100000)), "points capped at the remaining amount")
	assert.True(t, totals.ShippingFee.Equal(d(30000)))
	assert.True(t, totals.Total.Equal(d(30000)))
}

func TestShippingFee(t *testing.T) {
	p := DefaultPricing()

	assert.True(t, p.ShippingFee(d(499999)).Equal(d(30000)))
	assert.True(t, p.ShippingFee(d(500000)).IsZero())
	assert.True(t, p.ShippingFee(decimal.Zero).IsZero())
}

func TestPointsEarned(t *testing.T) {
	p := DefaultPricing()

	assert.True(t, p.PointsEarned(d(850000)).Equal(d(127500)))
	assert.True(t, p.PointsEarned(d(333)).Equal(d(50)), "333 * 0.15 = 49.95 rounds to 50")
	assert.True(t, p.PointsEarned(decimal.Zero).IsZero())
}

func TestDiscountedPrice(t *testing.T) {
	assert.True(t, DiscountedPrice(d(100000), "percent", d(20)).Equal(d(80000)))
	assert.True(t, DiscountedPrice(d(99999), "percent", d(15)).Equal(d(84999)), "84999.15 rounds down")
	assert.True(t, DiscountedPrice(d(100000), "percent", d(100)).IsZero())
	assert.True(t, DiscountedPrice(d(100000), "fixed", d(30000)).Equal(d(70000)))
	assert.True(t, DiscountedPrice(d(20000), "fixed", d(30000)).IsZero())
}

func TestPercentOf(t *testing.T) {
	assert.True(t, PercentOf(d(1000000), d(10)).Equal(d(100000)))
	assert.True(t, PercentOf(d(155555), d(10)).Equal(d(15556)))
	assert.True(t, PercentOf(d(1000000), decimal.Zero).IsZero())
}
