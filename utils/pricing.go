package utils

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Pricing holds the store-wide money rules.
type Pricing struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	PointsRate            decimal.Decimal
}

func NewPricing(threshold, flatFee int64, pointsRate float64) Pricing {
	return Pricing{
		FreeShippingThreshold: decimal.NewFromInt(threshold),
		FlatShippingFee:       decimal.NewFromInt(flatFee),
		PointsRate:            decimal.NewFromFloat(pointsRate),
	}
}

// DefaultPricing is 500 000 free shipping, 30 000 flat fee and 15% points.
func DefaultPricing() Pricing {
	return NewPricing(500000, 30000, 0.15)
}

// ShippingFee is free at or above the threshold.
func (p Pricing) ShippingFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.IsZero() || subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.FlatShippingFee
}

// PointsEarned awards round(total * rate).
func (p Pricing) PointsEarned(total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return total.Mul(p.PointsRate).Round(0)
}

// Totals is the breakdown of an order amount.
type Totals struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	PointsUsed      decimal.Decimal `json:"points_used"`
	ShippingFee     decimal.Decimal `json:"shipping_fee"`
	Total           decimal.Decimal `json:"total"`
}

// ComputeTotals applies the code percentage, then points, then shipping.
// Points are capped at what remains after the code discount so none are wasted.
func (p Pricing) ComputeTotals(subtotal, discountPercent, points decimal.Decimal) Totals {
	discountAmount := PercentOf(subtotal, discountPercent)
	if discountAmount.GreaterThan(subtotal) {
		discountAmount = subtotal
	}

	remaining := subtotal.Sub(discountAmount)
	if points.IsNegative() {
		points = decimal.Zero
	}
	if points.GreaterThan(remaining) {
		points = remaining
	}

	shipping := p.ShippingFee(subtotal)
	return Totals{
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		PointsUsed:      points,
		ShippingFee:     shipping,
		Total:           decimal.Max(decimal.Zero, remaining.Sub(points)).Add(shipping),
	}
}

// PercentOf returns round(amount * percent / 100).
func PercentOf(amount, percent decimal.Decimal) decimal.Decimal {
	if !percent.IsPositive() {
		return decimal.Zero
	}
	return amount.Mul(percent).Div(hundred).Round(0)
}

// DiscountedPrice applies a promotion or bulk discount to a base price.
// Percent: round(price * (1 - value/100)). Fixed: max(0, price - value).
func DiscountedPrice(price decimal.Decimal, discountType string, value decimal.Decimal) decimal.Decimal {
	if discountType == "percent" {
		return price.Mul(hundred.Sub(value)).Div(hundred).Round(0)
	}
	return decimal.Max(decimal.Zero, price.Sub(value))
}
