package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductCurrentPrice(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(100000)}
	assert.True(t, p.CurrentPrice().Equal(decimal.NewFromInt(100000)))

	p.SalePrice = decimal.NewNullDecimal(decimal.NewFromInt(80000))
	assert.True(t, p.CurrentPrice().Equal(decimal.NewFromInt(80000)))

	// a sale price above the base price is ignored
	p.SalePrice = decimal.NewNullDecimal(decimal.NewFromInt(120000))
	assert.True(t, p.CurrentPrice().Equal(decimal.NewFromInt(100000)))
}

func TestSplitAndJoinList(t *testing.T) {
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, SplitList(" a.jpg, ,b.jpg ,"))
	assert.Empty(t, SplitList(""))
	assert.Equal(t, "a,b", JoinList([]string{" a", "", "b "}))
}

func TestPromotionStatusAt(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	p := Promotion{StartDate: start, EndDate: start.Add(48 * time.Hour)}

	assert.Equal(t, PromotionScheduled, p.StatusAt(start.Add(-time.Second)))
	assert.Equal(t, PromotionActive, p.StatusAt(start))
	assert.Equal(t, PromotionActive, p.StatusAt(p.EndDate))
	assert.Equal(t, PromotionEnded, p.StatusAt(p.EndDate.Add(time.Second)))
}

func TestPromotionTargets(t *testing.T) {
	all := Promotion{}
	assert.True(t, all.Targets(42))

	some := Promotion{ProductIDs: []uint{1, 2}}
	assert.True(t, some.Targets(2))
	assert.False(t, some.Targets(3))
}

func TestDiscountCodeUsableAt(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	assert.True(t, (&DiscountCode{IsActive: true}).UsableAt(now))
	assert.False(t, (&DiscountCode{IsActive: false}).UsableAt(now))
	assert.False(t, (&DiscountCode{IsActive: true, ExpiresAt: &past}).UsableAt(now))
	assert.False(t, (&DiscountCode{IsActive: true, UsageLimit: 2, UsedCount: 2}).UsableAt(now))
}

func TestAddressFlatten(t *testing.T) {
	a := Address{Street: "12 Le Loi", Ward: "Ben Nghe", District: "", City: "Ho Chi Minh"}
	assert.Equal(t, "12 Le Loi, Ben Nghe, Ho Chi Minh", a.Flatten())
}
