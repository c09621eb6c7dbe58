package services

import (
	"context"
	"testing"
	"time"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/Govind-619/ShuttleHub/testutil"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newPromotionService(t *testing.T) (*PromotionService, func() time.Time) {
	db := testutil.NewTestDB(t)
	svc := NewPromotionService(db, nil)
	fixed := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc, svc.now
}

func TestApplyBulkDiscountPercent(t *testing.T) {
	svc, _ := newPromotionService(t)
	ctx := context.Background()
	a := testutil.CreateTestProduct(t, svc.db, "astrox", 99999, 5)
	b := testutil.CreateTestProduct(t, svc.db, "nanoflare", 200000, 5)
	untouched := testutil.CreateTestProduct(t, svc.db, "grip", 50000, 5)

	n, err := svc.ApplyBulkDiscount(ctx, []uint{a.ID, b.ID}, models.DiscountPercent, dec(15))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.True(t, testutil.ReloadProduct(t, svc.db, a.ID).SalePrice.Decimal.Equal(dec(84999)))
	assert.True(t, testutil.ReloadProduct(t, svc.db, b.ID).SalePrice.Decimal.Equal(dec(170000)))
	assert.False(t, testutil.ReloadProduct(t, svc.db, untouched.ID).SalePrice.Valid)
}

func TestApplyBulkDiscountFixedFloorsAtZero(t *testing.T) {
	svc, _ := newPromotionService(t)
	p := testutil.CreateTestProduct(t, svc.db, "shuttle", 20000, 5)

	_, err := svc.ApplyBulkDiscount(context.Background(), []uint{p.ID}, models.DiscountFixed, dec(30000))
	require.NoError(t, err)

	reloaded := testutil.ReloadProduct(t, svc.db, p.ID)
	require.True(t, reloaded.SalePrice.Valid)
	assert.True(t, reloaded.SalePrice.Decimal.IsZero())
}

func TestApplyBulkDiscountOverwritesUnconditionally(t *testing.T) {
	svc, _ := newPromotionService(t)
	ctx := context.Background()
	p := testutil.CreateTestProduct(t, svc.db, "racket", 100000, 5)

	_, err := svc.ApplyBulkDiscount(ctx, []uint{p.ID}, models.DiscountPercent, dec(50))
	require.NoError(t, err)
	_, err = svc.ApplyBulkDiscount(ctx, []uint{p.ID}, models.DiscountPercent, dec(10))
	require.NoError(t, err)

	assert.True(t, testutil.ReloadProduct(t, svc.db, p.ID).SalePrice.Decimal.Equal(dec(90000)))
}

func TestApplyBulkDiscountRejectsInvalidInput(t *testing.T) {
	svc, _ := newPromotionService(t)
	ctx := context.Background()
	p := testutil.CreateTestProduct(t, svc.db, "racket", 100000, 5)

	cases := []struct {
		name  string
		ids   []uint
		kind  string
		value decimal.Decimal
	}{
		{"zero value", []uint{p.ID}, models.DiscountPercent, decimal.Zero},
		{"negative value", []uint{p.ID}, models.DiscountFixed, dec(-5)},
		{"percent above 100", []uint{p.ID}, models.DiscountPercent, dec(101)},
		{"unknown type", []uint{p.ID}, "bogo", dec(10)},
		{"no products", nil, models.DiscountPercent, dec(10)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ApplyBulkDiscount(ctx, tc.ids, tc.kind, tc.value)
			require.Error(t, err)
			assert.True(t, utils.IsBadRequestError(err))
		})
	}
	assert.False(t, testutil.ReloadProduct(t, svc.db, p.ID).SalePrice.Valid)
}

func TestClearDiscountIsIdempotent(t *testing.T) {
	svc, _ := newPromotionService(t)
	ctx := context.Background()
	p := testutil.CreateTestProduct(t, svc.db, "racket", 100000, 5)
	_, err := svc.ApplyBulkDiscount(ctx, []uint{p.ID}, models.DiscountPercent, dec(10))
	require.NoError(t, err)

	_, err = svc.ClearDiscount(ctx, []uint{p.ID})
	require.NoError(t, err)
	first := testutil.ReloadProduct(t, svc.db, p.ID)

	_, err = svc.ClearDiscount(ctx, []uint{p.ID})
	require.NoError(t, err)
	second := testutil.ReloadProduct(t, svc.db, p.ID)

	assert.False(t, first.SalePrice.Valid)
	assert.False(t, second.SalePrice.Valid)
	assert.True(t, second.Price.Equal(dec(100000)))
}

func createPromotion(t *testing.T, svc *PromotionService, kind string, value int64, start, end time.Time, ids []uint) *models.Promotion {
	t.Helper()
	p, err := svc.Create(context.Background(), PromotionInput{
		Name:          "Promo",
		DiscountType:  kind,
		DiscountValue: dec(value),
		StartDate:     start,
		EndDate:       end,
		IsActive:      true,
		ProductIDs:    ids,
	})
	require.NoError(t, err)
	return p
}

func TestApplyScheduledPromotionsBestDiscountWins(t *testing.T) {
	svc, now := newPromotionService(t)
	ctx := context.Background()
	p := testutil.CreateTestProduct(t, svc.db, "racket", 100000, 5)
	t0 := now()

	createPromotion(t, svc, models.DiscountPercent, 10, t0.Add(-time.Hour), t0.Add(time.Hour), []uint{p.ID})
	createPromotion(t, svc, models.DiscountPercent, 20, t0.Add(-time.Hour), t0.Add(time.Hour), nil)

	res, err := svc.ApplyScheduledPromotions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Promotions)
	assert.Equal(t, 1, res.Updated)
	assert.True(t, testutil.ReloadProduct(t, svc.db, p.ID).SalePrice.Decimal.Equal(dec(80000)))
}

func TestApplyScheduledPromotionsNeverRaisesPrice(t *testing.T) {
	svc, now := newPromotionService(t)
	ctx := context.Background()
	p := testutil.CreateTestProduct(t, svc.db, "racket", 100000, 5)
	_, err := svc.ApplyBulkDiscount(ctx, []uint{p.ID}, models.DiscountPercent, dec(30))
	require.NoError(t, err)
	t0 := now()

	createPromotion(t, svc, models.DiscountPercent, 10, t0.Add(-time.Hour), t0.Add(time.Hour), nil)
	createPromotion(t, svc, models.DiscountFixed, 5000, t0.Add(-time.Hour), t0.Add(time.Hour), nil)

	res, err := svc.ApplyScheduledPromotions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Updated)
	assert.True(t, testutil.ReloadProduct(t, svc.db, p.ID).SalePrice.Decimal.Equal(dec(70000)))
}

func TestApplyScheduledPromotionsSkipsOutOfWindowAndInactive(t *testing.T) {
	svc, now := newPromotionService(t)
	ctx := context.Background()
	p := testutil.CreateTestProduct(t, svc.db, "racket", 100000, 5)
	t0 := now()

	createPromotion(t, svc, models.DiscountPercent, 50, t0.Add(time.Hour), t0.Add(2*time.Hour), nil)
	createPromotion(t, svc, models.DiscountPercent, 40, t0.Add(-2*time.Hour), t0.Add(-time.Hour), nil)
	inactive := createPromotion(t, svc, models.DiscountPercent, 30, t0.Add(-time.Hour), t0.Add(time.Hour), nil)
	require.NoError(t, svc.db.Model(inactive).Update("is_active", false).Error)

	res, err := svc.ApplyScheduledPromotions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Promotions)
	assert.False(t, testutil.ReloadProduct(t, svc.db, p.ID).SalePrice.Valid)
}

func TestPromotionListDerivesStatus(t *testing.T) {
	svc, now := newPromotionService(t)
	ctx := context.Background()
	t0 := now()

	createPromotion(t, svc, models.DiscountPercent, 10, t0.Add(time.Hour), t0.Add(2*time.Hour), nil)
	createPromotion(t, svc, models.DiscountPercent, 10, t0.Add(-time.Hour), t0.Add(time.Hour), nil)
	createPromotion(t, svc, models.DiscountPercent, 10, t0.Add(-2*time.Hour), t0.Add(-time.Hour), nil)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := svc.List(ctx, models.PromotionActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, models.PromotionActive, active[0].Status)

	_, err = svc.List(ctx, "paused")
	assert.True(t, utils.IsBadRequestError(err))
}

func TestPromotionCreateValidation(t *testing.T) {
	svc, now := newPromotionService(t)
	t0 := now()

	_, err := svc.Create(context.Background(), PromotionInput{
		Name:          "Backwards",
		DiscountType:  models.DiscountPercent,
		DiscountValue: dec(10),
		StartDate:     t0,
		EndDate:       t0.Add(-time.Hour),
	})
	assert.True(t, utils.IsBadRequestError(err))

	p := createPromotion(t, svc, models.DiscountFixed, 10000, t0, t0.Add(time.Hour), []uint{})
	assert.Nil(t, p.ProductIDs, "an empty target list means every product")

	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProductIDs)

	require.NoError(t, svc.Delete(context.Background(), p.ID))
	_, err = svc.Get(context.Background(), p.ID)
	assert.True(t, utils.IsNotFoundError(err))
}
