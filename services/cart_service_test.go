package services

import (
	"context"
	"testing"
	"time"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/Govind-619/ShuttleHub/testutil"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartReplaceMergesAndPricesLive(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCartService(db, utils.DefaultPricing())
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, 0)
	a := testutil.CreateTestProduct(t, db, "grip", 40000, 20)
	b := testutil.CreateTestProduct(t, db, "string", 120000, 20)

	view, err := svc.Replace(ctx, user.ID, []CartItemInput{
		{ProductID: a.ID, Quantity: 2},
		{ProductID: b.ID, Quantity: 1},
		{ProductID: a.ID, Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.True(t, view.Totals.Subtotal.Equal(dec(240000)))
	assert.True(t, view.Totals.ShippingFee.Equal(dec(30000)))
	assert.True(t, view.CanCheckout)

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", b.ID).Update("sale_price", dec(100000)).Error)
	view, err = svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, view.Totals.Subtotal.Equal(dec(220000)), "cart follows the current sale price")

	view, err = svc.Replace(ctx, user.ID, []CartItemInput{{ProductID: b.ID, Quantity: 5}})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.True(t, view.Totals.Subtotal.Equal(dec(500000)))
	assert.True(t, view.Totals.ShippingFee.IsZero())
}

func TestCartReplaceRejectsUnavailable(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCartService(db, utils.DefaultPricing())
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, 0)
	p := testutil.CreateTestProduct(t, db, "racket", 100000, 1)

	_, err := svc.Replace(ctx, user.ID, []CartItemInput{{ProductID: p.ID, Quantity: 2}})
	assert.True(t, utils.IsBadRequestError(err))

	_, err = svc.Replace(ctx, user.ID, []CartItemInput{{ProductID: 999, Quantity: 1}})
	assert.True(t, utils.IsNotFoundError(err))

	_, err = svc.Replace(ctx, user.ID, []CartItemInput{{ProductID: p.ID, Quantity: 0}})
	assert.True(t, utils.IsBadRequestError(err))
}

func TestCartFlagsItemsThatCannotBeCheckedOut(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCartService(db, utils.DefaultPricing())
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, 0)
	p := testutil.CreateTestProduct(t, db, "racket", 100000, 3)

	_, err := svc.Replace(ctx, user.ID, []CartItemInput{{ProductID: p.ID, Quantity: 3}})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).Update("stock", 1).Error)

	view, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, view.CanCheckout)
	assert.False(t, view.Items[0].Available)
}

func TestCartDiscountCode(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCartService(db, utils.DefaultPricing())
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, 0)
	p := testutil.CreateTestProduct(t, db, "racket", 1000000, 3)
	dc := testutil.CreateTestDiscountCode(t, db, "SMASH10", 10)

	_, err := svc.Replace(ctx, user.ID, []CartItemInput{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.ApplyDiscount(ctx, user.ID, "NOPE")
	assert.True(t, utils.IsBadRequestError(err))

	view, err := svc.ApplyDiscount(ctx, user.ID, " smash10 ")
	require.NoError(t, err)
	assert.Equal(t, "SMASH10", view.DiscountCode)
	assert.True(t, view.Totals.DiscountAmount.Equal(dec(100000)))
	assert.True(t, view.Totals.Total.Equal(dec(900000)))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(dc).Update("expires_at", past).Error)
	view, err = svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, view.DiscountCode, "expired codes stop applying")
	assert.True(t, view.Totals.Total.Equal(dec(1000000)))

	view, err = svc.ApplyDiscount(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Empty(t, view.DiscountCode)
}

func TestCartClear(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCartService(db, utils.DefaultPricing())
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, 0)
	p := testutil.CreateTestProduct(t, db, "racket", 100000, 3)

	_, err := svc.Replace(ctx, user.ID, []CartItemInput{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, user.ID))

	items, code, err := svc.CheckoutItems(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, code)
}

func TestCartClearRemovesStoredLinesAfterDiscount(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCartService(db, utils.DefaultPricing())
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, 0)
	a := testutil.CreateTestProduct(t, db, "racket", 100000, 3)
	b := testutil.CreateTestProduct(t, db, "grip", 20000, 9)
	testutil.CreateTestDiscountCode(t, db, "CLEAR5", 5)

	_, err := svc.Replace(ctx, user.ID, []CartItemInput{{ProductID: a.ID, Quantity: 1}, {ProductID: b.ID, Quantity: 2}})
	require.NoError(t, err)
	view, err := svc.ApplyDiscount(ctx, user.ID, "clear5")
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)

	var stored int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&stored).Error)
	assert.EqualValues(t, 2, stored)

	require.NoError(t, svc.Clear(ctx, user.ID))
	require.NoError(t, db.Model(&models.CartItem{}).Count(&stored).Error)
	assert.EqualValues(t, 0, stored)

	view, err = svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Empty(t, view.DiscountCode)
}
