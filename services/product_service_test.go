package services

import (
	"context"
	"testing"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/Govind-619/ShuttleHub/testutil"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductInput(name string, price int64) ProductInput {
	return ProductInput{
		Name:   name,
		Price:  dec(price),
		Stock:  10,
		Brand:  "Yonex",
		Images: []string{"https://cdn.example.com/a.jpg", " ", "https://cdn.example.com/b.jpg"},
	}
}

func TestProductCreateGeneratesUniqueSlug(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewProductService(db, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, newProductInput("Vợt Yonex Astrox 88D", 3200000))
	require.NoError(t, err)
	assert.Equal(t, "vot-yonex-astrox-88d", first.Slug)
	assert.True(t, first.IsActive)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, first.ImageList)

	second, err := svc.Create(ctx, newProductInput("Vot Yonex Astrox 88D", 3100000))
	require.NoError(t, err)
	assert.Equal(t, "vot-yonex-astrox-88d-2", second.Slug)

	bySlug, err := svc.Get(ctx, "vot-yonex-astrox-88d-2", false)
	require.NoError(t, err)
	assert.Equal(t, second.ID, bySlug.ID)
}

func TestProductValidation(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewProductService(db, nil)
	ctx := context.Background()

	in := newProductInput("Racket", 100000)
	sale := dec(120000)
	in.SalePrice = &sale
	_, err := svc.Create(ctx, in)
	assert.True(t, utils.IsBadRequestError(err), "sale price above price is rejected")

	in = newProductInput("Racket", 0)
	_, err = svc.Create(ctx, in)
	assert.True(t, utils.IsBadRequestError(err))

	in = newProductInput("Racket", 100000)
	missing := uint(42)
	in.CategoryID = &missing
	_, err = svc.Create(ctx, in)
	assert.True(t, utils.IsBadRequestError(err))
}

func TestProductListFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewProductService(db, nil)
	ctx := context.Background()

	cat := models.Category{Name: "Rackets", Slug: "rackets"}
	require.NoError(t, db.Create(&cat).Error)

	cheap := newProductInput("Nanoflare 001", 900000)
	cheap.CategoryID = &cat.ID
	_, err := svc.Create(ctx, cheap)
	require.NoError(t, err)

	onSale := newProductInput("Thruster K", 2500000)
	onSale.Brand = "Victor"
	sale := dec(800000)
	onSale.SalePrice = &sale
	onSale.IsFeatured = true
	_, err = svc.Create(ctx, onSale)
	require.NoError(t, err)

	hidden := newProductInput("Prototype", 100000)
	off := false
	hidden.IsActive = &off
	_, err = svc.Create(ctx, hidden)
	require.NoError(t, err)

	page := func() *utils.Pagination { return &utils.Pagination{Page: 1, Limit: 12} }

	all, err := svc.List(ctx, ProductFilter{}, page())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	withHidden, err := svc.List(ctx, ProductFilter{IncludeInactive: true}, page())
	require.NoError(t, err)
	assert.Len(t, withHidden, 3)

	byCat, err := svc.List(ctx, ProductFilter{Category: "rackets"}, page())
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, "Nanoflare 001", byCat[0].Name)

	sales, err := svc.List(ctx, ProductFilter{OnSale: true}, page())
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.True(t, sales[0].EffectivePrice.Equal(dec(800000)))

	max := decimal.NewFromInt(850000)
	underMax, err := svc.List(ctx, ProductFilter{MaxPrice: &max}, page())
	require.NoError(t, err)
	require.Len(t, underMax, 1)
	assert.Equal(t, "Thruster K", underMax[0].Name)

	sorted, err := svc.List(ctx, ProductFilter{Sort: "price_asc"}, page())
	require.NoError(t, err)
	require.Len(t, sorted, 2)
	assert.Equal(t, "Thruster K", sorted[0].Name)

	search, err := svc.List(ctx, ProductFilter{Query: "nano", Brand: "yonex"}, page())
	require.NoError(t, err)
	assert.Len(t, search, 1)

	featured, err := svc.List(ctx, ProductFilter{Featured: true}, page())
	require.NoError(t, err)
	assert.Len(t, featured, 1)

	_, err = svc.List(ctx, ProductFilter{Sort: "random"}, page())
	assert.True(t, utils.IsBadRequestError(err))
}

func TestProductUpdate(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewProductService(db, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, newProductInput("Grip", 40000))
	require.NoError(t, err)

	in := newProductInput("Grip Pro", 45000)
	in.Slug = "grip-pro"
	updated, err := svc.Update(ctx, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "grip-pro", updated.Slug)
	assert.True(t, updated.Price.Equal(dec(45000)))
	assert.False(t, updated.SalePrice.Valid)

	_, err = svc.Update(ctx, 999, in)
	assert.True(t, utils.IsNotFoundError(err))
}

func TestProductDeleteDetachesOrdersAndCarts(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	svc := NewProductService(f.db, nil)
	carts := NewCartService(f.db, utils.DefaultPricing())
	user := testutil.CreateTestUser(t, f.db, 0)
	p := testutil.CreateTestProduct(t, f.db, "racket", 100000, 5)

	order, err := f.svc.CreateOrder(ctx, baseOrderInput(models.PaymentMethodCOD, OrderItemInput{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)
	_, err = carts.Replace(ctx, user.ID, []CartItemInput{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))

	var item models.OrderItem
	require.NoError(t, f.db.Where("order_id = ?", order.ID).First(&item).Error)
	assert.Nil(t, item.ProductID)
	assert.Equal(t, "racket", item.ProductSnapshot.Name)

	view, err := carts.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	assert.True(t, utils.IsNotFoundError(svc.Delete(ctx, p.ID)))
}
