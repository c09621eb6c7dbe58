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

func TestCategoryLifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCategoryService(db, nil)
	ctx := context.Background()

	cat, err := svc.Create(ctx, CategoryInput{Name: "  Giày cầu lông ", Subcategories: []string{"Yonex", "Lining", ""}})
	require.NoError(t, err)
	assert.Equal(t, "Giày cầu lông", cat.Name)
	assert.Equal(t, "giay-cau-long", cat.Slug)
	assert.Equal(t, []string{"Yonex", "Lining"}, cat.SubcategoryList)

	got, err := svc.Get(ctx, "giay-cau-long")
	require.NoError(t, err)
	assert.Equal(t, cat.ID, got.ID)
	assert.Equal(t, []string{"Yonex", "Lining"}, got.SubcategoryList)

	p := testutil.CreateTestProduct(t, db, "shoe", 1500000, 3)
	require.NoError(t, db.Model(p).Update("category_id", cat.ID).Error)

	updated, err := svc.Update(ctx, cat.ID, CategoryInput{Name: "Shoes", Slug: "shoes"})
	require.NoError(t, err)
	assert.Equal(t, "shoes", updated.Slug)

	require.NoError(t, svc.Delete(ctx, cat.ID))
	assert.Nil(t, testutil.ReloadProduct(t, db, p.ID).CategoryID)
	assert.True(t, utils.IsNotFoundError(svc.Delete(ctx, cat.ID)))
}

func TestPostDraftsAreHidden(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewPostService(db)
	ctx := context.Background()
	admin := testutil.CreateTestAdmin(t, db)

	published, err := svc.Create(ctx, admin, PostInput{Title: "Choosing a racket", Content: "...", IsPublished: true})
	require.NoError(t, err)
	assert.Equal(t, "choosing-a-racket", published.Slug)
	require.NotNil(t, published.AuthorID)
	draft, err := svc.Create(ctx, admin, PostInput{Title: "String tension guide"})
	require.NoError(t, err)

	public, err := svc.List(ctx, false, &utils.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, public, 1)
	require.NotNil(t, public[0].Author)
	assert.Equal(t, admin.ID, public[0].Author.ID)

	_, err = svc.Get(ctx, draft.Slug, false)
	assert.True(t, utils.IsNotFoundError(err))
	_, err = svc.Get(ctx, draft.Slug, true)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, draft.ID, PostInput{Title: "String tension guide", IsPublished: true})
	require.NoError(t, err)
	assert.True(t, updated.IsPublished)

	require.NoError(t, svc.Delete(ctx, published.ID))
	assert.True(t, utils.IsNotFoundError(svc.Delete(ctx, published.ID)))
}

func TestDiscountCodeService(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewDiscountCodeService(db)
	ctx := context.Background()

	dc, err := svc.Create(ctx, DiscountCodeInput{Code: " summer15 ", Percent: dec(15), UsageLimit: 1})
	require.NoError(t, err)
	assert.Equal(t, "SUMMER15", dc.Code)
	assert.True(t, dc.IsActive)

	_, err = svc.Create(ctx, DiscountCodeInput{Code: "SUMMER15", Percent: dec(10)})
	assert.Equal(t, 409, utils.GetAppError(err).Code)

	_, err = svc.Create(ctx, DiscountCodeInput{Code: "BIG", Percent: dec(150)})
	assert.True(t, utils.IsBadRequestError(err))

	past := time.Now().Add(-time.Hour)
	_, err = svc.Create(ctx, DiscountCodeInput{Code: "OLD", Percent: dec(5), ExpiresAt: &past})
	assert.True(t, utils.IsBadRequestError(err))

	got, err := svc.Validate(ctx, "summer15")
	require.NoError(t, err)
	assert.Equal(t, dc.ID, got.ID)

	require.NoError(t, db.Model(&models.DiscountCode{}).Where("id = ?", dc.ID).Update("used_count", 1).Error)
	_, err = svc.Validate(ctx, "SUMMER15")
	assert.True(t, utils.IsBadRequestError(err), "exhausted codes are rejected")

	require.NoError(t, svc.Delete(ctx, dc.ID))
	codes, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestAddressDefaultToggle(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewAddressService(db)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, 0)
	other := testutil.CreateTestUser(t, db, 0)

	in := AddressInput{FullName: "Hoa", Phone: "0912345678", Street: "10 Nguyen Hue", City: "Ho Chi Minh"}
	first, err := svc.Create(ctx, user.ID, in)
	require.NoError(t, err)
	assert.True(t, first.IsDefault, "first address becomes the default")

	second, err := svc.Create(ctx, user.ID, in)
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	_, err = svc.SetDefault(ctx, user.ID, second.ID)
	require.NoError(t, err)
	list, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)

	_, err = svc.SetDefault(ctx, other.ID, second.ID)
	assert.True(t, utils.IsNotFoundError(err), "addresses are private to their owner")

	require.NoError(t, svc.Delete(ctx, user.ID, second.ID))
	remaining, err := svc.Get(ctx, user.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, remaining.IsDefault)

	bad := in
	bad.Phone = "12345"
	_, err = svc.Create(ctx, user.ID, bad)
	assert.True(t, utils.IsBadRequestError(err))

	updated, err := svc.Update(ctx, user.ID, first.ID, AddressInput{FullName: "Hoa", Phone: "0912345678", Street: "12 Nguyen Hue", City: "Ho Chi Minh"})
	require.NoError(t, err)
	assert.Equal(t, "12 Nguyen Hue", updated.Street)
	assert.True(t, updated.IsDefault)
}
