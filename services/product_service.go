package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// effectivePriceSQL mirrors Product.CurrentPrice for filtering and sorting
const effectivePriceSQL = "CASE WHEN sale_price IS NOT NULL AND sale_price < price THEN sale_price ELSE price END"

type ProductService struct {
	db    *gorm.DB
	cache *ProductCache
}

func NewProductService(db *gorm.DB, cache *ProductCache) *ProductService {
	return &ProductService{db: db, cache: cache}
}

// ProductFilter narrows the catalog listing
type ProductFilter struct {
	Category        string // id or slug
	Brand           string
	Query           string
	Featured        bool
	OnSale          bool
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Sort            string
	IncludeInactive bool
}

func (f ProductFilter) cacheKey(p *utils.Pagination) string {
	price := func(d *decimal.Decimal) string {
		if d == nil {
			return ""
		}
		return d.String()
	}
	return fmt.Sprintf("c=%s|b=%s|q=%s|f=%t|s=%t|min=%s|max=%s|o=%s|all=%t|p=%d|l=%d",
		f.Category, strings.ToLower(f.Brand), strings.ToLower(f.Query), f.Featured, f.OnSale,
		price(f.MinPrice), price(f.MaxPrice), f.Sort, f.IncludeInactive, p.Page, p.Limit)
}

// ProductPage is one cached page of the catalog
type ProductPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

var productSorts = map[string]string{
	"":           "created_at DESC, id DESC",
	"newest":     "created_at DESC, id DESC",
	"price_asc":  effectivePriceSQL + " ASC, id ASC",
	"price_desc": effectivePriceSQL + " DESC, id DESC",
	"name":       "name ASC, id ASC",
}

func (s *ProductService) filtered(ctx context.Context, f ProductFilter) (*gorm.DB, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})
	if !f.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if f.Category != "" {
		if id, err := strconv.ParseUint(f.Category, 10, 64); err == nil {
			query = query.Where("category_id = ?", id)
		} else {
			query = query.Where("category_id IN (?)", s.db.WithContext(ctx).Model(&models.Category{}).Select("id").Where("slug = ?", f.Category))
		}
	}
	if f.Brand != "" {
		query = query.Where("LOWER(brand) = ?", strings.ToLower(f.Brand))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(description) LIKE ?", like, like, like)
	}
	if f.Featured {
		query = query.Where("is_featured = ?", true)
	}
	if f.OnSale {
		query = query.Where("sale_price IS NOT NULL AND sale_price < price")
	}
	// bound as numbers, a CASE result has no column affinity to convert text against
	if f.MinPrice != nil {
		query = query.Where(effectivePriceSQL+" >= ?", f.MinPrice.InexactFloat64())
	}
	if f.MaxPrice != nil {
		query = query.Where(effectivePriceSQL+" <= ?", f.MaxPrice.InexactFloat64())
	}
	if _, ok := productSorts[f.Sort]; !ok {
		return nil, utils.InvalidInput("Unknown sort %q", f.Sort)
	}
	return query, nil
}

// List returns one page of the catalog, served from the cache when possible
func (s *ProductService) List(ctx context.Context, f ProductFilter, p *utils.Pagination) ([]models.Product, error) {
	key := f.cacheKey(p)
	var page ProductPage
	if s.cache.Get(ctx, key, &page) {
		p.SetTotal(page.Total)
		return page.Products, nil
	}

	query, err := s.filtered(ctx, f)
	if err != nil {
		return nil, err
	}
	query = query.Session(&gorm.Session{})
	if err := query.Count(&page.Total).Error; err != nil {
		return nil, errors.Wrap(err, "count products")
	}
	err = query.Preload("Category").
		Order(productSorts[f.Sort]).
		Offset(p.Offset).Limit(p.Limit).
		Find(&page.Products).Error
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	p.SetTotal(page.Total)
	s.cache.Set(ctx, key, page)
	return page.Products, nil
}

// Get finds a product by numeric id or slug
func (s *ProductService) Get(ctx context.Context, key string, includeInactive bool) (*models.Product, error) {
	query := s.db.WithContext(ctx).Preload("Category")
	if id, err := strconv.ParseUint(key, 10, 64); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("slug = ?", key)
	}
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var product models.Product
	if err := query.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Product not found", nil)
		}
		return nil, errors.Wrap(err, "get product")
	}
	return &product, nil
}

// ProductInput is the writable part of a product
type ProductInput struct {
	Name        string           `json:"name" binding:"required"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	Stock       int              `json:"stock" binding:"min=0"`
	Brand       string           `json:"brand"`
	Images      []string         `json:"images"`
	IsActive    *bool            `json:"is_active"`
	IsFeatured  bool             `json:"is_featured"`
	CategoryID  *uint            `json:"category_id"`
}

func (s *ProductService) validate(tx *gorm.DB, in *ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	if in.Name == "" {
		return utils.InvalidInput("Product name is required")
	}
	if !in.Price.IsPositive() {
		return utils.InvalidInput("Price must be greater than 0")
	}
	if in.Stock < 0 {
		return utils.InvalidInput("Stock cannot be negative")
	}
	if in.SalePrice != nil {
		if in.SalePrice.IsNegative() {
			return utils.InvalidInput("Sale price cannot be negative")
		}
		if in.SalePrice.GreaterThan(in.Price) {
			return utils.InvalidInput("Sale price cannot exceed the price")
		}
	}
	if in.CategoryID != nil {
		var count int64
		if err := tx.Model(&models.Category{}).Where("id = ?", *in.CategoryID).Count(&count).Error; err != nil {
			return errors.Wrap(err, "check category")
		}
		if count == 0 {
			return utils.InvalidInput("Category %d does not exist", *in.CategoryID)
		}
	}
	return nil
}

func (in *ProductInput) apply(p *models.Product) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price.Round(0)
	p.SalePrice = decimal.NullDecimal{}
	if in.SalePrice != nil {
		p.SalePrice = decimal.NewNullDecimal(in.SalePrice.Round(0))
	}
	p.Stock = in.Stock
	p.Brand = in.Brand
	p.Images = models.JoinList(in.Images)
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.IsFeatured = in.IsFeatured
	p.CategoryID = in.CategoryID
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	product := models.Product{IsActive: true}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.validate(tx, &in); err != nil {
			return err
		}
		base := in.Slug
		if base == "" {
			base = in.Name
		}
		slug, err := uniqueSlug(tx, &models.Product{}, base, 0)
		if err != nil {
			return err
		}
		in.apply(&product)
		product.Slug = slug
		return errors.Wrap(tx.Create(&product).Error, "create product")
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	utils.LogInfo("Product %d %q created", product.ID, product.Name)
	return s.Get(ctx, strconv.FormatUint(uint64(product.ID), 10), true)
}

func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Product not found", nil)
			}
			return errors.Wrap(err, "load product")
		}
		if err := s.validate(tx, &in); err != nil {
			return err
		}
		if in.Slug != "" && utils.Slugify(in.Slug) != product.Slug {
			slug, err := uniqueSlug(tx, &models.Product{}, in.Slug, product.ID)
			if err != nil {
				return err
			}
			product.Slug = slug
		}
		in.apply(&product)
		product.Category = nil
		return errors.Wrap(tx.Save(&product).Error, "update product")
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return s.Get(ctx, strconv.FormatUint(uint64(id), 10), true)
}

// Delete removes a product. Order lines keep their snapshot with the product
// reference cleared, and the product leaves every cart.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Update("product_id", nil).Error; err != nil {
			return errors.Wrap(err, "detach order items")
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return errors.Wrap(err, "remove from carts")
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete product")
		}
		if res.RowsAffected == 0 {
			return utils.NotFoundError("Product not found", nil)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	utils.LogInfo("Product %d deleted", id)
	return nil
}
