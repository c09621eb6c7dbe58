package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PromotionService owns promotion rules and writes their effect onto product sale prices.
type PromotionService struct {
	db    *gorm.DB
	cache *ProductCache
	now   func() time.Time
}

func NewPromotionService(db *gorm.DB, cache *ProductCache) *PromotionService {
	return &PromotionService{db: db, cache: cache, now: time.Now}
}

// PromotionInput is the writable part of a promotion
type PromotionInput struct {
	Name          string
	Description   string
	DiscountType  string
	DiscountValue decimal.Decimal
	StartDate     time.Time
	EndDate       time.Time
	IsActive      bool
	ProductIDs    []uint
}

// ApplyResult summarizes a scheduled promotion run
type ApplyResult struct {
	Promotions int `json:"promotions"`
	Updated    int `json:"updated"`
}

func validateDiscount(discountType string, value decimal.Decimal) error {
	switch discountType {
	case models.DiscountPercent:
		if !value.IsPositive() || value.GreaterThan(decimal.NewFromInt(100)) {
			return utils.InvalidInput("Percent discount must be greater than 0 and at most 100")
		}
	case models.DiscountFixed:
		if !value.IsPositive() {
			return utils.InvalidInput("Fixed discount must be greater than 0")
		}
	default:
		return utils.InvalidInput("Unknown discount type %q", discountType)
	}
	return nil
}

// ApplyBulkDiscount overwrites the sale price of every selected product,
// raising it if needed, and returns how many products were updated.
func (s *PromotionService) ApplyBulkDiscount(ctx context.Context, productIDs []uint, discountType string, value decimal.Decimal) (int, error) {
	if len(productIDs) == 0 {
		return 0, utils.InvalidInput("No products selected")
	}
	if err := validateDiscount(discountType, value); err != nil {
		return 0, err
	}

	updated := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var products []models.Product
		if err := tx.Where("id IN ?", productIDs).Find(&products).Error; err != nil {
			return errors.Wrap(err, "load products")
		}
		for _, p := range products {
			salePrice := utils.DiscountedPrice(p.Price, discountType, value)
			if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).Update("sale_price", salePrice).Error; err != nil {
				return errors.Wrapf(err, "update sale price of product %d", p.ID)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.cache.Invalidate(ctx)
	utils.LogInfo("Bulk %s discount of %s applied to %d products", discountType, value.String(), updated)
	return updated, nil
}

// ClearDiscount removes the sale price from the given products
func (s *PromotionService) ClearDiscount(ctx context.Context, productIDs []uint) (int, error) {
	if len(productIDs) == 0 {
		return 0, utils.InvalidInput("No products selected")
	}

	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id IN ?", productIDs).
		Update("sale_price", nil)
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "clear sale prices")
	}

	s.cache.Invalidate(ctx)
	utils.LogInfo("Sale price cleared on %d products", res.RowsAffected)
	return int(res.RowsAffected), nil
}

// ApplyScheduledPromotions writes the best in-window promotion price onto each
// targeted product. A product is only touched when the candidate is strictly
// lower than what it sells for now, so running it never raises a price.
// Expired promotions are not reverted.
func (s *PromotionService) ApplyScheduledPromotions(ctx context.Context) (ApplyResult, error) {
	now := s.now()
	var result ApplyResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidates []models.Promotion
		if err := tx.Where("is_active = ?", true).Find(&candidates).Error; err != nil {
			return errors.Wrap(err, "load promotions")
		}

		promotions := make([]models.Promotion, 0, len(candidates))
		targetsAll := false
		idSet := map[uint]struct{}{}
		for _, p := range candidates {
			if !p.InWindow(now) {
				continue
			}
			promotions = append(promotions, p)
			if p.ProductIDs == nil {
				targetsAll = true
			}
			for _, id := range p.ProductIDs {
				idSet[id] = struct{}{}
			}
		}
		sort.SliceStable(promotions, func(i, j int) bool {
			if !promotions[i].DiscountValue.Equal(promotions[j].DiscountValue) {
				return promotions[i].DiscountValue.GreaterThan(promotions[j].DiscountValue)
			}
			return promotions[i].ID < promotions[j].ID
		})
		result.Promotions = len(promotions)
		if len(promotions) == 0 {
			return nil
		}

		var products []models.Product
		query := tx.Order("id")
		if !targetsAll {
			ids := make([]uint, 0, len(idSet))
			for id := range idSet {
				ids = append(ids, id)
			}
			query = query.Where("id IN ?", ids)
		}
		if err := query.Find(&products).Error; err != nil {
			return errors.Wrap(err, "load promotion targets")
		}

		for i := range products {
			product := &products[i]
			current := product.CurrentPrice()
			best := current
			for _, promo := range promotions {
				if !promo.Targets(product.ID) {
					continue
				}
				candidate := utils.DiscountedPrice(product.Price, promo.DiscountType, promo.DiscountValue)
				if candidate.LessThan(best) {
					best = candidate
				}
			}
			if !best.LessThan(current) {
				continue
			}
			if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).Update("sale_price", best).Error; err != nil {
				return errors.Wrapf(err, "update sale price of product %d", product.ID)
			}
			result.Updated++
		}
		return nil
	})
	if err != nil {
		return ApplyResult{}, err
	}

	if result.Updated > 0 {
		s.cache.Invalidate(ctx)
	}
	utils.LogInfo("Applied %d scheduled promotions, %d products repriced", result.Promotions, result.Updated)
	return result, nil
}

func (s *PromotionService) validate(in *PromotionInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return utils.InvalidInput("Promotion name is required")
	}
	if err := validateDiscount(in.DiscountType, in.DiscountValue); err != nil {
		return err
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return utils.InvalidInput("Start and end dates are required")
	}
	if !in.EndDate.After(in.StartDate) {
		return utils.InvalidInput("End date must be after start date")
	}
	if len(in.ProductIDs) == 0 {
		in.ProductIDs = nil
	}
	return nil
}

// List returns promotions with their derived status, optionally filtered by it
func (s *PromotionService) List(ctx context.Context, status string) ([]models.Promotion, error) {
	switch status {
	case "", models.PromotionScheduled, models.PromotionActive, models.PromotionEnded:
	default:
		return nil, utils.InvalidInput("Unknown promotion status %q", status)
	}

	var promotions []models.Promotion
	if err := s.db.WithContext(ctx).Order("start_date DESC, id DESC").Find(&promotions).Error; err != nil {
		return nil, errors.Wrap(err, "list promotions")
	}

	now := s.now()
	out := make([]models.Promotion, 0, len(promotions))
	for _, p := range promotions {
		p.Status = p.StatusAt(now)
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PromotionService) Get(ctx context.Context, id uint) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := s.db.WithContext(ctx).First(&promotion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Promotion not found", nil)
		}
		return nil, errors.Wrap(err, "get promotion")
	}
	promotion.Status = promotion.StatusAt(s.now())
	return &promotion, nil
}

// Create stores the rule only; prices change when promotions are applied
func (s *PromotionService) Create(ctx context.Context, in PromotionInput) (*models.Promotion, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	promotion := models.Promotion{
		Name:          in.Name,
		Description:   in.Description,
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		IsActive:      in.IsActive,
		ProductIDs:    in.ProductIDs,
	}
	if err := s.db.WithContext(ctx).Create(&promotion).Error; err != nil {
		return nil, errors.Wrap(err, "create promotion")
	}
	promotion.Status = promotion.StatusAt(s.now())
	utils.LogInfo("Promotion %d %q created", promotion.ID, promotion.Name)
	return &promotion, nil
}

func (s *PromotionService) Update(ctx context.Context, id uint, in PromotionInput) (*models.Promotion, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	promotion, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	promotion.Name = in.Name
	promotion.Description = in.Description
	promotion.DiscountType = in.DiscountType
	promotion.DiscountValue = in.DiscountValue
	promotion.StartDate = in.StartDate
	promotion.EndDate = in.EndDate
	promotion.IsActive = in.IsActive
	promotion.ProductIDs = in.ProductIDs
	if err := s.db.WithContext(ctx).Save(promotion).Error; err != nil {
		return nil, errors.Wrap(err, "update promotion")
	}
	promotion.Status = promotion.StatusAt(s.now())
	return promotion, nil
}

func (s *PromotionService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Promotion{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete promotion")
	}
	if res.RowsAffected == 0 {
		return utils.NotFoundError("Promotion not found", nil)
	}
	return nil
}
