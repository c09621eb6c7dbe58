package services

import (
	"context"
	"time"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DiscountCodeService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDiscountCodeService(db *gorm.DB) *DiscountCodeService {
	return &DiscountCodeService{db: db, now: time.Now}
}

// DiscountCodeInput is the writable part of a discount code
type DiscountCodeInput struct {
	Code       string          `json:"code" binding:"required"`
	Percent    decimal.Decimal `json:"percent"`
	IsActive   *bool           `json:"is_active"`
	ExpiresAt  *time.Time      `json:"expires_at"`
	UsageLimit int             `json:"usage_limit" binding:"min=0"`
}

func (s *DiscountCodeService) List(ctx context.Context) ([]models.DiscountCode, error) {
	var codes []models.DiscountCode
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&codes).Error
	return codes, errors.Wrap(err, "list discount codes")
}

func (s *DiscountCodeService) Create(ctx context.Context, in DiscountCodeInput) (*models.DiscountCode, error) {
	code := utils.NormalizeCode(in.Code)
	if code == "" {
		return nil, utils.InvalidInput("Code is required")
	}
	if !in.Percent.IsPositive() || in.Percent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, utils.InvalidInput("Percent must be greater than 0 and at most 100")
	}
	if in.UsageLimit < 0 {
		return nil, utils.InvalidInput("Usage limit cannot be negative")
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()) {
		return nil, utils.InvalidInput("Expiry must be in the future")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.DiscountCode{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "check discount code")
	}
	if count > 0 {
		return nil, utils.ConflictError("Discount code already exists", nil)
	}

	dc := models.DiscountCode{
		Code:       code,
		Percent:    in.Percent,
		IsActive:   in.IsActive == nil || *in.IsActive,
		ExpiresAt:  in.ExpiresAt,
		UsageLimit: in.UsageLimit,
	}
	if err := s.db.WithContext(ctx).Create(&dc).Error; err != nil {
		return nil, errors.Wrap(err, "create discount code")
	}
	utils.LogInfo("Discount code %s created at %s%%", dc.Code, dc.Percent.String())
	return &dc, nil
}

// Validate returns the code if it can be redeemed right now
func (s *DiscountCodeService) Validate(ctx context.Context, code string) (*models.DiscountCode, error) {
	return lookupDiscountCode(s.db.WithContext(ctx), utils.NormalizeCode(code), s.now())
}

func (s *DiscountCodeService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.DiscountCode{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete discount code")
	}
	if res.RowsAffected == 0 {
		return utils.NotFoundError("Discount code not found", nil)
	}
	return nil
}
