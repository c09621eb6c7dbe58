package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Discount types shared by promotions and bulk discounts
const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

// Promotion statuses derived from the window at read time
const (
	PromotionScheduled = "scheduled"
	PromotionActive    = "active"
	PromotionEnded     = "ended"
)

// Promotion is a scheduled discount rule. A nil ProductIDs targets every product.
// Saving a promotion never touches prices; the apply action does.
type Promotion struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	DiscountType  string          `gorm:"type:varchar(10);not null" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"discount_value"`
	StartDate     time.Time       `gorm:"not null" json:"start_date"`
	EndDate       time.Time       `gorm:"not null" json:"end_date"`
	IsActive      bool            `gorm:"index" json:"is_active"`
	ProductIDs    []uint          `gorm:"serializer:json;type:text" json:"product_ids"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Status string `gorm:"-" json:"status"`
}

// StatusAt derives the promotion status for the given instant.
func (p *Promotion) StatusAt(now time.Time) string {
	switch {
	case now.Before(p.StartDate):
		return PromotionScheduled
	case now.After(p.EndDate):
		return PromotionEnded
	default:
		return PromotionActive
	}
}

// InWindow reports whether now falls inside [StartDate, EndDate].
func (p *Promotion) InWindow(now time.Time) bool {
	return p.StatusAt(now) == PromotionActive
}

// Targets reports whether the promotion applies to the product.
func (p *Promotion) Targets(productID uint) bool {
	if p.ProductIDs == nil {
		return true
	}
	for _, id := range p.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}
