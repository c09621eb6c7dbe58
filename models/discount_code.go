package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountCode is a percentage code entered at checkout. Codes are stored upper-cased.
type DiscountCode struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Code       string          `gorm:"uniqueIndex;not null" json:"code"`
	Percent    decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percent"`
	IsActive   bool            `json:"is_active"`
	ExpiresAt  *time.Time      `json:"expires_at"`
	UsageLimit int             `gorm:"not null;default:0" json:"usage_limit"` // 0 means unlimited
	UsedCount  int             `gorm:"not null;default:0" json:"used_count"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// UsableAt reports whether the code can be redeemed at the given instant.
func (d *DiscountCode) UsableAt(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if d.ExpiresAt != nil && now.After(*d.ExpiresAt) {
		return false
	}
	if d.UsageLimit > 0 && d.UsedCount >= d.UsageLimit {
		return false
	}
	return true
}
