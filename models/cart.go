package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the server-persisted basket, one per user.
type Cart struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	DiscountCode    string          `json:"discount_code"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percent"`
	Items           []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type CartItem struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	CartID    uint     `gorm:"uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID uint     `gorm:"uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int      `gorm:"not null" json:"quantity"`
}
