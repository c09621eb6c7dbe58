package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status constants
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment status constants
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Payment methods
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodStripe = "stripe"
	PaymentMethodVietQR = "vietqr"
)

// OrderStatuses lists every valid order status.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func IsValidOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCOD, PaymentMethodStripe, PaymentMethodVietQR:
		return true
	}
	return false
}

type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID          *uint           `gorm:"index" json:"user_id"`
	CustomerName    string          `gorm:"not null" json:"customer_name"`
	CustomerEmail   string          `gorm:"not null" json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone"`
	ShippingAddress string          `gorm:"type:text" json:"shipping_address"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal"`
	ShippingFee     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"shipping_fee"`
	Discount        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"discount"`
	Total           decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total"`
	DiscountCode    string          `json:"discount_code,omitempty"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percent"`
	PointsUsed      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"points_used"`
	PointsEarned    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"points_earned"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus   string          `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	Status          string          `gorm:"type:varchar(20);not null;index" json:"status"`
	Note            string          `gorm:"type:text" json:"note,omitempty"`
	StripeSessionID *string         `gorm:"uniqueIndex" json:"stripe_session_id,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// HoldsStock reports whether the order currently reserves inventory.
func (o *Order) HoldsStock() bool {
	return o.Status != OrderStatusCancelled
}

// ProductSnapshot freezes what the customer saw when ordering.
type ProductSnapshot struct {
	Name      string           `json:"name"`
	Slug      string           `json:"slug"`
	Brand     string           `json:"brand"`
	Image     string           `json:"image"`
	Price     decimal.Decimal  `json:"price"`
	SalePrice *decimal.Decimal `json:"sale_price,omitempty"`
}

type OrderItem struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderID         uint            `gorm:"index;not null" json:"order_id"`
	ProductID       *uint           `gorm:"index" json:"product_id"`
	ProductName     string          `gorm:"not null" json:"product_name"`
	Price           decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"price"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	Total           decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total"`
	ProductSnapshot ProductSnapshot `gorm:"serializer:json;type:text" json:"product_snapshot"`
}
