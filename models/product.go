package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Money is rendered as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	Name        string              `gorm:"not null" json:"name"`
	Slug        string              `gorm:"uniqueIndex;not null" json:"slug"`
	Description string              `gorm:"type:text" json:"description"`
	Price       decimal.Decimal     `gorm:"type:decimal(14,2);not null" json:"price"`
	SalePrice   decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"sale_price"`
	Stock       int                 `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Brand       string              `gorm:"index" json:"brand"`
	Images      string              `gorm:"type:text" json:"images"`
	IsActive    bool                `gorm:"index" json:"is_active"`
	IsFeatured  bool                `gorm:"default:false" json:"is_featured"`
	CategoryID  *uint               `gorm:"index" json:"category_id"`
	Category    *Category           `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`

	ImageList      []string        `gorm:"-" json:"image_list"`
	EffectivePrice decimal.Decimal `gorm:"-" json:"effective_price"`
}

// AfterFind fills the derived read-only fields.
func (p *Product) AfterFind(tx *gorm.DB) error {
	p.fillDerived()
	return nil
}

func (p *Product) fillDerived() {
	p.ImageList = SplitList(p.Images)
	p.EffectivePrice = p.CurrentPrice()
}

// CurrentPrice is the sale price when it undercuts the base price.
func (p *Product) CurrentPrice() decimal.Decimal {
	if p.SalePrice.Valid && p.SalePrice.Decimal.LessThan(p.Price) {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// FirstImage returns the cover image or an empty string.
func (p *Product) FirstImage() string {
	list := SplitList(p.Images)
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

// SplitList splits a comma delimited column into trimmed non-empty values.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// JoinList is the inverse of SplitList.
func JoinList(values []string) string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	return strings.Join(cleaned, ",")
}
