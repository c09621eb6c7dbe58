package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Category struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"not null"`
	Slug          string    `json:"slug" gorm:"uniqueIndex;not null"`
	Description   string    `json:"description"`
	Subcategories string    `json:"subcategories" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	SubcategoryList []string `json:"subcategory_list" gorm:"-"`
}

// BeforeSave hook to keep names trimmed
func (c *Category) BeforeSave(tx *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	return nil
}

func (c *Category) AfterFind(tx *gorm.DB) error {
	c.SubcategoryList = SplitList(c.Subcategories)
	return nil
}
