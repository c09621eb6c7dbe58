package models

import (
	"strings"
	"time"
)

type Address struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	FullName  string    `json:"full_name" gorm:"not null"`
	Phone     string    `json:"phone" gorm:"not null"`
	Street    string    `json:"street" gorm:"not null"`
	Ward      string    `json:"ward"`
	District  string    `json:"district"`
	City      string    `json:"city" gorm:"not null"`
	IsDefault bool      `json:"is_default" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Flatten renders the address as the single line stored on orders.
func (a *Address) Flatten() string {
	parts := []string{a.Street, a.Ward, a.District, a.City}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
