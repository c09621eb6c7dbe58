package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User roles
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is a storefront account mirrored from the identity provider.
// ClerkID is the only key the identity provider knows about.
type User struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ClerkID   string          `gorm:"uniqueIndex;not null" json:"clerk_id"`
	Email     string          `gorm:"index" json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	ImageURL  string          `json:"image_url"`
	Role      string          `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	Points    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"points"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Addresses []Address `gorm:"foreignKey:UserID" json:"addresses,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FullName joins first and last name, falling back to the email.
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}
