// Package testutil provides an in-memory database and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/Govind-619/ShuttleHub/config"
	"github.com/Govind-619/ShuttleHub/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps the shared-cache database alive and serializes writers.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// CreateTestUser creates a customer with the given points balance
func CreateTestUser(t *testing.T, db *gorm.DB, points int64) *models.User {
	t.Helper()

	id := uuid.New().String()[:8]
	user := &models.User{
		ClerkID:   "user_" + id,
		Email:     id + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Role:      models.RoleCustomer,
		Points:    decimal.NewFromInt(points),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CreateTestAdmin creates an admin user
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := CreateTestUser(t, db, 0)
	if err := db.Model(user).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("Failed to promote test admin: %v", err)
	}
	user.Role = models.RoleAdmin
	return user
}

// CreateTestProduct creates an active product priced in VND
func CreateTestProduct(t *testing.T, db *gorm.DB, name string, price int64, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:     name,
		Slug:     fmt.Sprintf("%s-%s", uuid.New().String()[:6], "product"),
		Price:    decimal.NewFromInt(price),
		Stock:    stock,
		Brand:    "Yonex",
		Images:   "https://cdn.example.com/" + name + ".jpg",
		IsActive: true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}
	return product
}

// CreateTestDiscountCode creates an active percentage code
func CreateTestDiscountCode(t *testing.T, db *gorm.DB, code string, percent int64) *models.DiscountCode {
	t.Helper()

	dc := &models.DiscountCode{
		Code:     code,
		Percent:  decimal.NewFromInt(percent),
		IsActive: true,
	}
	if err := db.Create(dc).Error; err != nil {
		t.Fatalf("Failed to create test discount code: %v", err)
	}
	return dc
}

// ReloadProduct reads the product back from the database
func ReloadProduct(t *testing.T, db *gorm.DB, id uint) *models.Product {
	t.Helper()

	var p models.Product
	if err := db.First(&p, id).Error; err != nil {
		t.Fatalf("Failed to reload product %d: %v", id, err)
	}
	return &p
}

// ReloadUser reads the user back from the database
func ReloadUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()

	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		t.Fatalf("Failed to reload user %d: %v", id, err)
	}
	return &u
}
