package services

import (
	"context"
	"time"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartService struct {
	db      *gorm.DB
	pricing utils.Pricing
	now     func() time.Time
}

func NewCartService(db *gorm.DB, pricing utils.Pricing) *CartService {
	return &CartService{db: db, pricing: pricing, now: time.Now}
}

// CartLine is a cart item priced at the current effective price
type CartLine struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	Stock     int             `json:"stock"`
	Available bool            `json:"available"`
}

// CartView is the cart with live pricing and totals
type CartView struct {
	ID           uint         `json:"id"`
	Items        []CartLine   `json:"items"`
	DiscountCode string       `json:"discount_code"`
	Totals       utils.Totals `json:"totals"`
	CanCheckout  bool         `json:"can_checkout"`
}

// CartItemInput is one requested cart line
type CartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

func (s *CartService) cartFor(tx *gorm.DB, userID uint) (*models.Cart, error) {
	cart := models.Cart{UserID: userID}
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cart).Error
	if err != nil {
		return nil, errors.Wrap(err, "create cart")
	}
	if err := tx.Where("user_id = ?", userID).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Preload("Items.Product").First(&cart).Error; err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	return &cart, nil
}

// Get returns the caller's cart, creating an empty one on first use.
// A discount code that is no longer usable is dropped from the totals.
func (s *CartService) Get(ctx context.Context, userID uint) (*CartView, error) {
	return s.view(ctx, userID, decimal.Zero)
}

// Quote prices the cart with points applied, without reserving anything
func (s *CartService) Quote(ctx context.Context, userID uint, points decimal.Decimal) (*CartView, error) {
	return s.view(ctx, userID, points)
}

func (s *CartService) view(ctx context.Context, userID uint, points decimal.Decimal) (*CartView, error) {
	cart, err := s.cartFor(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{ID: cart.ID, Items: []CartLine{}, CanCheckout: len(cart.Items) > 0}
	subtotal := decimal.Zero
	for _, item := range cart.Items {
		if item.Product == nil {
			continue
		}
		p := item.Product
		unit := p.CurrentPrice()
		line := CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Slug:      p.Slug,
			Image:     p.FirstImage(),
			Price:     p.Price,
			UnitPrice: unit,
			Quantity:  item.Quantity,
			Total:     unit.Mul(decimal.NewFromInt(int64(item.Quantity))),
			Stock:     p.Stock,
			Available: p.IsActive && p.Stock >= item.Quantity,
		}
		if !line.Available {
			view.CanCheckout = false
		}
		subtotal = subtotal.Add(line.Total)
		view.Items = append(view.Items, line)
	}

	percent := decimal.Zero
	if cart.DiscountCode != "" {
		if dc, err := lookupDiscountCode(s.db.WithContext(ctx), cart.DiscountCode, s.now()); err == nil {
			view.DiscountCode = dc.Code
			percent = dc.Percent
		}
	}
	view.Totals = s.pricing.ComputeTotals(subtotal, percent, points)
	return view, nil
}

// Replace sets the cart contents to exactly the given lines
func (s *CartService) Replace(ctx context.Context, userID uint, items []CartItemInput) (*CartView, error) {
	quantities := map[uint]int{}
	order := make([]uint, 0, len(items))
	for _, item := range items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, utils.InvalidInput("Each item needs a product id and a positive quantity")
		}
		if _, seen := quantities[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartFor(tx, userID)
		if err != nil {
			return err
		}

		if len(order) > 0 {
			var products []models.Product
			if err := tx.Where("id IN ?", order).Find(&products).Error; err != nil {
				return errors.Wrap(err, "load cart products")
			}
			found := map[uint]*models.Product{}
			for i := range products {
				found[products[i].ID] = &products[i]
			}
			for _, id := range order {
				p, ok := found[id]
				if !ok || !p.IsActive {
					return utils.NotFoundError("Product not available", nil)
				}
				if p.Stock < quantities[id] {
					return utils.InsufficientStock(p.Name, p.Stock, quantities[id])
				}
			}
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return errors.Wrap(err, "clear cart items")
		}
		for _, id := range order {
			item := models.CartItem{CartID: cart.ID, ProductID: id, Quantity: quantities[id]}
			if err := tx.Create(&item).Error; err != nil {
				return errors.Wrap(err, "add cart item")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Cart of user %d replaced with %d lines", userID, len(order))
	return s.Get(ctx, userID)
}

// Clear empties the cart and removes its discount code
func (s *CartService) Clear(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartFor(tx, userID)
		if err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return errors.Wrap(err, "clear cart items")
		}
		return errors.Wrap(tx.Model(&models.Cart{}).Where("id = ?", cart.ID).Updates(map[string]interface{}{
			"discount_code":    "",
			"discount_percent": decimal.Zero,
		}).Error, "reset cart discount")
	})
}

// ApplyDiscount validates and stores a code on the cart; an empty code removes it
func (s *CartService) ApplyDiscount(ctx context.Context, userID uint, code string) (*CartView, error) {
	code = utils.NormalizeCode(code)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartFor(tx, userID)
		if err != nil {
			return err
		}
		percent := decimal.Zero
		if code != "" {
			dc, err := lookupDiscountCode(tx, code, s.now())
			if err != nil {
				return err
			}
			percent = dc.Percent
		}
		return errors.Wrap(tx.Model(&models.Cart{}).Where("id = ?", cart.ID).Updates(map[string]interface{}{
			"discount_code":    code,
			"discount_percent": percent,
		}).Error, "apply cart discount")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// CheckoutItems returns the cart lines and code as order input
func (s *CartService) CheckoutItems(ctx context.Context, userID uint) ([]OrderItemInput, string, error) {
	cart, err := s.cartFor(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, "", err
	}
	items := make([]OrderItemInput, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return items, cart.DiscountCode, nil
}
