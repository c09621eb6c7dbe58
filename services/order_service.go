package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderService runs the order lifecycle. Stock is reserved once when an order
// is created and released when it is cancelled or its payment fails.
type OrderService struct {
	db       *gorm.DB
	pricing  utils.Pricing
	notifier *Notifier
	loc      *time.Location
	now      func() time.Time
	sessions SessionExpirer
}

// ErrOrderCancelled is the cause when a payment arrives for a cancelled order
var ErrOrderCancelled = errors.New("order is cancelled")

func NewOrderService(db *gorm.DB, pricing utils.Pricing, notifier *Notifier, loc *time.Location) *OrderService {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderService{db: db, pricing: pricing, notifier: notifier, loc: loc, now: time.Now}
}

// UseSessionExpirer makes cancellation close the order's open checkout session
func (s *OrderService) UseSessionExpirer(e SessionExpirer) {
	s.sessions = e
}

// expireSession closes the checkout session of a cancelled, unpaid card order
func (s *OrderService) expireSession(ctx context.Context, order *models.Order) {
	if s.sessions == nil || order.StripeSessionID == nil ||
		order.PaymentMethod != models.PaymentMethodStripe || order.PaymentStatus != models.PaymentStatusPending {
		return
	}
	if err := s.sessions.ExpireCheckoutSession(ctx, *order.StripeSessionID); err != nil {
		utils.LogError("Failed to expire session %s of cancelled order %s: %v", *order.StripeSessionID, order.OrderNumber, err)
		return
	}
	utils.LogInfo("Expired session %s of cancelled order %s", *order.StripeSessionID, order.OrderNumber)
}

// OrderItemInput is one requested line. Price is a display hint from the
// client and never used for charging.
type OrderItemInput struct {
	ProductID uint             `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,min=1"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// CreateOrderInput carries everything needed to place an order
type CreateOrderInput struct {
	UserID          *uint
	Items           []OrderItemInput
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	PaymentMethod   string
	DiscountCode    string
	PointsUsed      decimal.Decimal
	Note            string
}

// PaymentRef identifies an order by id or by gateway session
type PaymentRef struct {
	OrderID   uint
	SessionID string
}

// VerifyResult reports the outcome of a payment confirmation
type VerifyResult struct {
	Order            *models.Order `json:"order"`
	AlreadyProcessed bool          `json:"already_processed"`
}

// OrderFilter narrows order listings
type OrderFilter struct {
	UserID        *uint
	Status        string
	PaymentStatus string
	PaymentMethod string
	Search        string
	From          *time.Time
	To            *time.Time
}

func (s *OrderService) newOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%s", s.now().In(s.loc).Format("20060102"), utils.ShortID(6))
}

func mergeItems(items []OrderItemInput) ([]OrderItemInput, error) {
	if len(items) == 0 {
		return nil, utils.InvalidInput("Order must contain at least one item")
	}
	merged := make([]OrderItemInput, 0, len(items))
	index := map[uint]int{}
	for _, item := range items {
		if item.ProductID == 0 {
			return nil, utils.InvalidInput("Product id is required")
		}
		if item.Quantity <= 0 {
			return nil, utils.InvalidInput("Quantity must be at least 1")
		}
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

func (s *OrderService) validateCreate(in *CreateOrderInput) error {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	in.DiscountCode = utils.NormalizeCode(in.DiscountCode)
	if in.CustomerName == "" || in.CustomerEmail == "" {
		return utils.InvalidInput("Customer name and email are required")
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return utils.InvalidInput("Shipping address is required")
	}
	if !models.IsValidPaymentMethod(in.PaymentMethod) {
		return utils.InvalidInput("Unknown payment method %q", in.PaymentMethod)
	}
	if in.PointsUsed.IsNegative() {
		return utils.InvalidInput("Points cannot be negative")
	}
	if in.PointsUsed.IsPositive() && in.UserID == nil {
		return utils.InvalidInput("Sign in to redeem points")
	}
	return nil
}

// reserveStock decrements stock only while enough is left.
func reserveStock(tx *gorm.DB, product *models.Product, quantity int) error {
	if product.Stock < quantity {
		return utils.InsufficientStock(product.Name, product.Stock, quantity)
	}
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", product.ID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return errors.Wrapf(res.Error, "reserve stock for product %d", product.ID)
	}
	if res.RowsAffected == 0 {
		return utils.InsufficientStock(product.Name, product.Stock, quantity)
	}
	return nil
}

func snapshotOf(p *models.Product) models.ProductSnapshot {
	snap := models.ProductSnapshot{
		Name:  p.Name,
		Slug:  p.Slug,
		Brand: p.Brand,
		Image: p.FirstImage(),
		Price: p.Price,
	}
	if p.SalePrice.Valid {
		sale := p.SalePrice.Decimal
		snap.SalePrice = &sale
	}
	return snap
}

// lookupDiscountCode resolves a code that is usable right now
func lookupDiscountCode(tx *gorm.DB, code string, now time.Time) (*models.DiscountCode, error) {
	var dc models.DiscountCode
	if err := tx.Where("code = ?", code).First(&dc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.InvalidInput("Invalid or expired discount code")
		}
		return nil, errors.Wrap(err, "load discount code")
	}
	if !dc.UsableAt(now) {
		return nil, utils.InvalidInput("Invalid or expired discount code")
	}
	return &dc, nil
}

// redeemDiscountCode counts one use against the code's limit
func redeemDiscountCode(tx *gorm.DB, dc *models.DiscountCode) error {
	res := tx.Model(&models.DiscountCode{}).
		Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", dc.ID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return errors.Wrap(res.Error, "redeem discount code")
	}
	if res.RowsAffected == 0 {
		return utils.InvalidInput("Invalid or expired discount code")
	}
	return nil
}

func deductPoints(tx *gorm.DB, userID uint, points decimal.Decimal) error {
	res := tx.Model(&models.User{}).
		Where("id = ? AND points >= ?", userID, points).
		UpdateColumn("points", gorm.Expr("points - ?", points))
	if res.Error != nil {
		return errors.Wrap(res.Error, "deduct points")
	}
	if res.RowsAffected == 0 {
		return utils.InvalidInput("Insufficient points balance")
	}
	return nil
}

func creditPoints(tx *gorm.DB, userID uint, points decimal.Decimal) error {
	if !points.IsPositive() {
		return nil
	}
	err := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", points)).Error
	return errors.Wrap(err, "credit points")
}

// CreateOrder prices every line from the database, reserves stock, applies the
// discount code and points, and persists the order in one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := s.validateCreate(&in); err != nil {
		return nil, err
	}
	items, err := mergeItems(in.Items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &models.Order{
		OrderNumber:     s.newOrderNumber(),
		UserID:          in.UserID,
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   models.PaymentStatusPending,
		Status:          models.OrderStatusPending,
		Note:            strings.TrimSpace(in.Note),
	}
	if in.PaymentMethod == models.PaymentMethodCOD {
		order.Status = models.OrderStatusProcessing
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subtotal := decimal.Zero
		for _, item := range items {
			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.NotFoundError(fmt.Sprintf("Product %d not found", item.ProductID), nil)
				}
				return errors.Wrapf(err, "load product %d", item.ProductID)
			}
			if !product.IsActive {
				return utils.InvalidInput("%s is no longer available", product.Name)
			}
			if err := reserveStock(tx, &product, item.Quantity); err != nil {
				return err
			}

			unit := product.CurrentPrice()
			lineTotal := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
			subtotal = subtotal.Add(lineTotal)

			productID := product.ID
			order.Items = append(order.Items, models.OrderItem{
				ProductID:       &productID,
				ProductName:     product.Name,
				Price:           unit,
				Quantity:        item.Quantity,
				Total:           lineTotal,
				ProductSnapshot: snapshotOf(&product),
			})
		}

		percent := decimal.Zero
		if in.DiscountCode != "" {
			dc, err := lookupDiscountCode(tx, in.DiscountCode, now)
			if err != nil {
				return err
			}
			if err := redeemDiscountCode(tx, dc); err != nil {
				return err
			}
			percent = dc.Percent
			order.DiscountCode = dc.Code
		}

		if in.PointsUsed.IsPositive() {
			var user models.User
			if err := tx.First(&user, *in.UserID).Error; err != nil {
				return errors.Wrap(err, "load customer")
			}
			if user.Points.LessThan(in.PointsUsed) {
				return utils.InvalidInput("Insufficient points balance: %s available", user.Points.StringFixed(0))
			}
		}

		totals := s.pricing.ComputeTotals(subtotal, percent, in.PointsUsed)
		if totals.PointsUsed.IsPositive() {
			if err := deductPoints(tx, *in.UserID, totals.PointsUsed); err != nil {
				return err
			}
		}

		order.Subtotal = totals.Subtotal
		order.ShippingFee = totals.ShippingFee
		order.DiscountPercent = totals.DiscountPercent
		order.PointsUsed = totals.PointsUsed
		order.Discount = totals.DiscountAmount
		order.Total = totals.Total

		if err := tx.Create(order).Error; err != nil {
			return errors.Wrap(err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Order %s created: %d items, total %s, method %s",
		order.OrderNumber, len(order.Items), order.Total.StringFixed(0), order.PaymentMethod)
	if order.PaymentMethod == models.PaymentMethodCOD {
		s.notifier.OrderPlaced(order)
	}
	return order, nil
}

func (s *OrderService) findForUpdate(tx *gorm.DB, ref PaymentRef) (*models.Order, error) {
	var order models.Order
	query := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Items")
	var err error
	switch {
	case ref.SessionID != "":
		err = query.Where("stripe_session_id = ?", ref.SessionID).First(&order).Error
	case ref.OrderID != 0:
		err = query.First(&order, ref.OrderID).Error
	default:
		return nil, utils.InvalidInput("Order id or session id is required")
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Order not found", nil)
		}
		return nil, errors.Wrap(err, "load order")
	}
	return &order, nil
}

// VerifyPayment marks an order paid exactly once, awards loyalty points and
// moves a pending order to processing. Repeat calls report already_processed.
func (s *OrderService) VerifyPayment(ctx context.Context, ref PaymentRef) (*VerifyResult, error) {
	result := &VerifyResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.findForUpdate(tx, ref)
		if err != nil {
			return err
		}
		result.Order = order
		if order.PaymentStatus == models.PaymentStatusPaid {
			result.AlreadyProcessed = true
			return nil
		}
		if order.Status == models.OrderStatusCancelled {
			return utils.BadRequestError(fmt.Sprintf("Order %s is cancelled", order.OrderNumber), ErrOrderCancelled)
		}

		now := s.now()
		earned := s.pricing.PointsEarned(order.Total)
		status := order.Status
		if status == models.OrderStatusPending {
			status = models.OrderStatusProcessing
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status <> ?", order.ID, models.PaymentStatusPaid).
			Updates(map[string]interface{}{
				"payment_status": models.PaymentStatusPaid,
				"status":         status,
				"paid_at":        now,
				"points_earned":  earned,
			})
		if res.Error != nil {
			return errors.Wrap(res.Error, "mark order paid")
		}
		if res.RowsAffected == 0 {
			result.AlreadyProcessed = true
			return nil
		}

		if order.UserID != nil {
			if err := creditPoints(tx, *order.UserID, earned); err != nil {
				return err
			}
		}

		order.PaymentStatus = models.PaymentStatusPaid
		order.Status = status
		order.PaidAt = &now
		order.PointsEarned = earned
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadyProcessed {
		utils.LogInfo("Payment for order %s already processed", result.Order.OrderNumber)
		return result, nil
	}
	utils.LogInfo("Payment verified for order %s, %s points awarded",
		result.Order.OrderNumber, result.Order.PointsEarned.StringFixed(0))
	s.notifier.PaymentConfirmed(result.Order)
	return result, nil
}

// MarkPaymentFailed records a failed or expired gateway payment. A pending
// order is cancelled and its stock and points are released. Paid orders are left alone.
func (s *OrderService) MarkPaymentFailed(ctx context.Context, ref PaymentRef) (*models.Order, error) {
	var order *models.Order
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.findForUpdate(tx, ref)
		if err != nil {
			return err
		}
		if order.PaymentStatus != models.PaymentStatusPending {
			return nil
		}

		updates := map[string]interface{}{"payment_status": models.PaymentStatusFailed}
		cancelling := order.Status == models.OrderStatusPending
		now := s.now()
		if cancelling {
			updates["status"] = models.OrderStatusCancelled
			updates["cancelled_at"] = now
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status = ?", order.ID, models.PaymentStatusPending).
			Updates(updates)
		if res.Error != nil {
			return errors.Wrap(res.Error, "mark payment failed")
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if cancelling {
			if err := releaseOrder(tx, order); err != nil {
				return err
			}
			order.Status = models.OrderStatusCancelled
			order.CancelledAt = &now
		}
		order.PaymentStatus = models.PaymentStatusFailed
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		utils.LogInfo("Payment failed for order %s, status %s", order.OrderNumber, order.Status)
	}
	return order, nil
}

// earnedPoints is what the order's payment credited to the customer
func earnedPoints(order *models.Order) decimal.Decimal {
	if order.PaymentStatus != models.PaymentStatusPaid {
		return decimal.Zero
	}
	return order.PointsEarned
}

// releaseOrder returns reserved stock, redeemed points and the discount code
// use. A paid order also takes back the points its payment earned.
func releaseOrder(tx *gorm.DB, order *models.Order) error {
	if err := releaseStock(tx, order); err != nil {
		return err
	}
	if err := releaseDiscountCode(tx, order); err != nil {
		return err
	}
	if order.UserID == nil {
		return nil
	}
	net := order.PointsUsed.Sub(earnedPoints(order))
	if !net.IsNegative() {
		return creditPoints(tx, *order.UserID, net)
	}
	if err := deductPoints(tx, *order.UserID, net.Neg()); err != nil {
		if utils.GetAppError(err) != nil {
			return utils.InvalidState("Customer has already spent the %s points order %s earned",
				order.PointsEarned.StringFixed(0), order.OrderNumber)
		}
		return err
	}
	return nil
}

func releaseDiscountCode(tx *gorm.DB, order *models.Order) error {
	if order.DiscountCode == "" {
		return nil
	}
	err := tx.Model(&models.DiscountCode{}).
		Where("code = ? AND used_count > 0", order.DiscountCode).
		UpdateColumn("used_count", gorm.Expr("used_count - 1")).Error
	return errors.Wrap(err, "release discount code")
}

func releaseStock(tx *gorm.DB, order *models.Order) error {
	for _, item := range order.Items {
		if item.ProductID == nil {
			continue
		}
		err := tx.Model(&models.Product{}).
			Where("id = ?", *item.ProductID).
			UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
		if err != nil {
			return errors.Wrapf(err, "release stock for product %d", *item.ProductID)
		}
	}
	return nil
}

// rereserveOrder takes stock, points and the code use again for an order leaving cancelled
func rereserveOrder(tx *gorm.DB, order *models.Order) error {
	for _, item := range order.Items {
		if item.ProductID == nil {
			continue
		}
		var product models.Product
		if err := tx.First(&product, *item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return errors.Wrapf(err, "load product %d", *item.ProductID)
		}
		if err := reserveStock(tx, &product, item.Quantity); err != nil {
			return err
		}
	}
	if order.UserID != nil {
		net := order.PointsUsed.Sub(earnedPoints(order))
		if net.IsPositive() {
			if err := deductPoints(tx, *order.UserID, net); err != nil {
				return utils.InvalidState("Customer no longer has the %s points this order redeemed", order.PointsUsed.StringFixed(0))
			}
		} else if err := creditPoints(tx, *order.UserID, net.Neg()); err != nil {
			return err
		}
	}
	if order.DiscountCode != "" {
		err := tx.Model(&models.DiscountCode{}).
			Where("code = ?", order.DiscountCode).
			UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error
		if err != nil {
			return errors.Wrap(err, "restore discount code use")
		}
	}
	return nil
}

// UpdateStatus moves an order to any status. Entering cancelled releases its
// reservation; leaving cancelled takes it again and may fail on stock.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status, note string) (*models.Order, error) {
	if !models.IsValidOrderStatus(status) {
		return nil, utils.InvalidInput("Invalid order status %q", status)
	}

	var order *models.Order
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.findForUpdate(tx, PaymentRef{OrderID: id})
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if note = strings.TrimSpace(note); note != "" {
			updates["note"] = note
			order.Note = note
		}
		if order.Status != status {
			changed = true
			switch {
			case status == models.OrderStatusCancelled:
				if err := releaseOrder(tx, order); err != nil {
					return err
				}
				now := s.now()
				updates["cancelled_at"] = now
				order.CancelledAt = &now
			case order.Status == models.OrderStatusCancelled:
				if err := rereserveOrder(tx, order); err != nil {
					return err
				}
				updates["cancelled_at"] = nil
				order.CancelledAt = nil
			}
			updates["status"] = status
			order.Status = status
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
			return errors.Wrap(err, "update order status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		utils.LogInfo("Order %s moved to %s", order.OrderNumber, order.Status)
		if order.Status == models.OrderStatusCancelled {
			s.expireSession(ctx, order)
		}
		s.notifier.StatusChanged(order)
	}
	return order, nil
}

// CancelOrder cancels a pending order on behalf of its owner or an admin
func (s *OrderService) CancelOrder(ctx context.Context, id uint, actor *models.User) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.findForUpdate(tx, PaymentRef{OrderID: id})
		if err != nil {
			return err
		}
		if !canAccessOrder(order, actor) {
			return utils.NotFoundError("Order not found", nil)
		}
		if order.Status != models.OrderStatusPending {
			return utils.InvalidState("Only pending orders can be cancelled, order is %s", order.Status)
		}

		now := s.now()
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
			Updates(map[string]interface{}{"status": models.OrderStatusCancelled, "cancelled_at": now})
		if res.Error != nil {
			return errors.Wrap(res.Error, "cancel order")
		}
		if res.RowsAffected == 0 {
			return utils.InvalidState("Order is no longer pending")
		}
		if err := releaseOrder(tx, order); err != nil {
			return err
		}
		order.Status = models.OrderStatusCancelled
		order.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Order %s cancelled by user %d", order.OrderNumber, actor.ID)
	s.expireSession(ctx, order)
	s.notifier.StatusChanged(order)
	return order, nil
}

func canAccessOrder(order *models.Order, actor *models.User) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return order.UserID != nil && *order.UserID == actor.ID
}

// AttachStripeSession records the checkout session created for an order
func (s *OrderService) AttachStripeSession(ctx context.Context, orderID uint, sessionID string) error {
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("stripe_session_id", sessionID).Error
	return errors.Wrap(err, "attach stripe session")
}

// Get returns an order the actor may see; others see not found
func (s *OrderService) Get(ctx context.Context, id uint, actor *models.User) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Order not found", nil)
		}
		return nil, errors.Wrap(err, "get order")
	}
	if !canAccessOrder(&order, actor) {
		return nil, utils.NotFoundError("Order not found", nil)
	}
	return &order, nil
}

func (s *OrderService) filtered(ctx context.Context, f OrderFilter) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if f.UserID != nil {
		query = query.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		query = query.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.PaymentMethod != "" {
		query = query.Where("payment_method = ?", f.PaymentMethod)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ?", like, like, like)
	}
	if f.From != nil {
		query = query.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("created_at <= ?", *f.To)
	}
	return query
}

// List returns one page of orders matching the filter, newest first
func (s *OrderService) List(ctx context.Context, f OrderFilter, p *utils.Pagination) ([]models.Order, error) {
	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count orders")
	}
	p.SetTotal(total)

	var orders []models.Order
	err := s.filtered(ctx, f).
		Preload("Items").
		Order("created_at DESC, id DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// ListAll returns every matching order for exports
func (s *OrderService) ListAll(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	var orders []models.Order
	if err := s.filtered(ctx, f).Preload("Items").Order("created_at ASC, id ASC").Find(&orders).Error; err != nil {
		return nil, errors.Wrap(err, "export orders")
	}
	return orders, nil
}

// Delete removes an order, returning any stock it still holds
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.findForUpdate(tx, PaymentRef{OrderID: id})
		if err != nil {
			return err
		}
		if order.HoldsStock() {
			if err := releaseStock(tx, order); err != nil {
				return err
			}
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return errors.Wrap(err, "delete order items")
		}
		if err := tx.Delete(&models.Order{}, order.ID).Error; err != nil {
			return errors.Wrap(err, "delete order")
		}
		utils.LogInfo("Order %s deleted", order.OrderNumber)
		return nil
	})
}

// SweepStalePending fails online-payment orders left pending longer than maxAge
func (s *OrderService) SweepStalePending(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := s.now().Add(-maxAge)
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("status = ? AND payment_status = ? AND payment_method IN ? AND created_at < ?",
			models.OrderStatusPending, models.PaymentStatusPending,
			[]string{models.PaymentMethodStripe, models.PaymentMethodVietQR}, cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, errors.Wrap(err, "find stale orders")
	}

	swept := 0
	for _, id := range ids {
		if _, err := s.MarkPaymentFailed(ctx, PaymentRef{OrderID: id}); err != nil {
			utils.LogError("Failed to expire order %d: %v", id, err)
			continue
		}
		swept++
	}
	if swept > 0 {
		utils.LogInfo("Expired %d stale pending orders", swept)
	}
	return swept, nil
}
