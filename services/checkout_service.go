package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckoutService turns a cart or an item list into an order and hands it to a payment method.
type CheckoutService struct {
	db          *gorm.DB
	orders      *OrderService
	carts       *CartService
	gateway     PaymentGateway
	vietqr      utils.VietQR
	frontendURL string
}

func NewCheckoutService(db *gorm.DB, orders *OrderService, carts *CartService, gateway PaymentGateway, vietqr utils.VietQR, frontendURL string) *CheckoutService {
	return &CheckoutService{
		db:          db,
		orders:      orders,
		carts:       carts,
		gateway:     gateway,
		vietqr:      vietqr,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// CheckoutRequest is the customer-facing checkout payload. Items may be
// omitted to check out the caller's cart.
type CheckoutRequest struct {
	Items           []OrderItemInput `json:"items"`
	CustomerName    string           `json:"customer_name"`
	CustomerEmail   string           `json:"customer_email" binding:"omitempty,email"`
	CustomerPhone   string           `json:"customer_phone" binding:"omitempty,phone"`
	ShippingAddress string           `json:"shipping_address"`
	AddressID       *uint            `json:"address_id"`
	DiscountCode    string           `json:"discount_code"`
	PointsUsed      decimal.Decimal  `json:"points_used"`
	Note            string           `json:"note"`
}

// CheckoutResult tells the client where to pay
type CheckoutResult struct {
	Order       *models.Order `json:"order"`
	CheckoutURL string        `json:"checkout_url,omitempty"`
	SessionID   string        `json:"session_id,omitempty"`
	QRImageURL  string        `json:"qr_image_url,omitempty"`
	Paid        bool          `json:"paid"`
}

func (s *CheckoutService) buildInput(ctx context.Context, user *models.User, req CheckoutRequest, method string) (CreateOrderInput, bool, error) {
	in := CreateOrderInput{
		Items:           req.Items,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   method,
		DiscountCode:    req.DiscountCode,
		PointsUsed:      req.PointsUsed,
		Note:            req.Note,
	}

	fromCart := false
	if user != nil {
		in.UserID = &user.ID
		if in.CustomerName == "" {
			in.CustomerName = user.FullName()
		}
		if in.CustomerEmail == "" {
			in.CustomerEmail = user.Email
		}
		if len(in.Items) == 0 {
			items, code, err := s.carts.CheckoutItems(ctx, user.ID)
			if err != nil {
				return in, false, err
			}
			in.Items = items
			if in.DiscountCode == "" {
				in.DiscountCode = code
			}
			fromCart = true
		}
	}

	if req.AddressID != nil {
		if user == nil {
			return in, false, utils.UnauthorizedError("Sign in to use a saved address", nil)
		}
		var addr models.Address
		err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", *req.AddressID, user.ID).First(&addr).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return in, false, utils.NotFoundError("Address not found", nil)
			}
			return in, false, errors.Wrap(err, "load address")
		}
		in.ShippingAddress = addr.Flatten()
		if in.CustomerPhone == "" {
			in.CustomerPhone = addr.Phone
		}
		if req.CustomerName == "" {
			in.CustomerName = addr.FullName
		}
	}
	return in, fromCart, nil
}

func (s *CheckoutService) afterCreate(ctx context.Context, user *models.User, fromCart bool) {
	if !fromCart || user == nil {
		return
	}
	if err := s.carts.Clear(ctx, user.ID); err != nil {
		utils.LogError("Failed to clear cart of user %d after checkout: %v", user.ID, err)
	}
}

// StartStripe creates a pending order and a Stripe Checkout Session for it.
// If the session cannot be created the order is failed and its stock released.
func (s *CheckoutService) StartStripe(ctx context.Context, user *models.User, req CheckoutRequest) (*CheckoutResult, error) {
	if s.gateway == nil {
		return nil, utils.ServiceUnavailableError("Card payments are not configured", nil)
	}
	in, fromCart, err := s.buildInput(ctx, user, req, models.PaymentMethodStripe)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.CreateOrder(ctx, in)
	if err != nil {
		return nil, err
	}

	if !order.Total.IsPositive() {
		res, err := s.orders.VerifyPayment(ctx, PaymentRef{OrderID: order.ID})
		if err != nil {
			return nil, err
		}
		s.afterCreate(ctx, user, fromCart)
		return &CheckoutResult{Order: res.Order, Paid: true}, nil
	}

	successURL := s.frontendURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"
	cancelURL := fmt.Sprintf("%s/checkout/cancel?order_id=%d", s.frontendURL, order.ID)
	session, err := s.gateway.CreateCheckoutSession(ctx, order, successURL, cancelURL)
	if err != nil {
		utils.LogError("Checkout session for order %s failed: %v", order.OrderNumber, err)
		if _, ferr := s.orders.MarkPaymentFailed(ctx, PaymentRef{OrderID: order.ID}); ferr != nil {
			utils.LogError("Failed to release order %s: %v", order.OrderNumber, ferr)
		}
		return nil, utils.ServiceUnavailableError("Could not start card payment, please try again", err)
	}
	if err := s.orders.AttachStripeSession(ctx, order.ID, session.ID); err != nil {
		return nil, err
	}
	order.StripeSessionID = &session.ID
	// cleared only once the session exists
	s.afterCreate(ctx, user, fromCart)

	utils.LogInfo("Stripe session %s created for order %s", session.ID, order.OrderNumber)
	return &CheckoutResult{Order: order, CheckoutURL: session.URL, SessionID: session.ID}, nil
}

// VerifyStripe confirms an order after the customer returns from Stripe
func (s *CheckoutService) VerifyStripe(ctx context.Context, sessionID string) (*VerifyResult, error) {
	if s.gateway == nil {
		return nil, utils.ServiceUnavailableError("Card payments are not configured", nil)
	}
	if sessionID == "" {
		return nil, utils.InvalidInput("session_id is required")
	}
	session, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, utils.NotFoundError("Checkout session not found", err)
	}
	if !session.Paid() {
		return nil, utils.InvalidState("Payment has not been completed")
	}
	return s.orders.VerifyPayment(ctx, PaymentRef{OrderID: session.OrderID, SessionID: session.ID})
}

// StartVietQR creates a pending transfer order and the QR image to pay it
func (s *CheckoutService) StartVietQR(ctx context.Context, user *models.User, req CheckoutRequest) (*CheckoutResult, error) {
	if !s.vietqr.Configured() {
		return nil, utils.ServiceUnavailableError("Bank transfer is not configured", nil)
	}
	in, fromCart, err := s.buildInput(ctx, user, req, models.PaymentMethodVietQR)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.CreateOrder(ctx, in)
	if err != nil {
		return nil, err
	}
	s.afterCreate(ctx, user, fromCart)

	return &CheckoutResult{
		Order:      order,
		QRImageURL: s.vietqr.ImageURL(order.Total, order.OrderNumber),
	}, nil
}

// PlaceCOD creates a cash on delivery order, which goes straight to processing
func (s *CheckoutService) PlaceCOD(ctx context.Context, user *models.User, req CheckoutRequest) (*CheckoutResult, error) {
	in, fromCart, err := s.buildInput(ctx, user, req, models.PaymentMethodCOD)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.CreateOrder(ctx, in)
	if err != nil {
		return nil, err
	}
	s.afterCreate(ctx, user, fromCart)
	return &CheckoutResult{Order: order}, nil
}

// VerifyVietQR marks a bank transfer order as paid once the transfer is seen
func (s *CheckoutService) VerifyVietQR(ctx context.Context, orderID uint) (*VerifyResult, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Select("id", "payment_method").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Order not found", nil)
		}
		return nil, errors.Wrap(err, "load order")
	}
	if order.PaymentMethod != models.PaymentMethodVietQR {
		return nil, utils.InvalidInput("Order is not a bank transfer order")
	}
	return s.orders.VerifyPayment(ctx, PaymentRef{OrderID: orderID})
}

// QuotePoints checks a points redemption against the balance and prices the cart with it
func (s *CheckoutService) QuotePoints(ctx context.Context, user *models.User, points decimal.Decimal) (*CartView, error) {
	if points.IsNegative() {
		return nil, utils.InvalidInput("Points cannot be negative")
	}
	var fresh models.User
	if err := s.db.WithContext(ctx).First(&fresh, user.ID).Error; err != nil {
		return nil, errors.Wrap(err, "load customer")
	}
	if fresh.Points.LessThan(points) {
		return nil, utils.InvalidInput("Insufficient points balance: %s available", fresh.Points.StringFixed(0))
	}
	return s.carts.Quote(ctx, user.ID, points)
}

// HandleStripeEvent applies a verified webhook to the order it references.
// Unknown orders are logged and acknowledged so the gateway stops retrying.
func (s *CheckoutService) HandleStripeEvent(ctx context.Context, event *WebhookEvent) error {
	ref := PaymentRef{OrderID: event.Session.OrderID, SessionID: event.Session.ID}
	var err error
	switch event.Type {
	case EventCheckoutCompleted:
		if !event.Session.Paid() {
			utils.LogInfo("Session %s completed, payment still %s", event.Session.ID, event.Session.PaymentStatus)
			return nil
		}
		_, err = s.orders.VerifyPayment(ctx, ref)
	case EventAsyncPaymentSucceeded:
		_, err = s.orders.VerifyPayment(ctx, ref)
	case EventCheckoutExpired, EventAsyncPaymentFailed:
		_, err = s.orders.MarkPaymentFailed(ctx, ref)
	default:
		utils.LogDebug("Ignoring stripe event %s", event.Type)
		return nil
	}
	if utils.IsNotFoundError(err) {
		utils.LogWarn("Stripe event %s references unknown session %s", event.ID, event.Session.ID)
		return nil
	}
	if errors.Is(err, ErrOrderCancelled) {
		// acknowledged so Stripe stops retrying; the payment has to be refunded by hand
		utils.LogError("Stripe event %s paid cancelled order %d (session %s), refund required",
			event.ID, event.Session.OrderID, event.Session.ID)
		return nil
	}
	return err
}
