package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Stripe events the shop reacts to
const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventCheckoutExpired       = "checkout.session.expired"
	EventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
)

const (
	sessionPaymentStatusPaid   = "paid"
	checkoutMetadataOrderIDKey = "order_id"
)

// CheckoutSession is the gateway-neutral view of a hosted payment page
type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
	OrderID       uint   `json:"order_id"`
}

// Paid reports whether the customer completed payment
func (s *CheckoutSession) Paid() bool {
	return s.PaymentStatus == sessionPaymentStatusPaid
}

// WebhookEvent is a verified gateway callback
type WebhookEvent struct {
	ID      string
	Type    string
	Session CheckoutSession
}

// SessionExpirer closes a hosted checkout session so it stops accepting payment
type SessionExpirer interface {
	ExpireCheckoutSession(ctx context.Context, id string) error
}

// PaymentGateway creates and inspects hosted checkout sessions
type PaymentGateway interface {
	SessionExpirer
	CreateCheckoutSession(ctx context.Context, order *models.Order, successURL, cancelURL string) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// currencies Stripe charges in whole units
var zeroDecimalCurrencies = map[string]bool{
	"vnd": true, "jpy": true, "krw": true, "clp": true, "pyg": true, "ugx": true, "xaf": true, "xof": true,
}

// StripeGateway implements PaymentGateway with Stripe Checkout
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	currency      string
	rate          decimal.Decimal
}

// NewStripeGateway charges in currency; a positive rate converts VND
// amounts at rate VND per unit of that currency.
func NewStripeGateway(secretKey, webhookSecret, currency string, rate float64) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = "vnd"
	}
	return &StripeGateway{
		api:           api,
		webhookSecret: webhookSecret,
		currency:      currency,
		rate:          decimal.NewFromFloat(rate),
	}
}

// minorUnits converts a VND amount into the smallest unit of the charge currency
func (g *StripeGateway) minorUnits(amount decimal.Decimal) int64 {
	if g.rate.IsPositive() && g.currency != "vnd" {
		amount = amount.Div(g.rate)
	}
	if !zeroDecimalCurrencies[g.currency] {
		amount = amount.Mul(decimal.NewFromInt(100))
	}
	return amount.Round(0).IntPart()
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, order *models.Order, successURL, cancelURL string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		ClientReferenceID: stripe.String(order.OrderNumber),
		CustomerEmail:     stripe.String(order.CustomerEmail),
	}
	params.Context = ctx
	params.AddMetadata(checkoutMetadataOrderIDKey, strconv.FormatUint(uint64(order.ID), 10))
	params.AddMetadata("order_number", order.OrderNumber)

	for _, item := range order.Items {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.ProductName),
		}
		if img := item.ProductSnapshot.Image; strings.HasPrefix(img, "http") {
			product.Images = []*string{stripe.String(img)}
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(g.currency),
				UnitAmount:  stripe.Int64(g.minorUnits(item.Price)),
				ProductData: product,
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	params.ShippingOptions = []*stripe.CheckoutSessionShippingOptionParams{{
		ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
			Type:        stripe.String("fixed_amount"),
			DisplayName: stripe.String("Shipping"),
			FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
				Amount:   stripe.Int64(g.minorUnits(order.ShippingFee)),
				Currency: stripe.String(g.currency),
			},
		},
	}}

	if off := order.Discount.Add(order.PointsUsed); off.IsPositive() {
		couponParams := &stripe.CouponParams{
			AmountOff: stripe.Int64(g.minorUnits(off)),
			Currency:  stripe.String(g.currency),
			Duration:  stripe.String(string(stripe.CouponDurationOnce)),
			Name:      stripe.String("Order " + order.OrderNumber),
		}
		couponParams.Context = ctx
		coupon, err := g.api.Coupons.New(couponParams)
		if err != nil {
			return nil, errors.Wrap(err, "create stripe coupon")
		}
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{{Coupon: stripe.String(coupon.ID)}}
	}

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "create stripe checkout session")
	}
	return fromStripeSession(s), nil
}

func (g *StripeGateway) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, errors.Wrap(err, "get stripe checkout session")
	}
	return fromStripeSession(s), nil
}

func (g *StripeGateway) ExpireCheckoutSession(ctx context.Context, id string) error {
	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx
	if _, err := g.api.CheckoutSessions.Expire(id, params); err != nil {
		return errors.Wrap(err, "expire stripe checkout session")
	}
	return nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the session it carries
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, errors.Wrap(err, "verify stripe signature")
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if !strings.HasPrefix(out.Type, "checkout.session.") || event.Data == nil {
		return out, nil
	}
	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, errors.Wrap(err, "decode checkout session")
	}
	out.Session = *fromStripeSession(&s)
	return out, nil
}

func fromStripeSession(s *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
	}
	if id, err := strconv.ParseUint(s.Metadata[checkoutMetadataOrderIDKey], 10, 64); err == nil {
		out.OrderID = uint(id)
	}
	return out
}
