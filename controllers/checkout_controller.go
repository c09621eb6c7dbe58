package controllers

import (
	"github.com/Govind-619/ShuttleHub/middleware"
	"github.com/Govind-619/ShuttleHub/services"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CheckoutController struct {
	checkout *services.CheckoutService
}

func NewCheckoutController(checkout *services.CheckoutService) *CheckoutController {
	return &CheckoutController{checkout: checkout}
}

// bindCheckout falls back to the points stored in the checkout session
func bindCheckout(c *gin.Context) (services.CheckoutRequest, bool) {
	var req services.CheckoutRequest
	if !utils.BindJSON(c, &req) {
		return req, false
	}
	if middleware.CurrentUser(c) != nil && req.PointsUsed.IsZero() {
		req.PointsUsed = middleware.CheckoutPoints(c)
	}
	return req, true
}

func forgetCheckoutState(c *gin.Context) {
	if middleware.CheckoutPoints(c).IsZero() {
		return
	}
	if err := middleware.ClearCheckoutState(c); err != nil {
		utils.LogWarn("Failed to clear checkout state: %v", err)
	}
}

// StartStripeCheckout handles POST /checkout/stripe
func (cc *CheckoutController) StartStripeCheckout(c *gin.Context) {
	req, ok := bindCheckout(c)
	if !ok {
		return
	}
	res, err := cc.checkout.StartStripe(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	forgetCheckoutState(c)
	utils.Created(c, "Checkout session created", res)
}

type verifyStripeRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// VerifyStripeCheckout is called when the customer lands on the success page
func (cc *CheckoutController) VerifyStripeCheckout(c *gin.Context) {
	var req verifyStripeRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	res, err := cc.checkout.VerifyStripe(c.Request.Context(), req.SessionID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Payment verified", res)
}

func (cc *CheckoutController) StartVietQRCheckout(c *gin.Context) {
	req, ok := bindCheckout(c)
	if !ok {
		return
	}
	res, err := cc.checkout.StartVietQR(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	forgetCheckoutState(c)
	utils.Created(c, "Transfer order created", res)
}

type verifyVietQRRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// VerifyVietQR is the admin confirmation that the transfer arrived
func (cc *CheckoutController) VerifyVietQR(c *gin.Context) {
	var req verifyVietQRRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	res, err := cc.checkout.VerifyVietQR(c.Request.Context(), req.OrderID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Payment verified", res)
}

type pointsRequest struct {
	Points decimal.Decimal `json:"points"`
}

// RedeemPoints checks the balance, prices the cart with the points and
// remembers the choice for the next checkout
func (cc *CheckoutController) RedeemPoints(c *gin.Context) {
	var req pointsRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	user := middleware.CurrentUser(c)
	view, err := cc.checkout.QuotePoints(c.Request.Context(), user, req.Points)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := middleware.SaveCheckoutPoints(c, req.Points); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Points applied", view)
}
