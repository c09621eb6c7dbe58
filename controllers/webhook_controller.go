package controllers

import (
	"io"
	"net/http"

	"github.com/Govind-619/ShuttleHub/services"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 16

type WebhookController struct {
	checkout *services.CheckoutService
	gateway  services.PaymentGateway
	clerk    *services.ClerkWebhook
}

// NewWebhookController accepts a nil gateway or clerk handler when that integration is off
func NewWebhookController(checkout *services.CheckoutService, gateway services.PaymentGateway, clerk *services.ClerkWebhook) *WebhookController {
	return &WebhookController{checkout: checkout, gateway: gateway, clerk: clerk}
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.BadRequest(c, "Unreadable request body", nil)
		return nil, false
	}
	return body, true
}

// StripeWebhook acknowledges verified events. A processing failure returns 500 so Stripe retries.
func (wc *WebhookController) StripeWebhook(c *gin.Context) {
	if wc.gateway == nil {
		utils.Error(c, http.StatusServiceUnavailable, "Card payments are not configured", nil)
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	event, err := wc.gateway.ParseWebhook(body, c.GetHeader("Stripe-Signature"))
	if err != nil {
		utils.LogWarn("Rejected stripe webhook: %v", err)
		utils.BadRequest(c, "Invalid signature", nil)
		return
	}
	if err := wc.checkout.HandleStripeEvent(c.Request.Context(), event); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (wc *WebhookController) ClerkWebhook(c *gin.Context) {
	if wc.clerk == nil {
		utils.Error(c, http.StatusServiceUnavailable, "Identity sync is not configured", nil)
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	eventType, err := wc.clerk.Handle(c.Request.Context(), c.Request.Header, body)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "type": eventType})
}
