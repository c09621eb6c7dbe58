package controllers

import (
	"github.com/Govind-619/ShuttleHub/middleware"
	"github.com/Govind-619/ShuttleHub/services"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

// GetCart prices the cart live, including the points kept in the checkout session
func (cc *CartController) GetCart(c *gin.Context) {
	user := middleware.CurrentUser(c)
	view, err := cc.carts.Quote(c.Request.Context(), user.ID, middleware.CheckoutPoints(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Cart retrieved successfully", view)
}

type replaceCartRequest struct {
	Items []services.CartItemInput `json:"items" binding:"dive"`
}

// ReplaceCart overwrites the cart with the submitted lines
func (cc *CartController) ReplaceCart(c *gin.Context) {
	var req replaceCartRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	user := middleware.CurrentUser(c)
	view, err := cc.carts.Replace(c.Request.Context(), user.ID, req.Items)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Cart updated successfully", view)
}

func (cc *CartController) ClearCart(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := cc.carts.Clear(c.Request.Context(), user.ID); err != nil {
		utils.RespondError(c, err)
		return
	}
	forgetCheckoutState(c)
	utils.Success(c, "Cart cleared successfully", nil)
}

type cartDiscountRequest struct {
	Code string `json:"code"`
}

// ApplyDiscount sets the cart discount code; an empty code removes it
func (cc *CartController) ApplyDiscount(c *gin.Context) {
	var req cartDiscountRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	user := middleware.CurrentUser(c)
	view, err := cc.carts.ApplyDiscount(c.Request.Context(), user.ID, req.Code)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Discount code applied", view)
}
