package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/Govind-619/ShuttleHub/middleware"
	"github.com/Govind-619/ShuttleHub/services"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type OrderController struct {
	orders   *services.OrderService
	checkout *services.CheckoutService
	invoice  services.InvoiceOptions
}

func NewOrderController(orders *services.OrderService, checkout *services.CheckoutService, invoice services.InvoiceOptions) *OrderController {
	if invoice.Location == nil {
		invoice.Location = time.UTC
	}
	return &OrderController{orders: orders, checkout: checkout, invoice: invoice}
}

func (oc *OrderController) filter(c *gin.Context) (services.OrderFilter, error) {
	f := services.OrderFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		PaymentMethod: c.Query("payment_method"),
		Search:        c.Query("q"),
	}
	var err error
	if f.From, err = queryTime(c, "from", oc.invoice.Location); err != nil {
		return f, err
	}
	if f.To, err = queryTime(c, "to", oc.invoice.Location); err != nil {
		return f, err
	}

	user := middleware.CurrentUser(c)
	if !user.IsAdmin() || queryBool(c, "mine") {
		f.UserID = &user.ID
	}
	return f, nil
}

// ListOrders shows customers their own orders and admins everything
func (oc *OrderController) ListOrders(c *gin.Context) {
	f, err := oc.filter(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	p := utils.NewPagination(c)
	orders, err := oc.orders.List(c.Request.Context(), f, p)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessWithPagination(c, "Orders retrieved successfully", orders, p)
}

// CreateOrder places a cash on delivery order; guests may check out too
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.CheckoutRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	user := middleware.CurrentUser(c)
	if user != nil && req.PointsUsed.IsZero() {
		req.PointsUsed = middleware.CheckoutPoints(c)
	}

	res, err := oc.checkout.PlaceCOD(c.Request.Context(), user, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	forgetCheckoutState(c)
	utils.Created(c, "Order placed successfully", res.Order)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := oc.orders.Get(c.Request.Context(), id, middleware.CurrentUser(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Order retrieved successfully", order)
}

type updateOrderRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// UpdateOrder is the admin status change
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateOrderRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	order, err := oc.orders.UpdateStatus(c.Request.Context(), id, req.Status, req.Note)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Order updated successfully", order)
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := oc.orders.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Order deleted successfully", nil)
}

func (oc *OrderController) CancelOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := oc.orders.CancelOrder(c.Request.Context(), id, middleware.CurrentUser(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Order cancelled successfully", order)
}

// DownloadInvoice streams the PDF invoice of an order the caller can see
func (oc *OrderController) DownloadInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := oc.orders.Get(c.Request.Context(), id, middleware.CurrentUser(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.WriteInvoice(&buf, order, oc.invoice); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice_%s.pdf", order.OrderNumber))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ExportOrders writes every matching order to an XLSX workbook
func (oc *OrderController) ExportOrders(c *gin.Context) {
	f, err := oc.filter(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	orders, err := oc.orders.ListAll(c.Request.Context(), f)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.WriteOrdersReport(&buf, orders, oc.invoice.StoreName, oc.invoice.Location); err != nil {
		utils.RespondError(c, err)
		return
	}
	name := fmt.Sprintf("orders_%s.xlsx", time.Now().In(oc.invoice.Location).Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
