package controllers

import (
	"github.com/Govind-619/ShuttleHub/middleware"
	"github.com/Govind-619/ShuttleHub/services"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProductController struct {
	products   *services.ProductService
	promotions *services.PromotionService
}

func NewProductController(products *services.ProductService, promotions *services.PromotionService) *ProductController {
	return &ProductController{products: products, promotions: promotions}
}

// ListProducts handles GET /products. Inactive products are only listed for admins who ask.
func (pc *ProductController) ListProducts(c *gin.Context) {
	minPrice, err := queryDecimal(c, "min_price")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	maxPrice, err := queryDecimal(c, "max_price")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	filter := services.ProductFilter{
		Category:        c.Query("category"),
		Brand:           c.Query("brand"),
		Query:           c.Query("q"),
		Featured:        queryBool(c, "featured"),
		OnSale:          queryBool(c, "on_sale"),
		MinPrice:        minPrice,
		MaxPrice:        maxPrice,
		Sort:            c.Query("sort"),
		IncludeInactive: middleware.IsAdmin(c) && queryBool(c, "include_inactive"),
	}
	p := utils.NewPagination(c)
	products, err := pc.products.List(c.Request.Context(), filter, p)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessWithPagination(c, "Products retrieved successfully", products, p)
}

// GetProduct accepts an id or a slug
func (pc *ProductController) GetProduct(c *gin.Context) {
	product, err := pc.products.Get(c.Request.Context(), c.Param("id"), middleware.IsAdmin(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Product retrieved successfully", product)
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req services.ProductInput
	if !utils.BindJSON(c, &req) {
		return
	}
	product, err := pc.products.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Product created successfully", product)
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.ProductInput
	if !utils.BindJSON(c, &req) {
		return
	}
	product, err := pc.products.Update(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Product updated successfully", product)
}

func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := pc.products.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Product deleted successfully", nil)
}

type bulkDiscountRequest struct {
	Action        string          `json:"action" binding:"required,oneof=apply clear"`
	ProductIDs    []uint          `json:"product_ids"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
}

// BulkDiscount handles POST /products/bulk-discount
func (pc *ProductController) BulkDiscount(c *gin.Context) {
	var req bulkDiscountRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	var (
		updated int
		err     error
	)
	ctx := c.Request.Context()
	if req.Action == "clear" {
		updated, err = pc.promotions.ClearDiscount(ctx, req.ProductIDs)
	} else {
		updated, err = pc.promotions.ApplyBulkDiscount(ctx, req.ProductIDs, req.DiscountType, req.DiscountValue)
	}
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.LogInfo("Bulk discount %s touched %d products", req.Action, updated)
	utils.Success(c, "Discount updated successfully", gin.H{"updated": updated})
}
