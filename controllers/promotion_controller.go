package controllers

import (
	"time"

	"github.com/Govind-619/ShuttleHub/services"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PromotionController struct {
	promotions *services.PromotionService
	loc        *time.Location
}

// NewPromotionController reads dates without an offset as wall time in loc
func NewPromotionController(promotions *services.PromotionService, loc *time.Location) *PromotionController {
	return &PromotionController{promotions: promotions, loc: loc}
}

type promotionRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	DiscountType  string          `json:"discount_type" binding:"required"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	StartDate     string          `json:"start_date" binding:"required"`
	EndDate       string          `json:"end_date" binding:"required"`
	IsActive      *bool           `json:"is_active"`
	ProductIDs    []uint          `json:"product_ids"`
}

func (pc *PromotionController) input(req promotionRequest) (services.PromotionInput, error) {
	start, err := utils.ParseStoreTime(req.StartDate, pc.loc)
	if err != nil {
		return services.PromotionInput{}, utils.InvalidInput("start_date: %v", err)
	}
	end, err := utils.ParseStoreTime(req.EndDate, pc.loc)
	if err != nil {
		return services.PromotionInput{}, utils.InvalidInput("end_date: %v", err)
	}
	return services.PromotionInput{
		Name:          req.Name,
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		StartDate:     start,
		EndDate:       end,
		IsActive:      req.IsActive == nil || *req.IsActive,
		ProductIDs:    req.ProductIDs,
	}, nil
}

func (pc *PromotionController) ListPromotions(c *gin.Context) {
	promotions, err := pc.promotions.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Promotions retrieved successfully", promotions)
}

func (pc *PromotionController) GetPromotion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	promotion, err := pc.promotions.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Promotion retrieved successfully", promotion)
}

func (pc *PromotionController) CreatePromotion(c *gin.Context) {
	var req promotionRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	in, err := pc.input(req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	promotion, err := pc.promotions.Create(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Promotion created successfully", promotion)
}

func (pc *PromotionController) UpdatePromotion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req promotionRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	in, err := pc.input(req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	promotion, err := pc.promotions.Update(c.Request.Context(), id, in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Promotion updated successfully", promotion)
}

func (pc *PromotionController) DeletePromotion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := pc.promotions.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Promotion deleted successfully", nil)
}

// ApplyPromotions handles POST /promotions/apply
func (pc *PromotionController) ApplyPromotions(c *gin.Context) {
	result, err := pc.promotions.ApplyScheduledPromotions(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Promotions applied successfully", result)
}
