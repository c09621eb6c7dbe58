package controllers

import (
	"github.com/Govind-619/ShuttleHub/services"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/gin-gonic/gin"
)

type DiscountCodeController struct {
	codes *services.DiscountCodeService
}

func NewDiscountCodeController(codes *services.DiscountCodeService) *DiscountCodeController {
	return &DiscountCodeController{codes: codes}
}

func (dc *DiscountCodeController) ListDiscountCodes(c *gin.Context) {
	codes, err := dc.codes.List(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Discount codes retrieved successfully", codes)
}

func (dc *DiscountCodeController) CreateDiscountCode(c *gin.Context) {
	var req services.DiscountCodeInput
	if !utils.BindJSON(c, &req) {
		return
	}
	code, err := dc.codes.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Discount code created successfully", code)
}

func (dc *DiscountCodeController) DeleteDiscountCode(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := dc.codes.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Discount code deleted successfully", nil)
}
