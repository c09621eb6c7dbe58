package controllers

import (
	"github.com/Govind-619/ShuttleHub/services"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	categories *services.CategoryService
}

func NewCategoryController(categories *services.CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

func (cc *CategoryController) ListCategories(c *gin.Context) {
	categories, err := cc.categories.List(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Categories retrieved successfully", categories)
}

// GetCategory accepts an id or a slug
func (cc *CategoryController) GetCategory(c *gin.Context) {
	category, err := cc.categories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Category retrieved successfully", category)
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req services.CategoryInput
	if !utils.BindJSON(c, &req) {
		return
	}
	category, err := cc.categories.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Category created successfully", category)
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.CategoryInput
	if !utils.BindJSON(c, &req) {
		return
	}
	category, err := cc.categories.Update(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Category updated successfully", category)
}

// DeleteCategory leaves its products uncategorized
func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := cc.categories.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Category deleted successfully", nil)
}
