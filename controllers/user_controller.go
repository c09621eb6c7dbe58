package controllers

import (
	"github.com/Govind-619/ShuttleHub/middleware"
	"github.com/Govind-619/ShuttleHub/services"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// Me returns the caller with a fresh points balance
func (uc *UserController) Me(c *gin.Context) {
	user, err := uc.users.Get(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "User retrieved successfully", user)
}

func (uc *UserController) ListUsers(c *gin.Context) {
	p := utils.NewPagination(c)
	users, err := uc.users.List(c.Request.Context(), c.Query("role"), c.Query("q"), p)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessWithPagination(c, "Users retrieved successfully", users, p)
}

type roleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin customer"`
}

func (uc *UserController) SetRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req roleRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	user, err := uc.users.SetRole(c.Request.Context(), middleware.CurrentUser(c), id, req.Role)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Role updated successfully", user)
}
