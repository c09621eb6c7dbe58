package controllers

import (
	"github.com/Govind-619/ShuttleHub/middleware"
	"github.com/Govind-619/ShuttleHub/services"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/gin-gonic/gin"
)

type AddressController struct {
	addresses *services.AddressService
}

func NewAddressController(addresses *services.AddressService) *AddressController {
	return &AddressController{addresses: addresses}
}

func (ac *AddressController) ListAddresses(c *gin.Context) {
	addresses, err := ac.addresses.List(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Addresses retrieved successfully", addresses)
}

func (ac *AddressController) GetAddress(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	address, err := ac.addresses.Get(c.Request.Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Address retrieved successfully", address)
}

func (ac *AddressController) CreateAddress(c *gin.Context) {
	var req services.AddressInput
	if !utils.BindJSON(c, &req) {
		return
	}
	address, err := ac.addresses.Create(c.Request.Context(), middleware.CurrentUser(c).ID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Address created successfully", address)
}

func (ac *AddressController) UpdateAddress(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.AddressInput
	if !utils.BindJSON(c, &req) {
		return
	}
	address, err := ac.addresses.Update(c.Request.Context(), middleware.CurrentUser(c).ID, id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Address updated successfully", address)
}

func (ac *AddressController) DeleteAddress(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := ac.addresses.Delete(c.Request.Context(), middleware.CurrentUser(c).ID, id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Address deleted successfully", nil)
}

func (ac *AddressController) SetDefaultAddress(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	address, err := ac.addresses.SetDefault(c.Request.Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Default address updated", address)
}
