package controllers

import (
	"net/http"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

// CatalogController serves room types and the read-only lookup tables the
// booking form needs.
type CatalogController struct {
	RoomTypeSvc *services.RoomTypeService
}

func NewCatalogController(svc *services.RoomTypeService) *CatalogController {
	return &CatalogController{RoomTypeSvc: svc}
}

func (ctrl *CatalogController) GetRoomTypes(c *gin.Context) {
	types, err := ctrl.RoomTypeSvc.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, types)
}

func (ctrl *CatalogController) GetRoomType(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rt, err := ctrl.RoomTypeSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, rt)
}

func (ctrl *CatalogController) CreateRoomType(c *gin.Context) {
	var payload services.RoomTypeInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	rt, err := ctrl.RoomTypeSvc.Create(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusCreated, "Room type created", rt)
}

func (ctrl *CatalogController) UpdateRoomType(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload services.RoomTypeInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	rt, err := ctrl.RoomTypeSvc.Update(c.Request.Context(), id, payload)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Room type updated", rt)
}

func (ctrl *CatalogController) DeleteRoomType(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.RoomTypeSvc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Room type deleted", nil)
}

func (ctrl *CatalogController) GetRateTypes(c *gin.Context) {
	out, err := ctrl.RoomTypeSvc.RateTypes(c.Request.Context())
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, out)
}

func (ctrl *CatalogController) GetCurrencies(c *gin.Context) {
	out, err := ctrl.RoomTypeSvc.Currencies(c.Request.Context())
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, out)
}

func (ctrl *CatalogController) GetPaymentMethods(c *gin.Context) {
	out, err := ctrl.RoomTypeSvc.PaymentMethods(c.Request.Context())
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, out)
}
