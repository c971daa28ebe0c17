package controllers

import (
	"net/http"
	"strconv"
	"time"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

type PricingController struct {
	PricingSvc *services.PricingService
	Clock      services.Clock
}

func NewPricingController(svc *services.PricingService, clock services.Clock) *PricingController {
	return &PricingController{PricingSvc: svc, Clock: clock}
}

func (ctrl *PricingController) asOf(c *gin.Context) (time.Time, bool) {
	at, ok := queryTime(c, "as_of")
	if !ok {
		return time.Time{}, false
	}
	if at == nil {
		return ctrl.Clock.Now(), true
	}
	return *at, true
}

// Resolve (GET /api/pricing/resolve?room_type_id=&rate_type_id=)
func (ctrl *PricingController) Resolve(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	at, ok := ctrl.asOf(c)
	if !ok {
		return
	}
	cfg, err := ctrl.PricingSvc.ResolveConfiguration(c.Request.Context(), actor.BranchID, queryUint(c, "room_type_id"), queryUint(c, "rate_type_id"), at)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, cfg)
}

// Calculate (GET /api/pricing/calculate?room_type_id=&rate_type_id=&minutes=)
func (ctrl *PricingController) Calculate(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	at, ok := ctrl.asOf(c)
	if !ok {
		return
	}
	minutes, err := strconv.Atoi(c.Query("minutes"))
	if err != nil {
		utils.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid input", gin.H{"minutes": "required"})
		return
	}
	quote, err := ctrl.PricingSvc.CalculatePrice(c.Request.Context(), actor, queryUint(c, "room_type_id"), queryUint(c, "rate_type_id"), at, minutes)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, quote)
}

// Options (GET /api/room-type-prices/:id/options)
func (ctrl *PricingController) Options(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	cfg, err := ctrl.PricingSvc.PricingOptions(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, cfg)
}

// ----------------------------------------------------
// Configurations
// ----------------------------------------------------

func (ctrl *PricingController) ListConfigurations(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	out, err := ctrl.PricingSvc.ListConfigurations(c.Request.Context(), actor, queryUint(c, "room_type_id"), queryUint(c, "rate_type_id"))
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, out)
}

func (ctrl *PricingController) CreateConfiguration(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload services.PriceConfigInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	cfg, err := ctrl.PricingSvc.CreateConfiguration(c.Request.Context(), actor, payload)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusCreated, "Pricing configuration created", cfg)
}

func (ctrl *PricingController) UpdateConfiguration(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload services.PriceConfigInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	cfg, err := ctrl.PricingSvc.UpdateConfiguration(c.Request.Context(), actor, id, payload)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Pricing configuration updated", cfg)
}

func (ctrl *PricingController) DeleteConfiguration(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.PricingSvc.DeleteConfiguration(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Pricing configuration deleted", nil)
}

// ----------------------------------------------------
// Ranges
// ----------------------------------------------------

func (ctrl *PricingController) ListRanges(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	out, err := ctrl.PricingSvc.ListRanges(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, out)
}

func (ctrl *PricingController) CreateRange(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload services.PricingRangeInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	pr, err := ctrl.PricingSvc.CreateRange(c.Request.Context(), actor, id, payload)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusCreated, "Pricing range created", pr)
}

func (ctrl *PricingController) UpdateRange(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "rangeId")
	if !ok {
		return
	}
	var payload services.PricingRangeInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	pr, err := ctrl.PricingSvc.UpdateRange(c.Request.Context(), actor, id, payload)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Pricing range updated", pr)
}

func (ctrl *PricingController) DeleteRange(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "rangeId")
	if !ok {
		return
	}
	if err := ctrl.PricingSvc.DeleteRange(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Pricing range deleted", nil)
}
