package controllers

import (
	"net/http"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

type ConsumptionController struct {
	ConsumptionSvc *services.ConsumptionService
}

func NewConsumptionController(svc *services.ConsumptionService) *ConsumptionController {
	return &ConsumptionController{ConsumptionSvc: svc}
}

type AddConsumptionsPayload struct {
	Consumptions []services.ConsumptionItem `json:"consumptions"`
}

type UpdateConsumptionPayload struct {
	Quantity int `json:"quantity"`
}

// AddConsumptions (POST /api/bookings/:id/consumptions)
func (ctrl *ConsumptionController) AddConsumptions(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	bookingID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload AddConsumptionsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	res, err := ctrl.ConsumptionSvc.AddConsumptions(c.Request.Context(), actor, bookingID, payload.Consumptions)
	if err != nil {
		respondError(c, err, ErrorFields{BookingID: bookingID})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Consumptions added", res)
}

// UpdateConsumption (PUT /api/consumptions/:id)
func (ctrl *ConsumptionController) UpdateConsumption(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload UpdateConsumptionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	res, err := ctrl.ConsumptionSvc.UpdateConsumption(c.Request.Context(), actor, id, payload.Quantity)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Consumption updated", res)
}

// DeleteConsumption (DELETE /api/consumptions/:id)
func (ctrl *ConsumptionController) DeleteConsumption(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := ctrl.ConsumptionSvc.DeleteConsumption(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Consumption removed", booking)
}

// MarkPaid (POST /api/consumptions/:id/pay)
func (ctrl *ConsumptionController) MarkPaid(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	cons, err := ctrl.ConsumptionSvc.MarkPaid(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Consumption marked as paid", cons)
}
