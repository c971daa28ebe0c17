package controllers

import (
	"net/http"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CashRegisterController struct {
	PaymentSvc *services.PaymentService
}

func NewCashRegisterController(svc *services.PaymentService) *CashRegisterController {
	return &CashRegisterController{PaymentSvc: svc}
}

type openSessionPayload struct {
	OpeningAmount decimal.Decimal `json:"opening_amount"`
}

type closeSessionPayload struct {
	ClosingAmount decimal.Decimal `json:"closing_amount"`
}

func (ctrl *CashRegisterController) GetRegisters(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	regs, err := ctrl.PaymentSvc.ListRegisters(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, regs)
}

// Open (POST /api/cash-registers/:id/open)
func (ctrl *CashRegisterController) Open(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload openSessionPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			bindError(c, err)
			return
		}
	}
	session, err := ctrl.PaymentSvc.OpenSession(c.Request.Context(), actor, id, payload.OpeningAmount)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Cash register opened", session)
}

// Close (POST /api/cash-registers/:id/close)
func (ctrl *CashRegisterController) Close(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload closeSessionPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			bindError(c, err)
			return
		}
	}
	session, err := ctrl.PaymentSvc.CloseSession(c.Request.Context(), actor, id, payload.ClosingAmount)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Cash register closed", session)
}
