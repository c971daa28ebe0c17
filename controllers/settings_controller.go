package controllers

import (
	"net/http"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

type SettingsController struct {
	SettingsSvc *services.SettingsService
}

func NewSettingsController(svc *services.SettingsService) *SettingsController {
	return &SettingsController{SettingsSvc: svc}
}

// GetTaxSettings (GET /api/settings/tax)
func (ctrl *SettingsController) GetTaxSettings(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	setting, err := ctrl.SettingsSvc.GetTaxSetting(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, setting)
}

// UpdateTaxSettings (PUT /api/settings/tax)
func (ctrl *SettingsController) UpdateTaxSettings(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload services.TaxSettingInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	setting, err := ctrl.SettingsSvc.UpdateTaxSetting(c.Request.Context(), actor, payload)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Tax settings updated", setting)
}
