package controllers

import (
	"net/http"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

type RoleController struct {
	RoleSvc *services.RoleService
}

func NewRoleController(svc *services.RoleService) *RoleController {
	return &RoleController{RoleSvc: svc}
}

type rolePermissionsPayload struct {
	Permissions []string `json:"permissions"`
}

func (ctrl *RoleController) GetRoles(c *gin.Context) {
	roles, err := ctrl.RoleSvc.ListRoles(c.Request.Context())
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, roles)
}

// UpdateRolePermissions (PUT /api/roles/:id/permissions). :id may also be
// the role name.
func (ctrl *RoleController) UpdateRolePermissions(c *gin.Context) {
	var payload rolePermissionsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	perms, err := ctrl.RoleSvc.UpdateRolePermissions(c.Request.Context(), c.Param("id"), payload.Permissions)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "permissions updated", gin.H{"permissions": perms})
}
