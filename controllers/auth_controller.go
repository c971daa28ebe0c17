package controllers

import (
	"net/http"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthSvc *services.AuthService
}

func NewAuthController(svc *services.AuthService) *AuthController {
	return &AuthController{AuthSvc: svc}
}

// Login (POST /api/auth/login)
func (ctrl *AuthController) Login(c *gin.Context) {
	var payload services.LoginInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	res, err := ctrl.AuthSvc.Login(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, res)
}

// Me (GET /api/auth/me)
func (ctrl *AuthController) Me(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	perms, err := ctrl.AuthSvc.Permissions(c.Request.Context(), actor.ActorID)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, gin.H{
		"user_id":     actor.ActorID,
		"branch_id":   actor.BranchID,
		"permissions": perms,
	})
}
