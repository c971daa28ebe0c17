package controllers

import (
	"net/http"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserSvc *services.UserService
}

func NewUserController(svc *services.UserService) *UserController {
	return &UserController{UserSvc: svc}
}

type assignRolePayload struct {
	Role string `json:"role"`
}

func (ctrl *UserController) GetUsers(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	users, err := ctrl.UserSvc.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, users)
}

func (ctrl *UserController) CreateUser(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload services.CreateUserInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	user, err := ctrl.UserSvc.Create(c.Request.Context(), actor, payload)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusCreated, "User created", user)
}

// AssignRole (PUT /api/users/:id/role)
func (ctrl *UserController) AssignRole(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload assignRolePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	if err := ctrl.UserSvc.AssignRole(c.Request.Context(), actor, id, payload.Role); err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Role assigned", nil)
}

func (ctrl *UserController) DeleteUser(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.UserSvc.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "User deleted", nil)
}
