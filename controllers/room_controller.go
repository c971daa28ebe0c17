package controllers

import (
	"net/http"
	"strings"

	"hotel-pms/models"
	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

type RoomController struct {
	RoomSvc *services.RoomService
}

func NewRoomController(svc *services.RoomService) *RoomController {
	return &RoomController{RoomSvc: svc}
}

// ----------------------------------------------------
// GET /api/rooms
// ----------------------------------------------------

func (ctrl *RoomController) GetRooms(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	rooms, err := ctrl.RoomSvc.List(c.Request.Context(), actor, services.RoomFilter{
		Status:     models.RoomStatus(strings.TrimSpace(c.Query("status"))),
		RoomTypeID: queryUint(c, "room_type_id"),
		Floor:      c.Query("floor"),
		Search:     c.Query("search"),
	})
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, rooms)
}

func (ctrl *RoomController) GetRoom(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	room, err := ctrl.RoomSvc.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, ErrorFields{RoomID: id})
		return
	}
	utils.Success(c, http.StatusOK, room)
}

// ----------------------------------------------------
// POST /api/rooms
// ----------------------------------------------------

func (ctrl *RoomController) CreateRoom(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload services.RoomInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	room, err := ctrl.RoomSvc.Create(c.Request.Context(), actor, payload)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusCreated, "Room created", room)
}

// ----------------------------------------------------
// PUT /api/rooms/:id
// ----------------------------------------------------

func (ctrl *RoomController) UpdateRoom(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload services.RoomInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	room, err := ctrl.RoomSvc.Update(c.Request.Context(), actor, id, payload)
	if err != nil {
		respondError(c, err, ErrorFields{RoomID: id})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Room updated", room)
}

// ----------------------------------------------------
// DELETE /api/rooms/:id
// ----------------------------------------------------

func (ctrl *RoomController) DeleteRoom(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.RoomSvc.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, ErrorFields{RoomID: id})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Room deleted", nil)
}

// ----------------------------------------------------
// Status
// ----------------------------------------------------

// ChangeStatus (PATCH /api/rooms/:id/status)
func (ctrl *RoomController) ChangeStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload services.RoomStatusInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	room, err := ctrl.RoomSvc.ChangeStatus(c.Request.Context(), actor, id, payload)
	if err != nil {
		respondError(c, err, ErrorFields{RoomID: id})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Room status updated", room)
}

// Release (POST /api/rooms/:id/release)
func (ctrl *RoomController) Release(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	room, err := ctrl.RoomSvc.Release(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, ErrorFields{RoomID: id})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Room released", room)
}

func (ctrl *RoomController) StatusLogs(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	logs, err := ctrl.RoomSvc.StatusLogs(c.Request.Context(), actor, id, queryInt(c, "limit", 50))
	if err != nil {
		respondError(c, err, ErrorFields{RoomID: id})
		return
	}
	utils.Success(c, http.StatusOK, logs)
}

func (ctrl *RoomController) Stats(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	stats, err := ctrl.RoomSvc.Stats(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, stats)
}
