// controllers/booking_controller.go
package controllers

import (
	"net/http"
	"strings"

	"hotel-pms/models"
	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BookingController struct {
	BookingSvc *services.BookingService
}

func NewBookingController(svc *services.BookingService) *BookingController {
	return &BookingController{BookingSvc: svc}
}

// ---------------------------
// Payload / DTOs
// ---------------------------

// ExtendPayload accepts the hours under either name.
type ExtendPayload struct {
	HorasAdicionales *decimal.Decimal `json:"horas_adicionales"`
	AdditionalHours  *decimal.Decimal `json:"additional_hours"`
}

type bookingListItem struct {
	models.Booking
	StatusLabel   string `json:"status_label"`
	QuantityLabel string `json:"quantity_label"`
}

// ---------------------------
// Create / read
// ---------------------------

// CreateBooking (POST /api/bookings)
func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload services.CreateBookingInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	res, err := ctrl.BookingSvc.CreateBooking(c.Request.Context(), actor, payload)
	if err != nil {
		respondError(c, err, ErrorFields{RoomID: payload.RoomID})
		return
	}
	utils.SuccessWithMessage(c, http.StatusCreated, "Booking created", res)
}

// GetBookings (GET /api/bookings)
func (ctrl *BookingController) GetBookings(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	from, ok := queryTime(c, "date_from")
	if !ok {
		return
	}
	to, ok := queryTime(c, "date_to")
	if !ok {
		return
	}
	page, perPage := services.NormalizePage(queryInt(c, "page", 1), queryInt(c, "per_page", 15))
	filter := services.BookingFilter{
		Status:          models.BookingStatus(strings.TrimSpace(c.Query("status"))),
		RoomID:          queryUint(c, "room_id"),
		CustomerID:      queryUint(c, "customer_id"),
		PaymentMethodID: queryUint(c, "payment_method_id"),
		Search:          c.Query("search"),
		DateFrom:        from,
		DateTo:          to,
		SortBy:          c.Query("sort_by"),
		SortDesc:        strings.EqualFold(c.Query("sort_order"), "desc"),
		Page:            page,
		PerPage:         perPage,
	}
	bookings, total, err := ctrl.BookingSvc.ListBookings(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	items := make([]bookingListItem, 0, len(bookings))
	for i := range bookings {
		items = append(items, bookingListItem{
			Booking:       bookings[i],
			StatusLabel:   bookings[i].Status.Label(),
			QuantityLabel: services.QuantityLabel(&bookings[i]),
		})
	}
	utils.Paginated(c, http.StatusOK, items, page, perPage, total)
}

// GetBookingDetails (GET /api/bookings/:id)
func (ctrl *BookingController) GetBookingDetails(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	details, err := ctrl.BookingSvc.GetBookingDetails(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, ErrorFields{BookingID: id})
		return
	}
	utils.Success(c, http.StatusOK, details)
}

// GetTicket (GET /api/bookings/:id/ticket)
func (ctrl *BookingController) GetTicket(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ticket, err := ctrl.BookingSvc.Ticket(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, ErrorFields{BookingID: id})
		return
	}
	utils.Success(c, http.StatusOK, ticket)
}

// GetEvents (GET /api/bookings/:id/events)
func (ctrl *BookingController) GetEvents(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	events, err := ctrl.BookingSvc.ListEvents(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, ErrorFields{BookingID: id})
		return
	}
	utils.Success(c, http.StatusOK, events)
}

// ---------------------------
// Lifecycle
// ---------------------------

// CheckIn (POST /api/bookings/:id/check-in)
func (ctrl *BookingController) CheckIn(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := ctrl.BookingSvc.CheckIn(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, ErrorFields{BookingID: id})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Checked in", booking)
}

// Cancel (POST /api/bookings/:id/cancel)
func (ctrl *BookingController) Cancel(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload services.CancelInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			bindError(c, err)
			return
		}
	}
	booking, err := ctrl.BookingSvc.Cancel(c.Request.Context(), actor, id, payload)
	if err != nil {
		respondError(c, err, ErrorFields{BookingID: id})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Booking cancelled", booking)
}

// Finish (POST /api/bookings/:id/finish)
func (ctrl *BookingController) Finish(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload services.FinishInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			bindError(c, err)
			return
		}
	}
	res, err := ctrl.BookingSvc.Finish(c.Request.Context(), actor, id, payload)
	if err != nil {
		respondError(c, err, ErrorFields{BookingID: id})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Checkout completed", res)
}

// Extend (POST /api/bookings/:id/extend)
func (ctrl *BookingController) Extend(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload ExtendPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	hours, err := services.ParseExtendHours(payload.HorasAdicionales, payload.AdditionalHours)
	if err != nil {
		respondError(c, err, ErrorFields{BookingID: id})
		return
	}
	res, err := ctrl.BookingSvc.Extend(c.Request.Context(), actor, id, hours)
	if err != nil {
		respondError(c, err, ErrorFields{BookingID: id})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Booking extended", res)
}

// ---------------------------
// Room-scoped checkout
// ---------------------------

// CheckoutDetails (GET /api/rooms/:id/checkout-details)
func (ctrl *BookingController) CheckoutDetails(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}
	details, err := ctrl.BookingSvc.CheckoutDetails(c.Request.Context(), actor, roomID)
	if err != nil {
		respondError(c, err, ErrorFields{RoomID: roomID})
		return
	}
	utils.Success(c, http.StatusOK, details)
}

// ChargeExtraTime (POST /api/rooms/:id/charge-extra-time)
func (ctrl *BookingController) ChargeExtraTime(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := ctrl.BookingSvc.ChargeExtraTime(c.Request.Context(), actor, roomID)
	if err != nil {
		respondError(c, err, ErrorFields{RoomID: roomID})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Extra time charged", res)
}

// CheckoutRoom (POST /api/rooms/:id/checkout)
func (ctrl *BookingController) CheckoutRoom(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload services.FinishInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			bindError(c, err)
			return
		}
	}
	res, err := ctrl.BookingSvc.CheckoutRoom(c.Request.Context(), actor, roomID, payload)
	if err != nil {
		respondError(c, err, ErrorFields{RoomID: roomID})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Checkout completed", res)
}
