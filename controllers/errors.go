package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Order matters only for wrapped errors that match more than one target.
var errorTable = []errorMapping{
	{services.ErrBookingNotFound, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found"},
	{services.ErrRoomNotFound, http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found"},
	{services.ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found"},
	{services.ErrCustomerNotFound, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found"},
	{services.ErrRateTypeNotFound, http.StatusNotFound, "RATE_TYPE_NOT_FOUND", "Rate type not found"},
	{services.ErrConsumptionNotFound, http.StatusNotFound, "CONSUMPTION_NOT_FOUND", "Consumption not found"},
	{services.ErrCashRegisterNotFound, http.StatusNotFound, "CASH_REGISTER_NOT_FOUND", "Cash register not found"},
	{services.ErrPaymentMethodNotFound, http.StatusNotFound, "PAYMENT_METHOD_NOT_FOUND", "Payment method not found"},
	{services.ErrPricingNotFound, http.StatusNotFound, "PRICING_NOT_FOUND", "No pricing configured for this combination"},
	{services.ErrRoleNotFound, http.StatusNotFound, "ROLE_NOT_FOUND", "Role not found"},
	{services.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", "User not found"},
	{services.ErrNoActiveBooking, http.StatusNotFound, "NO_ACTIVE_BOOKING", "Room has no active booking"},
	{gorm.ErrRecordNotFound, http.StatusNotFound, "NOT_FOUND", "Resource not found"},

	{services.ErrRoomUnavailable, http.StatusUnprocessableEntity, "ROOM_UNAVAILABLE", "Room is not available"},
	{services.ErrRoomHasActiveBooking, http.StatusConflict, "ROOM_HAS_ACTIVE_BOOKING", "Room already has an active booking"},
	{services.ErrInvalidRoomTransition, http.StatusUnprocessableEntity, "INVALID_ROOM_TRANSITION", "Room status change not allowed"},
	{services.ErrAlreadyCheckedIn, http.StatusConflict, "ALREADY_CHECKED_IN", "Booking is already checked in"},
	{services.ErrInvalidTransition, http.StatusUnprocessableEntity, "INVALID_BOOKING_TRANSITION", "Booking status does not allow this operation"},
	{services.ErrBookingNotCheckedIn, http.StatusUnprocessableEntity, "BOOKING_NOT_CHECKED_IN", "Booking is not checked in"},
	{services.ErrNotOverdue, http.StatusUnprocessableEntity, "NOT_OVERDUE", "Booking has not exceeded its scheduled time"},
	{services.ErrProductNotInBranch, http.StatusUnprocessableEntity, "PRODUCT_NOT_IN_BRANCH", "Product is not stocked in this branch"},
	{services.ErrConsumptionPaid, http.StatusUnprocessableEntity, "CONSUMPTION_PAID", "Consumption is already paid"},
	{services.ErrNoOpenCashRegister, http.StatusUnprocessableEntity, "NO_OPEN_CASH_REGISTER", "Open a cash register session first"},
	{services.ErrCashRegisterClosed, http.StatusUnprocessableEntity, "CASH_REGISTER_CLOSED", "Cash register is not open"},
	{services.ErrForeignCashSession, http.StatusForbidden, "CASH_SESSION_NOT_OWNED", "Cash register session belongs to another user"},
	{services.ErrReferenceRequired, http.StatusUnprocessableEntity, "PAYMENT_REFERENCE_REQUIRED", "Payment method requires an operation number"},
	{services.ErrCashRegisterOpen, http.StatusConflict, "CASH_REGISTER_OPEN", "Cash register is already open"},
	{services.ErrPricingOverlap, http.StatusUnprocessableEntity, "PRICING_RANGE_OVERLAP", "Range overlaps an existing range"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password"},
	{services.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Not allowed"},
}

// ErrorFields are attached to the log line of an unexpected failure.
type ErrorFields struct {
	BookingID uint
	RoomID    uint
}

// respondError translates a service error into the JSON envelope. Anything
// not recognised is logged and reported as a generic 500.
func respondError(c *gin.Context, err error, fields ErrorFields) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		utils.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid input", verr.Fields)
		return
	}
	var pending *services.PendingBalanceError
	if errors.As(err, &pending) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success":          false,
			"requires_payment": true,
			"error": gin.H{
				"code":    "PAYMENT_REQUIRED",
				"message": "Outstanding balance " + pending.Balance.StringFixed(2) + " must be paid before checkout",
			},
			"balance":   pending.Balance,
			"breakdown": pending.Breakdown,
		})
		return
	}
	var stock *services.InsufficientStockError
	if errors.As(err, &stock) {
		utils.ErrorWithDetails(c, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK", "Insufficient stock", gin.H{
			"product_id": stock.ProductID,
			"available":  stock.Available,
			"requested":  stock.Requested,
		})
		return
	}
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			utils.Error(c, m.status, m.code, m.message)
			return
		}
	}
	switch {
	case isDuplicateKeyError(err):
		utils.Error(c, http.StatusConflict, "DUPLICATE", "A record with the same key already exists")
		return
	case isForeignKeyError(err):
		utils.Error(c, http.StatusBadRequest, "INVALID_REFERENCE", "Referenced record does not exist")
		return
	}

	actor, _ := actorFrom(c)
	log.Printf("error: %s %s booking_id=%d room_id=%d actor_id=%d branch_id=%d: %v",
		c.Request.Method, c.FullPath(), fields.BookingID, fields.RoomID, actor.ActorID, actor.BranchID, err)
	utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error, please try again")
}

func isForeignKeyError(err error) bool {
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == 1452
	}
	return errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

func isDuplicateKeyError(err error) bool {
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == 1062
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint failed") || strings.Contains(lower, "duplicate key")
}

// bindError reports malformed JSON bodies.
func bindError(c *gin.Context, err error) {
	utils.ErrorWithDetails(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Invalid request payload", err.Error())
}
