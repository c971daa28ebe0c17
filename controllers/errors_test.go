package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"hotel-pms/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success         bool   `json:"success"`
	RequiresPayment bool   `json:"requires_payment"`
	Balance         string `json:"balance"`

	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	router := gin.New()
	router.GET("/x", func(c *gin.Context) { respondError(c, err, ErrorFields{BookingID: 1}) })
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	assert.False(t, body.Success)
	return w, body
}

func TestRespondError_Mappings(t *testing.T) {
	cases := []struct {
		err      error
		wantCode int
		wantErr  string
	}{
		{services.ErrBookingNotFound, http.StatusNotFound, "BOOKING_NOT_FOUND"},
		{fmt.Errorf("load: %w", services.ErrRoomNotFound), http.StatusNotFound, "ROOM_NOT_FOUND"},
		{gorm.ErrRecordNotFound, http.StatusNotFound, "NOT_FOUND"},
		{services.ErrRoomUnavailable, http.StatusUnprocessableEntity, "ROOM_UNAVAILABLE"},
		{services.ErrAlreadyCheckedIn, http.StatusConflict, "ALREADY_CHECKED_IN"},
		{services.ErrNotOverdue, http.StatusUnprocessableEntity, "NOT_OVERDUE"},
		{services.ErrForeignCashSession, http.StatusForbidden, "CASH_SESSION_NOT_OWNED"},
		{services.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{errors.New("UNIQUE constraint failed: rooms.room_number"), http.StatusConflict, "DUPLICATE"},
		{errors.New("FOREIGN KEY constraint failed"), http.StatusBadRequest, "INVALID_REFERENCE"},
		{errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.wantErr, func(t *testing.T) {
			w, body := respond(t, tc.err)

			assert.Equal(t, tc.wantCode, w.Code)
			assert.Equal(t, tc.wantErr, body.Error.Code)
		})
	}
}

func TestRespondError_InternalErrorHidesCause(t *testing.T) {
	_, body := respond(t, errors.New("dial tcp 10.0.0.5:3306: i/o timeout"))

	assert.NotContains(t, body.Error.Message, "10.0.0.5")
}

func TestRespondError_Validation(t *testing.T) {
	w, body := respond(t, &services.ValidationError{Fields: map[string]string{"quantity": "min"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.JSONEq(t, `{"quantity":"min"}`, string(body.Error.Details))
}

func TestRespondError_PendingBalance(t *testing.T) {
	err := fmt.Errorf("finish booking: %w", &services.PendingBalanceError{Balance: decimal.RequireFromString("6")})

	w, body := respond(t, err)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.True(t, body.RequiresPayment)
	assert.Equal(t, "PAYMENT_REQUIRED", body.Error.Code)
	assert.Contains(t, body.Error.Message, "6.00")
	assert.Equal(t, "6", body.Balance)
}

func TestRespondError_InsufficientStock(t *testing.T) {
	w, body := respond(t, &services.InsufficientStockError{ProductID: 3, Available: 15, Requested: 16})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Error.Code)
	assert.JSONEq(t, `{"product_id":3,"available":15,"requested":16}`, string(body.Error.Details))
}
