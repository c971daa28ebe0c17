package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrBookingNotFound       = errors.New("booking_not_found")
	ErrRoomNotFound          = errors.New("room_not_found")
	ErrProductNotFound       = errors.New("product_not_found")
	ErrCustomerNotFound      = errors.New("customer_not_found")
	ErrRateTypeNotFound      = errors.New("rate_type_not_found")
	ErrConsumptionNotFound   = errors.New("consumption_not_found")
	ErrCashRegisterNotFound  = errors.New("cash_register_not_found")
	ErrPaymentMethodNotFound = errors.New("payment_method_not_found")
	ErrPricingNotFound       = errors.New("pricing_not_found")
	ErrRoleNotFound          = errors.New("role_not_found")
	ErrUserNotFound          = errors.New("user_not_found")

	ErrRoomUnavailable       = errors.New("room_unavailable")
	ErrRoomHasActiveBooking  = errors.New("room_has_active_booking")
	ErrInvalidRoomTransition = errors.New("invalid_room_transition")
	ErrNoActiveBooking       = errors.New("no_active_booking")

	ErrInvalidTransition   = errors.New("invalid_booking_transition")
	ErrAlreadyCheckedIn    = errors.New("already_checked_in")
	ErrBookingNotCheckedIn = errors.New("booking_not_checked_in")
	ErrNotOverdue          = errors.New("booking_not_overdue")

	ErrProductNotInBranch = errors.New("product not available in this branch")
	ErrInsufficientStock  = errors.New("insufficient_stock")
	ErrConsumptionPaid    = errors.New("consumption_already_paid")

	ErrNoOpenCashRegister = errors.New("no_open_cash_register")
	ErrCashRegisterClosed = errors.New("cash_register_not_open")
	ErrForeignCashSession = errors.New("cash_session_not_owned")
	ErrReferenceRequired  = errors.New("payment_reference_required")
	ErrCashRegisterOpen   = errors.New("cash_register_already_open")
	ErrPaymentRequired    = errors.New("payment_required")

	ErrPricingOverlap = errors.New("pricing_range_overlap")

	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrForbidden          = errors.New("forbidden")
)

// ValidationError carries field-level messages for input rejected before any
// transaction is opened.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %v", e.Fields)
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

type InsufficientStockError struct {
	ProductID uint
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock, available %d", e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// PendingBalanceError aborts a checkout that would leave money owed. The
// breakdown is what the caller needs to collect payment and retry.
type PendingBalanceError struct {
	Balance   decimal.Decimal
	Breakdown CheckoutBreakdown
}

func (e *PendingBalanceError) Error() string {
	return fmt.Sprintf("pending balance %s", e.Balance.StringFixed(2))
}

func (e *PendingBalanceError) Unwrap() error { return ErrPaymentRequired }
