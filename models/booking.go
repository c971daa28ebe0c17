package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checked_in"
	BookingCheckedOut BookingStatus = "checked_out"
	BookingCancelled  BookingStatus = "cancelled"
)

// ActiveBookingStatuses are the non-terminal states that hold a room.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingCheckedIn}

func (s BookingStatus) Terminal() bool {
	return s == BookingCheckedOut || s == BookingCancelled
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCheckedIn || next == BookingCancelled
	case BookingCheckedIn:
		return next == BookingCheckedOut || next == BookingCancelled
	case BookingCheckedOut, BookingCancelled:
		return false
	}
	return false
}

func (s BookingStatus) Label() string {
	switch s {
	case BookingPending:
		return "Pending"
	case BookingConfirmed:
		return "Confirmed"
	case BookingCheckedIn:
		return "In service"
	case BookingCheckedOut:
		return "Finished"
	case BookingCancelled:
		return "Cancelled"
	}
	return string(s)
}

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BookingCode string `gorm:"size:32;uniqueIndex;not null" json:"booking_code"`
	BranchID    uint   `gorm:"not null;index" json:"branch_id"`
	RoomID      uint   `gorm:"not null;index" json:"room_id"`
	CustomerID  uint   `gorm:"not null;index" json:"customer_id"`
	RateTypeID  uint   `gorm:"not null" json:"rate_type_id"`
	CurrencyID  uint   `gorm:"not null" json:"currency_id"`

	CheckIn    time.Time       `gorm:"not null" json:"check_in"`
	CheckOut   time.Time       `gorm:"not null" json:"check_out"`
	TotalHours decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_hours"`
	Quantity   int             `gorm:"not null" json:"quantity"`

	RatePerHour      decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"rate_per_hour"`
	RoomSubtotal     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"room_subtotal"`
	ProductsSubtotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"products_subtotal"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_amount"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	PaidAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"paid_amount"`

	Status         BookingStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ActualCheckOut *time.Time    `json:"actual_check_out,omitempty"`
	ActualHours    *int          `json:"actual_hours,omitempty"`
	FinishType     string        `gorm:"size:20" json:"finish_type,omitempty"`
	FinishedBy     *uint         `json:"finished_by,omitempty"`
	CancelledAt    *time.Time    `json:"cancelled_at,omitempty"`
	CancelReason   string        `gorm:"size:255" json:"cancel_reason,omitempty"`
	VoucherType    string        `gorm:"size:20" json:"voucher_type"`
	Notes          string        `gorm:"type:text" json:"notes,omitempty"`

	CreatedBy uint           `json:"created_by"`
	UpdatedBy uint           `json:"updated_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Room         Room                 `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Customer     Customer             `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	RateType     RateType             `gorm:"foreignKey:RateTypeID" json:"rate_type,omitempty"`
	Currency     Currency             `gorm:"foreignKey:CurrencyID" json:"currency,omitempty"`
	Consumptions []BookingConsumption `gorm:"foreignKey:BookingID" json:"consumptions,omitempty"`
	Payments     []Payment            `gorm:"foreignKey:BookingID" json:"payments,omitempty"`
}

// Balance may be negative on overpayment.
func (b *Booking) Balance() decimal.Decimal {
	return b.TotalAmount.Sub(b.PaidAmount)
}

// AddHours extends the contracted duration and returns how much the room
// charge grew. Non-positive values are ignored so total_hours never decreases.
func (b *Booking) AddHours(hours decimal.Decimal) decimal.Decimal {
	if !hours.IsPositive() {
		return decimal.Zero
	}
	before := b.RoomSubtotal
	b.TotalHours = b.TotalHours.Add(hours)
	b.SyncRoomSubtotal()
	return b.RoomSubtotal.Sub(before)
}

// SyncRoomSubtotal sets room_subtotal = total_hours × rate_per_hour.
func (b *Booking) SyncRoomSubtotal() {
	b.RoomSubtotal = b.TotalHours.Mul(b.RatePerHour).Round(2)
}

// RecalculateTotals derives room_subtotal, subtotal, tax and total. taxRate
// is a flat percentage, zero when tax is already included in prices.
func (b *Booking) RecalculateTotals(taxRate decimal.Decimal) {
	b.SyncRoomSubtotal()
	b.Subtotal = b.RoomSubtotal.Add(b.ProductsSubtotal)
	b.TaxAmount = b.Subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)
	b.TotalAmount = b.Subtotal.Add(b.TaxAmount).Sub(b.DiscountAmount)
}
