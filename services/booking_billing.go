package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotel-pms/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	FinishManual = "manual"
	FinishForced = "forced"
)

// CheckoutBreakdown is the time and money picture at the moment of checkout.
// It is also returned, unpersisted, when checkout is refused for a balance.
type CheckoutBreakdown struct {
	ContractedHours decimal.Decimal `json:"contracted_hours"`
	MinutesUsed     int             `json:"minutes_used"`
	HoursUsed       decimal.Decimal `json:"hours_used"`
	Overstayed      bool            `json:"overstayed"`
	ExtraHours      int             `json:"extra_hours"`
	ExtraAmount     decimal.Decimal `json:"extra_amount"`
	Breakdown
}

func checkoutBreakdown(b *models.Booking, contracted decimal.Decimal, minutesUsed, extraHours int, extraAmount decimal.Decimal) CheckoutBreakdown {
	return CheckoutBreakdown{
		ContractedHours: contracted,
		MinutesUsed:     minutesUsed,
		HoursUsed:       decimal.NewFromInt(int64(minutesUsed)).Div(decimal.NewFromInt(60)).Round(2),
		Overstayed:      extraHours > 0,
		ExtraHours:      extraHours,
		ExtraAmount:     extraAmount,
		Breakdown:       breakdownOf(b),
	}
}

type FinishInput struct {
	Payments      []PaymentInput `json:"payments" validate:"dive"`
	Notes         string         `json:"notes" validate:"max=1000"`
	ForceCheckout bool           `json:"force_checkout"`
}

type FinishResult struct {
	Booking      *models.Booking   `json:"booking"`
	CheckOutTime time.Time         `json:"check_out_time"`
	FinalBalance decimal.Decimal   `json:"final_balance"`
	Summary      CheckoutBreakdown `json:"summary"`
}

// finish bills any overstay, applies the payments and closes the booking.
// A positive balance without force returns *PendingBalanceError, which makes
// the surrounding transaction roll everything back.
func (s *BookingService) finish(tx *gorm.DB, actor ActorContext, booking *models.Booking, room *models.Room, in FinishInput, now time.Time) (CheckoutBreakdown, error) {
	if booking.Status != models.BookingCheckedIn {
		return CheckoutBreakdown{}, ErrBookingNotCheckedIn
	}

	contracted := booking.TotalHours
	minutesUsed := wholeMinutes(now.Sub(booking.CheckIn))
	extra := OverstayHours(booking.CheckIn, now, contracted)
	extraAmount := booking.AddHours(decimal.NewFromInt(int64(extra)))
	if err := recalculateAndSave(tx, actor, booking); err != nil {
		return CheckoutBreakdown{}, err
	}
	if extra > 0 {
		if err := recordEvent(tx, booking.ID, models.EventOverstayRegularized, actor, now, map[string]interface{}{
			"source":       "checkout",
			"extra_hours":  extra,
			"extra_amount": extraAmount,
			"minutes_used": minutesUsed,
		}); err != nil {
			return CheckoutBreakdown{}, err
		}
	}

	if len(in.Payments) > 0 {
		note := "checkout payment"
		if extra > 0 {
			note = fmt.Sprintf("checkout payment, includes %dh extra (%s)", extra, extraAmount.StringFixed(2))
		}
		paid, payments, err := s.Payments.applyPayments(tx, actor, booking, in.Payments, note)
		if err != nil {
			return CheckoutBreakdown{}, err
		}
		booking.PaidAmount = booking.PaidAmount.Add(paid)
		if err := recalculateAndSave(tx, actor, booking); err != nil {
			return CheckoutBreakdown{}, err
		}
		if err := recordEvent(tx, booking.ID, models.EventPaymentApplied, actor, now, paymentPayload(payments, paid)); err != nil {
			return CheckoutBreakdown{}, err
		}
	}

	summary := checkoutBreakdown(booking, contracted, minutesUsed, extra, extraAmount)
	balance := booking.Balance()
	if balance.IsPositive() && !in.ForceCheckout {
		return summary, &PendingBalanceError{Balance: balance, Breakdown: summary}
	}

	finishType := FinishManual
	if balance.IsPositive() {
		finishType = FinishForced
	}
	actualHours := UsedHours(booking.CheckIn, now)
	booking.ActualCheckOut = &now
	booking.ActualHours = &actualHours
	booking.FinishType = finishType
	booking.FinishedBy = &actor.ActorID
	booking.Status = models.BookingCheckedOut
	appendNote(booking, now, in.Notes)
	if err := recalculateAndSave(tx, actor, booking); err != nil {
		return summary, err
	}
	if err := transitionRoom(tx, room, models.RoomCleaning, &booking.ID, actor, "checkout "+booking.BookingCode, now, map[string]interface{}{
		"finish_type": finishType,
	}); err != nil {
		return summary, err
	}
	if err := recordEvent(tx, booking.ID, models.EventCheckedOut, actor, now, map[string]interface{}{
		"finish_type":  finishType,
		"actual_hours": actualHours,
		"extra_hours":  extra,
		"balance":      balance,
	}); err != nil {
		return summary, err
	}
	return checkoutBreakdown(booking, contracted, minutesUsed, extra, extraAmount), nil
}

// Finish checks a booking out. The room always goes to cleaning, never
// straight back to available.
func (s *BookingService) Finish(ctx context.Context, actor ActorContext, bookingID uint, in FinishInput) (*FinishResult, error) {
	if fields := validateInput(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	now := s.Clock.Now()
	var summary CheckoutBreakdown
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, room, err := lockBookingWithRoom(tx, actor, bookingID)
		if err != nil {
			return err
		}
		summary, err = s.finish(tx, actor, booking, room, in, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.finishResult(ctx, actor, bookingID, now, summary, len(in.Payments))
}

// CheckoutRoom is the room-centric checkout of the room's active booking.
func (s *BookingService) CheckoutRoom(ctx context.Context, actor ActorContext, roomID uint, in FinishInput) (*FinishResult, error) {
	if fields := validateInput(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	now := s.Clock.Now()
	var (
		summary   CheckoutBreakdown
		bookingID uint
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, room, err := lockActiveBookingForRoom(tx, actor, roomID)
		if err != nil {
			return err
		}
		bookingID = booking.ID
		summary, err = s.finish(tx, actor, booking, room, in, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.finishResult(ctx, actor, bookingID, now, summary, len(in.Payments))
}

func (s *BookingService) finishResult(ctx context.Context, actor ActorContext, bookingID uint, now time.Time, summary CheckoutBreakdown, payments int) (*FinishResult, error) {
	booking, err := s.loadBooking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	s.Metrics.Checkout(booking.FinishType)
	s.Metrics.OverstayBilled("checkout", summary.ExtraHours)
	s.Metrics.PaymentsReceived(payments)
	return &FinishResult{
		Booking:      booking,
		CheckOutTime: now,
		FinalBalance: booking.Balance(),
		Summary:      summary,
	}, nil
}

type CheckoutDetails struct {
	BookingID           uint            `json:"booking_id"`
	BookingCode         string          `json:"booking_code"`
	Customer            string          `json:"customer"`
	CheckIn             time.Time       `json:"check_in"`
	CheckOut            time.Time       `json:"check_out"`
	MinutesUsed         int             `json:"minutes_used"`
	TotalTime           string          `json:"total_time"`
	ExtraHours          int             `json:"extra_hours"`
	HasExtraCharges     bool            `json:"has_extra_charges"`
	ExtraCharges        decimal.Decimal `json:"extra_charges"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	PaidAmount          decimal.Decimal `json:"paid_amount"`
	Balance             decimal.Decimal `json:"balance"`
	PendingConsumptions int             `json:"pending_consumptions"`
}

// CheckoutDetails previews what checking the room out now would cost. Nothing
// is written.
func (s *BookingService) CheckoutDetails(ctx context.Context, actor ActorContext, roomID uint) (*CheckoutDetails, error) {
	db := s.DB.WithContext(ctx)
	var room models.Room
	if err := db.Where("id = ? AND branch_id = ?", roomID, actor.BranchID).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	var b models.Booking
	err := db.Preload("Customer").Preload("Consumptions").
		Where("room_id = ? AND status = ?", room.ID, models.BookingCheckedIn).
		Order("id DESC").
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveBooking
		}
		return nil, err
	}
	taxRate, err := branchTaxRate(db, b.BranchID)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	minutes := wholeMinutes(now.Sub(b.CheckIn))
	extra := OverstayHours(b.CheckIn, now, b.TotalHours)
	projected := b
	extraAmount := projected.AddHours(decimal.NewFromInt(int64(extra)))
	projected.RecalculateTotals(taxRate)

	pending := 0
	for _, c := range b.Consumptions {
		if c.IsPending() {
			pending++
		}
	}
	customer := b.Customer.FullName
	if customer == "" {
		customer = "No customer"
	}
	return &CheckoutDetails{
		BookingID:           b.ID,
		BookingCode:         b.BookingCode,
		Customer:            customer,
		CheckIn:             b.CheckIn,
		CheckOut:            b.CheckOut,
		MinutesUsed:         minutes,
		TotalTime:           fmt.Sprintf("%dh %dm", minutes/60, minutes%60),
		ExtraHours:          extra,
		HasExtraCharges:     extra > 0,
		ExtraCharges:        extraAmount,
		TotalAmount:         projected.TotalAmount,
		PaidAmount:          projected.PaidAmount,
		Balance:             projected.Balance(),
		PendingConsumptions: pending,
	}, nil
}

type ExtraTimeResult struct {
	Booking     *models.Booking `json:"booking"`
	ExtraHours  int             `json:"extra_hours"`
	ExtraAmount decimal.Decimal `json:"extra_amount"`
	NewTotal    decimal.Decimal `json:"new_total"`
	NewBalance  decimal.Decimal `json:"new_balance"`
	NewCheckOut time.Time       `json:"new_checkout"`
}

// ChargeExtraTime bills the hours already elapsed past check_out and
// reschedules check_out to now plus the billed hours. The room keeps its
// status; the charge is logged as an occupied -> occupied entry.
func (s *BookingService) ChargeExtraTime(ctx context.Context, actor ActorContext, roomID uint) (*ExtraTimeResult, error) {
	now := s.Clock.Now()
	var res ExtraTimeResult
	var bookingID uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, room, err := lockActiveBookingForRoom(tx, actor, roomID)
		if err != nil {
			return err
		}
		if booking.Status != models.BookingCheckedIn {
			return ErrBookingNotCheckedIn
		}
		if !now.After(booking.CheckOut) {
			return ErrNotOverdue
		}
		extra := ExtraHoursSince(booking.CheckOut, now)
		if extra == 0 {
			return ErrNotOverdue
		}

		amount := booking.AddHours(decimal.NewFromInt(int64(extra)))
		booking.CheckOut = now.Add(time.Duration(extra) * time.Hour)
		if err := recalculateAndSave(tx, actor, booking); err != nil {
			return err
		}
		reason := fmt.Sprintf("extra time charged: +%dh = %s", extra, amount.StringFixed(2))
		if err := transitionRoom(tx, room, models.RoomOccupied, &booking.ID, actor, reason, now, map[string]interface{}{
			"extra_hours":  extra,
			"extra_amount": amount,
		}); err != nil {
			return err
		}
		if err := recordEvent(tx, booking.ID, models.EventExtraTimeCharged, actor, now, map[string]interface{}{
			"extra_hours":  extra,
			"extra_amount": amount,
			"new_checkout": booking.CheckOut,
		}); err != nil {
			return err
		}
		bookingID = booking.ID
		res = ExtraTimeResult{
			ExtraHours:  extra,
			ExtraAmount: amount,
			NewTotal:    booking.TotalAmount,
			NewBalance:  booking.Balance(),
			NewCheckOut: booking.CheckOut,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Metrics.OverstayBilled("charge_extra_time", res.ExtraHours)
	if res.Booking, err = s.loadBooking(ctx, actor, bookingID); err != nil {
		return nil, err
	}
	return &res, nil
}

var minExtensionHours = decimal.RequireFromString("0.5")

type ExtendResult struct {
	Booking          *models.Booking `json:"booking"`
	PreviousCheckOut time.Time       `json:"previous_checkout"`
	NewCheckOut      time.Time       `json:"new_checkout"`
	AdditionalHours  decimal.Decimal `json:"additional_hours"`
	ExtensionCost    decimal.Decimal `json:"extension_cost"`
	RegularizedHours int             `json:"regularized_hours"`
	RegularizedCost  decimal.Decimal `json:"regularized_cost"`
	Breakdown        Breakdown       `json:"breakdown"`
}

// Extend adds hours to an in-service booking. Overstay already elapsed past
// the scheduled check_out is billed first, then the extension is counted
// from the scheduled check_out rather than from now, so back-to-back
// extensions compound.
func (s *BookingService) Extend(ctx context.Context, actor ActorContext, bookingID uint, additional decimal.Decimal) (*ExtendResult, error) {
	if additional.LessThan(minExtensionHours) {
		return nil, newValidationError("horas_adicionales", "min=0.5")
	}
	now := s.Clock.Now()
	var res ExtendResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, _, err := lockBookingWithRoom(tx, actor, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != models.BookingCheckedIn {
			return ErrBookingNotCheckedIn
		}

		prev := booking.CheckOut
		excess := 0
		regularized := decimal.Zero
		if now.After(prev) {
			excess = ExtraHoursSince(prev, now)
			regularized = booking.AddHours(decimal.NewFromInt(int64(excess)))
		}
		cost := booking.AddHours(additional)
		booking.CheckOut = prev.Add(hoursDuration(additional))
		appendNote(booking, now, fmt.Sprintf("extended +%sh, new checkout %s", additional.String(), booking.CheckOut.Format("2006-01-02 15:04")))
		if err := recalculateAndSave(tx, actor, booking); err != nil {
			return err
		}

		if excess > 0 {
			if err := recordEvent(tx, booking.ID, models.EventOverstayRegularized, actor, now, map[string]interface{}{
				"source":       "extension",
				"extra_hours":  excess,
				"extra_amount": regularized,
			}); err != nil {
				return err
			}
		}
		if err := recordEvent(tx, booking.ID, models.EventExtended, actor, now, map[string]interface{}{
			"additional_hours":  additional,
			"extension_cost":    cost,
			"previous_checkout": prev,
			"new_checkout":      booking.CheckOut,
			"total_hours":       booking.TotalHours,
		}); err != nil {
			return err
		}

		res = ExtendResult{
			PreviousCheckOut: prev,
			NewCheckOut:      booking.CheckOut,
			AdditionalHours:  additional,
			ExtensionCost:    cost,
			RegularizedHours: excess,
			RegularizedCost:  regularized,
			Breakdown:        breakdownOf(booking),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Metrics.OverstayBilled("extension", res.RegularizedHours)
	if res.Booking, err = s.loadBooking(ctx, actor, bookingID); err != nil {
		return nil, err
	}
	return &res, nil
}

// ParseExtendHours accepts the extension body under either field name.
func ParseExtendHours(primary, alias *decimal.Decimal) (decimal.Decimal, error) {
	switch {
	case primary != nil:
		return *primary, nil
	case alias != nil:
		return *alias, nil
	}
	return decimal.Zero, newValidationError("horas_adicionales", "required")
}
