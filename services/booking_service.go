// services/booking_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel-pms/metrics"
	"hotel-pms/models"
	"hotel-pms/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultRemainingAlertMinutes = 30

// BookingService owns the booking state machine. Every mutating method runs in
// one transaction that locks the room row before the booking row.
type BookingService struct {
	DB           *gorm.DB
	Kardex       *KardexService
	Consumptions *ConsumptionService
	Payments     *PaymentService
	Clock        Clock
	Metrics      *metrics.Metrics

	// RemainingAlertMinutes raises the "ending soon" alert on booking details.
	RemainingAlertMinutes int
}

func NewBookingService(db *gorm.DB, kardex *KardexService, consumptions *ConsumptionService, payments *PaymentService, clock Clock) *BookingService {
	return &BookingService{
		DB:                    db,
		Kardex:                kardex,
		Consumptions:          consumptions,
		Payments:              payments,
		Clock:                 clock,
		RemainingAlertMinutes: defaultRemainingAlertMinutes,
	}
}

// ---------- locking & persistence helpers ----------

func lockBooking(tx *gorm.DB, actor ActorContext, bookingID uint) (*models.Booking, error) {
	var b models.Booking
	err := tx.Clauses(forUpdate).
		Where("id = ? AND branch_id = ?", bookingID, actor.BranchID).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("lock booking: %w", err)
	}
	return &b, nil
}

func lockRoom(tx *gorm.DB, actor ActorContext, roomID uint) (*models.Room, error) {
	var r models.Room
	err := tx.Clauses(forUpdate).
		Where("id = ? AND branch_id = ?", roomID, actor.BranchID).
		First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("lock room: %w", err)
	}
	return &r, nil
}

// lockBookingWithRoom resolves the booking's room first so the lock order
// (room, then booking) is the same on every path.
func lockBookingWithRoom(tx *gorm.DB, actor ActorContext, bookingID uint) (*models.Booking, *models.Room, error) {
	var ref models.Booking
	if err := tx.Select("id", "room_id").
		Where("id = ? AND branch_id = ?", bookingID, actor.BranchID).
		First(&ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrBookingNotFound
		}
		return nil, nil, err
	}
	room, err := lockRoom(tx, actor, ref.RoomID)
	if err != nil {
		return nil, nil, err
	}
	booking, err := lockBooking(tx, actor, bookingID)
	if err != nil {
		return nil, nil, err
	}
	return booking, room, nil
}

// lockActiveBookingForRoom locks the room and its non-terminal booking.
func lockActiveBookingForRoom(tx *gorm.DB, actor ActorContext, roomID uint) (*models.Booking, *models.Room, error) {
	room, err := lockRoom(tx, actor, roomID)
	if err != nil {
		return nil, nil, err
	}
	var ref models.Booking
	err = tx.Select("id").
		Where("room_id = ? AND status IN ?", room.ID, models.ActiveBookingStatuses).
		Order("id DESC").
		First(&ref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNoActiveBooking
		}
		return nil, nil, err
	}
	booking, err := lockBooking(tx, actor, ref.ID)
	if err != nil {
		return nil, nil, err
	}
	return booking, room, nil
}

func hasActiveBooking(tx *gorm.DB, roomID uint) (bool, error) {
	var n int64
	err := tx.Model(&models.Booking{}).
		Where("room_id = ? AND status IN ?", roomID, models.ActiveBookingStatuses).
		Count(&n).Error
	return n > 0, err
}

// recalculateAndSave refreshes derived totals with the branch tax rate and
// persists the booking columns.
func recalculateAndSave(tx *gorm.DB, actor ActorContext, b *models.Booking) error {
	rate, err := branchTaxRate(tx, b.BranchID)
	if err != nil {
		return fmt.Errorf("load tax setting: %w", err)
	}
	b.RecalculateTotals(rate)
	b.UpdatedBy = actor.ActorID
	if err := tx.Omit(clause.Associations).Save(b).Error; err != nil {
		return fmt.Errorf("save booking: %w", err)
	}
	return nil
}

// recordEvent appends to the booking's audit trail. Callers hold the booking
// row lock, which keeps sequence numbers gap-free.
func recordEvent(tx *gorm.DB, bookingID uint, eventType models.BookingEventType, actor ActorContext, at time.Time, payload interface{}) error {
	var n int64
	if err := tx.Model(&models.BookingEvent{}).Where("booking_id = ?", bookingID).Count(&n).Error; err != nil {
		return err
	}
	ev := models.BookingEvent{
		BookingID:  bookingID,
		Sequence:   int(n) + 1,
		EventType:  eventType,
		Payload:    toJSON(payload),
		ActorID:    actor.ActorID,
		OccurredAt: at,
	}
	if err := tx.Create(&ev).Error; err != nil {
		return fmt.Errorf("record %s event: %w", eventType, err)
	}
	return nil
}

// transitionRoom moves the room to next and appends the status log entry.
// occupied -> occupied is allowed and only writes the log.
func transitionRoom(tx *gorm.DB, room *models.Room, next models.RoomStatus, bookingID *uint, actor ActorContext, reason string, at time.Time, metadata interface{}) error {
	if !room.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidRoomTransition, room.Status, next)
	}
	prev := room.Status
	if prev != next {
		if err := tx.Model(room).Updates(map[string]interface{}{
			"status":            next,
			"status_changed_at": at,
		}).Error; err != nil {
			return fmt.Errorf("update room status: %w", err)
		}
		room.Status = next
		room.StatusChangedAt = &at
	}
	entry := models.RoomStatusLog{
		RoomID:         room.ID,
		BookingID:      bookingID,
		PreviousStatus: prev,
		NewStatus:      next,
		Reason:         reason,
		ChangedBy:      actor.ActorID,
		ChangedAt:      at,
	}
	if metadata != nil {
		entry.Metadata = toJSON(metadata)
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("append room status log: %w", err)
	}
	return nil
}

func appendNote(b *models.Booking, at time.Time, note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	line := fmt.Sprintf("[%s] %s", at.Format("2006-01-02 15:04"), note)
	if b.Notes == "" {
		b.Notes = line
		return
	}
	b.Notes += "\n" + line
}

// ---------- create ----------

type CreateBookingInput struct {
	RoomID         uint              `json:"room_id" validate:"required"`
	CustomerID     uint              `json:"customers_id" validate:"required"`
	RateTypeID     uint              `json:"rate_type_id" validate:"required"`
	CurrencyID     uint              `json:"currency_id" validate:"required"`
	RatePerHour    *decimal.Decimal  `json:"rate_per_hour"`
	Quantity       int               `json:"quantity" validate:"gte=0"`
	TotalHours     *decimal.Decimal  `json:"total_hours"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	VoucherType    string            `json:"voucher_type" validate:"omitempty,oneof=ticket boleta factura"`
	Notes          string            `json:"notes" validate:"max=1000"`
	Consumptions   []ConsumptionItem `json:"consumptions" validate:"dive"`
	Payments       []PaymentInput    `json:"payments" validate:"required,min=1,dive"`
	// DeferCheckIn leaves the booking confirmed with the room still available.
	DeferCheckIn bool `json:"defer_check_in"`
}

func (in CreateBookingInput) validate() error {
	if fields := validateInput(in); fields != nil {
		return &ValidationError{Fields: fields}
	}
	if in.Quantity == 0 && in.TotalHours == nil {
		return newValidationError("quantity", "required_without=total_hours")
	}
	if in.TotalHours != nil && !in.TotalHours.IsPositive() {
		return newValidationError("total_hours", "gt")
	}
	if in.RatePerHour != nil && in.RatePerHour.IsNegative() {
		return newValidationError("rate_per_hour", "gte")
	}
	if in.DiscountAmount.IsNegative() {
		return newValidationError("discount_amount", "gte")
	}
	return nil
}

// Breakdown is the money and time summary returned by booking mutations.
type Breakdown struct {
	RatePerHour      decimal.Decimal `json:"rate_per_hour"`
	Quantity         int             `json:"quantity"`
	TotalHours       decimal.Decimal `json:"total_hours"`
	RoomSubtotal     decimal.Decimal `json:"room_subtotal"`
	ProductsSubtotal decimal.Decimal `json:"products_subtotal"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	Balance          decimal.Decimal `json:"balance"`
}

func breakdownOf(b *models.Booking) Breakdown {
	return Breakdown{
		RatePerHour:      b.RatePerHour,
		Quantity:         b.Quantity,
		TotalHours:       b.TotalHours,
		RoomSubtotal:     b.RoomSubtotal,
		ProductsSubtotal: b.ProductsSubtotal,
		Subtotal:         b.Subtotal,
		TaxAmount:        b.TaxAmount,
		DiscountAmount:   b.DiscountAmount,
		TotalAmount:      b.TotalAmount,
		PaidAmount:       b.PaidAmount,
		Balance:          b.Balance(),
	}
}

type CreateBookingResult struct {
	Booking           *models.Booking `json:"booking"`
	CheckIn           time.Time       `json:"check_in"`
	CheckOutScheduled time.Time       `json:"check_out_scheduled"`
	Breakdown         Breakdown       `json:"breakdown"`
}

func generateUniqueBookingCode(tx *gorm.DB, now time.Time) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := utils.GenerateBookingCode(now)
		if err != nil {
			return "", err
		}
		var n int64
		if err := tx.Unscoped().Model(&models.Booking{}).Where("booking_code = ?", code).Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a unique booking code")
}

// resolveRate prices the whole stay through the branch pricing ranges and
// spreads it over the contracted hours. Four decimals keep
// total_hours × rate within half a cent of the range price.
func resolveRate(tx *gorm.DB, branchID uint, room *models.Room, rateTypeID uint, totalHours decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	cfg, err := resolveConfiguration(tx, branchID, room.RoomTypeID, rateTypeID, at)
	if err != nil {
		return decimal.Zero, err
	}
	minutes := int(totalHours.Mul(decimal.NewFromInt(60)).IntPart())
	pr, err := priceForDuration(tx, cfg.ID, minutes)
	if err != nil {
		return decimal.Zero, err
	}
	return pr.Price.Div(totalHours).Round(4), nil
}

// CreateBooking opens a stay on an available room: totals, initial paid
// consumptions and at least one payment, then check-in unless deferred.
func (s *BookingService) CreateBooking(ctx context.Context, actor ActorContext, in CreateBookingInput) (*CreateBookingResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var bookingID uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := lockRoom(tx, actor, in.RoomID)
		if err != nil {
			return err
		}
		if !room.IsActive || room.Status != models.RoomAvailable {
			return fmt.Errorf("%w: current status %s", ErrRoomUnavailable, room.Status)
		}
		busy, err := hasActiveBooking(tx, room.ID)
		if err != nil {
			return err
		}
		if busy {
			return ErrRoomHasActiveBooking
		}

		var customer models.Customer
		if err := tx.First(&customer, in.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}
		var rateType models.RateType
		if err := tx.Where("id = ? AND is_active = ?", in.RateTypeID, true).First(&rateType).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRateTypeNotFound
			}
			return err
		}
		var currency models.Currency
		if err := tx.First(&currency, in.CurrencyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newValidationError("currency_id", "exists")
			}
			return err
		}

		duration := rateType.DurationHours
		if duration < 1 {
			duration = 1
		}
		quantity := in.Quantity
		var totalHours decimal.Decimal
		if quantity > 0 {
			totalHours = decimal.NewFromInt(int64(quantity * duration))
		} else {
			totalHours = *in.TotalHours
			quantity = int(totalHours.Div(decimal.NewFromInt(int64(duration))).Ceil().IntPart())
		}

		now := s.Clock.Now()
		var rate decimal.Decimal
		if in.RatePerHour != nil {
			rate = in.RatePerHour.Round(2)
		} else {
			rate, err = resolveRate(tx, actor.BranchID, room, rateType.ID, totalHours, now)
			if err != nil {
				return err
			}
		}

		code, err := generateUniqueBookingCode(tx, now)
		if err != nil {
			return err
		}
		voucher := in.VoucherType
		if voucher == "" {
			voucher = "ticket"
		}

		booking := models.Booking{
			BookingCode:    code,
			BranchID:       actor.BranchID,
			RoomID:         room.ID,
			CustomerID:     customer.ID,
			RateTypeID:     rateType.ID,
			CurrencyID:     currency.ID,
			CheckIn:        now,
			CheckOut:       now.Add(hoursDuration(totalHours)),
			TotalHours:     totalHours,
			Quantity:       quantity,
			RatePerHour:    rate,
			DiscountAmount: in.DiscountAmount.Round(2),
			Status:         models.BookingConfirmed,
			VoucherType:    voucher,
			Notes:          strings.TrimSpace(in.Notes),
			CreatedBy:      actor.ActorID,
			UpdatedBy:      actor.ActorID,
		}
		booking.RecalculateTotals(decimal.Zero)
		if err := tx.Omit(clause.Associations).Create(&booking).Error; err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		for _, it := range in.Consumptions {
			c, err := s.Consumptions.createConsumption(tx, actor, &booking, it, models.ConsumptionPaid, true)
			if err != nil {
				return err
			}
			booking.ProductsSubtotal = booking.ProductsSubtotal.Add(c.TotalPrice)
		}
		if err := recalculateAndSave(tx, actor, &booking); err != nil {
			return err
		}
		if err := recordEvent(tx, booking.ID, models.EventCreated, actor, now, breakdownOf(&booking)); err != nil {
			return err
		}

		paid, payments, err := s.Payments.applyPayments(tx, actor, &booking, in.Payments, "initial payment")
		if err != nil {
			return err
		}
		booking.PaidAmount = booking.PaidAmount.Add(paid)
		if err := recalculateAndSave(tx, actor, &booking); err != nil {
			return err
		}
		if err := recordEvent(tx, booking.ID, models.EventPaymentApplied, actor, now, paymentPayload(payments, paid)); err != nil {
			return err
		}

		if !in.DeferCheckIn {
			if err := s.checkIn(tx, actor, &booking, room, now); err != nil {
				return err
			}
		}
		bookingID = booking.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Metrics.BookingCreated()
	s.Metrics.PaymentsReceived(len(in.Payments))

	booking, err := s.loadBooking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	return &CreateBookingResult{
		Booking:           booking,
		CheckIn:           booking.CheckIn,
		CheckOutScheduled: booking.CheckOut,
		Breakdown:         breakdownOf(booking),
	}, nil
}

func paymentPayload(payments []models.Payment, total decimal.Decimal) map[string]interface{} {
	codes := make([]string, 0, len(payments))
	for _, p := range payments {
		codes = append(codes, p.PaymentCode)
	}
	return map[string]interface{}{"payment_codes": codes, "amount": total}
}

// ---------- check-in / cancel ----------

// checkIn starts the contracted time at now and occupies the room.
func (s *BookingService) checkIn(tx *gorm.DB, actor ActorContext, b *models.Booking, room *models.Room, now time.Time) error {
	if b.Status == models.BookingCheckedIn {
		return ErrAlreadyCheckedIn
	}
	if !b.Status.CanTransitionTo(models.BookingCheckedIn) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, models.BookingCheckedIn)
	}
	if room.Status != models.RoomAvailable {
		return fmt.Errorf("%w: current status %s", ErrRoomUnavailable, room.Status)
	}
	if err := transitionRoom(tx, room, models.RoomOccupied, &b.ID, actor, "check-in "+b.BookingCode, now, nil); err != nil {
		return err
	}
	b.Status = models.BookingCheckedIn
	b.CheckIn = now
	b.CheckOut = now.Add(hoursDuration(b.TotalHours))
	if err := recalculateAndSave(tx, actor, b); err != nil {
		return err
	}
	return recordEvent(tx, b.ID, models.EventCheckedIn, actor, now, map[string]interface{}{
		"room_id":   room.ID,
		"check_in":  b.CheckIn,
		"check_out": b.CheckOut,
	})
}

// CheckIn occupies the room of a booking created with a deferred check-in.
// Checking in twice is a conflict, never a silent repeat.
func (s *BookingService) CheckIn(ctx context.Context, actor ActorContext, bookingID uint) (*models.Booking, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, room, err := lockBookingWithRoom(tx, actor, bookingID)
		if err != nil {
			return err
		}
		return s.checkIn(tx, actor, booking, room, s.Clock.Now())
	})
	if err != nil {
		return nil, err
	}
	return s.loadBooking(ctx, actor, bookingID)
}

type CancelInput struct {
	Reason string `json:"reason" validate:"max=255"`
}

// Cancel ends a non-terminal booking without billing. A room that was
// occupied goes to cleaning.
func (s *BookingService) Cancel(ctx context.Context, actor ActorContext, bookingID uint, in CancelInput) (*models.Booking, error) {
	if fields := validateInput(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, room, err := lockBookingWithRoom(tx, actor, bookingID)
		if err != nil {
			return err
		}
		if !booking.Status.CanTransitionTo(models.BookingCancelled) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, models.BookingCancelled)
		}
		now := s.Clock.Now()
		wasCheckedIn := booking.Status == models.BookingCheckedIn

		booking.Status = models.BookingCancelled
		booking.CancelledAt = &now
		booking.CancelReason = strings.TrimSpace(in.Reason)
		if err := recalculateAndSave(tx, actor, booking); err != nil {
			return err
		}
		if wasCheckedIn && room.Status == models.RoomOccupied {
			if err := transitionRoom(tx, room, models.RoomCleaning, &booking.ID, actor, "cancelled "+booking.BookingCode, now, nil); err != nil {
				return err
			}
		}
		return recordEvent(tx, booking.ID, models.EventCancelled, actor, now, map[string]interface{}{
			"reason":         booking.CancelReason,
			"was_checked_in": wasCheckedIn,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.loadBooking(ctx, actor, bookingID)
}

// ---------- reads ----------

func (s *BookingService) loadBooking(ctx context.Context, actor ActorContext, bookingID uint) (*models.Booking, error) {
	var b models.Booking
	err := s.DB.WithContext(ctx).
		Preload("Room.RoomType").
		Preload("Customer").
		Preload("RateType").
		Preload("Currency").
		Preload("Consumptions", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Consumptions.Product").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Payments.PaymentMethod").
		Where("id = ? AND branch_id = ?", bookingID, actor.BranchID).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *BookingService) GetBooking(ctx context.Context, actor ActorContext, bookingID uint) (*models.Booking, error) {
	return s.loadBooking(ctx, actor, bookingID)
}

type TimeInfo struct {
	ElapsedMinutes   int             `json:"elapsed_minutes"`
	RemainingMinutes int             `json:"remaining_minutes"`
	Overdue          bool            `json:"overdue"`
	ExtraMinutes     int             `json:"extra_minutes"`
	ExtraHours       int             `json:"extra_hours"`
	ExtraAmount      decimal.Decimal `json:"extra_amount"`
}

func timeInfoAt(b *models.Booking, now time.Time) TimeInfo {
	info := TimeInfo{ExtraAmount: decimal.Zero}
	end := now
	if b.Status.Terminal() && b.ActualCheckOut != nil {
		end = *b.ActualCheckOut
	}
	info.ElapsedMinutes = wholeMinutes(end.Sub(b.CheckIn))
	if b.Status != models.BookingCheckedIn {
		return info
	}
	if now.After(b.CheckOut) {
		info.Overdue = true
		info.ExtraMinutes = wholeMinutes(now.Sub(b.CheckOut))
		info.ExtraHours = ExtraHoursSince(b.CheckOut, now)
		info.ExtraAmount = ExtraCharge(info.ExtraHours, b.RatePerHour)
	} else {
		info.RemainingMinutes = wholeMinutes(b.CheckOut.Sub(now))
	}
	return info
}

type FinancialSummary struct {
	Breakdown
	ProjectedExtra   decimal.Decimal `json:"projected_extra"`
	ProjectedTotal   decimal.Decimal `json:"projected_total"`
	ProjectedBalance decimal.Decimal `json:"projected_balance"`
}

type BookingActions struct {
	CanExtend         bool `json:"can_extend"`
	CanFinish         bool `json:"can_finish"`
	CanAddConsumption bool `json:"can_add_consumption"`
	CanCancel         bool `json:"can_cancel"`
	CanCheckIn        bool `json:"can_check_in"`
	RequiresPayment   bool `json:"requires_payment"`
}

type BookingAlert struct {
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type BookingDetails struct {
	Booking     *models.Booking  `json:"booking"`
	StatusLabel string           `json:"status_label"`
	TimeInfo    TimeInfo         `json:"time_info"`
	Financial   FinancialSummary `json:"financial_summary"`
	Actions     BookingActions   `json:"actions"`
	Alerts      []BookingAlert   `json:"alerts"`
}

// GetBookingDetails is the operator view of a booking: live time accounting,
// projected overstay charge, allowed actions and alerts.
func (s *BookingService) GetBookingDetails(ctx context.Context, actor ActorContext, bookingID uint) (*BookingDetails, error) {
	b, err := s.loadBooking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	taxRate, err := branchTaxRate(s.DB.WithContext(ctx), b.BranchID)
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	info := timeInfoAt(b, now)

	projected := *b
	projected.AddHours(decimal.NewFromInt(int64(info.ExtraHours)))
	projected.RecalculateTotals(taxRate)

	fin := FinancialSummary{
		Breakdown:        breakdownOf(b),
		ProjectedExtra:   projected.TotalAmount.Sub(b.TotalAmount),
		ProjectedTotal:   projected.TotalAmount,
		ProjectedBalance: projected.Balance(),
	}
	inService := b.Status == models.BookingCheckedIn
	actions := BookingActions{
		CanExtend:         inService,
		CanFinish:         inService,
		CanAddConsumption: inService,
		CanCancel:         !b.Status.Terminal(),
		CanCheckIn:        b.Status == models.BookingConfirmed,
		RequiresPayment:   fin.ProjectedBalance.IsPositive(),
	}

	alerts := []BookingAlert{}
	threshold := s.RemainingAlertMinutes
	if threshold <= 0 {
		threshold = defaultRemainingAlertMinutes
	}
	if inService && info.Overdue {
		alerts = append(alerts, BookingAlert{
			Level:   "danger",
			Code:    "time_exceeded",
			Message: fmt.Sprintf("contracted time exceeded by %d minutes, %d extra hour(s) pending", info.ExtraMinutes, info.ExtraHours),
		})
	} else if inService && info.RemainingMinutes <= threshold {
		alerts = append(alerts, BookingAlert{
			Level:   "warning",
			Code:    "time_ending",
			Message: fmt.Sprintf("%d minutes remaining", info.RemainingMinutes),
		})
	}
	if !b.Status.Terminal() && fin.ProjectedBalance.IsPositive() {
		alerts = append(alerts, BookingAlert{
			Level:   "warning",
			Code:    "pending_balance",
			Message: "pending balance " + fin.ProjectedBalance.StringFixed(2),
		})
	}
	pending := 0
	for _, c := range b.Consumptions {
		if c.IsPending() {
			pending++
		}
	}
	if pending > 0 {
		alerts = append(alerts, BookingAlert{
			Level:   "info",
			Code:    "pending_consumptions",
			Message: fmt.Sprintf("%d consumption(s) not yet paid", pending),
		})
	}

	return &BookingDetails{
		Booking:     b,
		StatusLabel: b.Status.Label(),
		TimeInfo:    info,
		Financial:   fin,
		Actions:     actions,
		Alerts:      alerts,
	}, nil
}

type BookingFilter struct {
	Status          models.BookingStatus
	RoomID          uint
	CustomerID      uint
	PaymentMethodID uint
	Search          string
	DateFrom        *time.Time
	DateTo          *time.Time
	SortBy          string
	SortDesc        bool
	Page            int
	PerPage         int
}

var bookingSortColumns = map[string]string{
	"created_at":   "created_at",
	"check_in":     "check_in",
	"check_out":    "check_out",
	"total_amount": "total_amount",
	"booking_code": "booking_code",
}

func (s *BookingService) ListBookings(ctx context.Context, actor ActorContext, f BookingFilter) ([]models.Booking, int64, error) {
	page, perPage := NormalizePage(f.Page, f.PerPage)
	db := s.DB.WithContext(ctx)

	base := func() *gorm.DB {
		q := db.Model(&models.Booking{}).Where("branch_id = ?", actor.BranchID)
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.RoomID != 0 {
			q = q.Where("room_id = ?", f.RoomID)
		}
		if f.CustomerID != 0 {
			q = q.Where("customer_id = ?", f.CustomerID)
		}
		if f.PaymentMethodID != 0 {
			q = q.Where("id IN (?)", db.Model(&models.Payment{}).Select("booking_id").Where("payment_method_id = ?", f.PaymentMethodID))
		}
		if f.DateFrom != nil {
			q = q.Where("check_in >= ?", dateOnly(*f.DateFrom))
		}
		if f.DateTo != nil {
			q = q.Where("check_in < ?", dateOnly(*f.DateTo).AddDate(0, 0, 1))
		}
		if term := strings.TrimSpace(f.Search); term != "" {
			like := "%" + term + "%"
			q = q.Where("booking_code LIKE ? OR customer_id IN (?) OR room_id IN (?)",
				like,
				db.Model(&models.Customer{}).Select("id").Where("full_name LIKE ? OR document_number LIKE ?", like, like),
				db.Model(&models.Room{}).Select("id").Where("room_number LIKE ?", like),
			)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := bookingSortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	order := col + " ASC"
	if f.SortDesc || f.SortBy == "" {
		order = col + " DESC"
	}

	var out []models.Booking
	err := base().
		Preload("Room").Preload("Customer").Preload("RateType").
		Preload("Payments.PaymentMethod").
		Order(order).Order("id DESC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// QuantityLabel renders "5 hour(s)", "2 day(s)" for listings.
func QuantityLabel(b *models.Booking) string {
	switch strings.ToUpper(b.RateType.Code) {
	case models.RateHour:
		return fmt.Sprintf("%d hour(s)", b.Quantity)
	case models.RateDay:
		return fmt.Sprintf("%d day(s)", b.Quantity)
	case models.RateNight:
		return fmt.Sprintf("%d night(s)", b.Quantity)
	}
	return fmt.Sprintf("%d unit(s)", b.Quantity)
}

type TicketLine struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

type TicketPayment struct {
	Code            string          `json:"code"`
	Method          string          `json:"method"`
	OperationNumber *string         `json:"operation_number,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
}

type Ticket struct {
	Branch      models.Branch   `json:"branch"`
	VoucherType string          `json:"voucher_type"`
	Number      string          `json:"number"`
	IssuedAt    time.Time       `json:"issued_at"`
	Customer    string          `json:"customer"`
	Document    string          `json:"document"`
	RoomNumber  string          `json:"room_number"`
	Lines       []TicketLine    `json:"lines"`
	Payments    []TicketPayment `json:"payments"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	Paid        decimal.Decimal `json:"paid"`
	Balance     decimal.Decimal `json:"balance"`
}

// Ticket builds the printable receipt of a booking.
func (s *BookingService) Ticket(ctx context.Context, actor ActorContext, bookingID uint) (*Ticket, error) {
	b, err := s.loadBooking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	var branch models.Branch
	if err := s.DB.WithContext(ctx).First(&branch, b.BranchID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	roomDesc := "Room " + b.Room.RoomNumber
	if b.Room.RoomType.Name != "" {
		roomDesc += " - " + b.Room.RoomType.Name
	}
	if b.RateType.Name != "" {
		roomDesc += " (" + b.RateType.Name + ")"
	}
	lines := []TicketLine{{
		Description: roomDesc,
		Quantity:    b.TotalHours,
		UnitPrice:   b.RatePerHour,
		Total:       b.RoomSubtotal,
	}}
	for _, c := range b.Consumptions {
		lines = append(lines, TicketLine{
			Description: c.Product.Name,
			Quantity:    decimal.NewFromInt(int64(c.Quantity)),
			UnitPrice:   c.UnitPrice,
			Total:       c.TotalPrice,
		})
	}
	payments := make([]TicketPayment, 0, len(b.Payments))
	for _, p := range b.Payments {
		payments = append(payments, TicketPayment{
			Code:            p.PaymentCode,
			Method:          p.PaymentMethod.Name,
			OperationNumber: p.OperationNumber,
			Amount:          p.Amount,
		})
	}
	customer := b.Customer.FullName
	if customer == "" {
		customer = "General customer"
	}
	doc := strings.TrimSpace(b.Customer.DocumentType + ": " + b.Customer.DocumentNumber)
	if b.Customer.DocumentNumber == "" {
		doc = ""
	}

	return &Ticket{
		Branch:      branch,
		VoucherType: strings.ToUpper(b.VoucherType),
		Number:      b.BookingCode,
		IssuedAt:    b.CheckIn,
		Customer:    customer,
		Document:    doc,
		RoomNumber:  b.Room.RoomNumber,
		Lines:       lines,
		Payments:    payments,
		Subtotal:    b.Subtotal,
		Discount:    b.DiscountAmount,
		Tax:         b.TaxAmount,
		Total:       b.TotalAmount,
		Paid:        b.PaidAmount,
		Balance:     b.Balance(),
	}, nil
}

func (s *BookingService) ListEvents(ctx context.Context, actor ActorContext, bookingID uint) ([]models.BookingEvent, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND branch_id = ?", bookingID, actor.BranchID).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrBookingNotFound
	}
	var events []models.BookingEvent
	if err := s.DB.WithContext(ctx).Where("booking_id = ?", bookingID).Order("sequence").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
