package services

import (
	"context"
	"errors"
	"fmt"

	"hotel-pms/metrics"
	"hotel-pms/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConsumptionService attaches product charges to bookings. Every stock change
// goes through the kardex in the same transaction as the booking totals.
type ConsumptionService struct {
	DB      *gorm.DB
	Kardex  *KardexService
	Clock   Clock
	Metrics *metrics.Metrics
}

func NewConsumptionService(db *gorm.DB, kardex *KardexService, clock Clock) *ConsumptionService {
	return &ConsumptionService{DB: db, Kardex: kardex, Clock: clock}
}

type ConsumptionItem struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"gt=0"`
	// UnitPrice overrides the catalog price; only honoured when a booking is created.
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

type ConsumptionResult struct {
	Booking      *models.Booking             `json:"booking"`
	Consumptions []models.BookingConsumption `json:"consumptions"`
	Amount       decimal.Decimal             `json:"amount"`
}

func validateItems(items []ConsumptionItem) error {
	if len(items) == 0 {
		return newValidationError("consumptions", "required")
	}
	for i, it := range items {
		if fields := validateInput(it); fields != nil {
			return &ValidationError{Fields: fields}
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return newValidationError(fmt.Sprintf("consumptions[%d].unit_price", i), "gte")
		}
	}
	return nil
}

// createConsumption inserts one charge line and takes its units out of the
// branch stock. The row is inserted first so the kardex entry can point at it.
func (s *ConsumptionService) createConsumption(tx *gorm.DB, actor ActorContext, booking *models.Booking, item ConsumptionItem, status models.ConsumptionStatus, allowPriceOverride bool) (*models.BookingConsumption, error) {
	var product models.Product
	if err := tx.Where("id = ? AND is_active = ?", item.ProductID, true).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	unit := product.Price
	if allowPriceOverride && item.UnitPrice != nil {
		unit = *item.UnitPrice
	}
	unit = unit.Round(2)
	now := s.Clock.Now()

	c := models.BookingConsumption{
		BookingID:  booking.ID,
		ProductID:  product.ID,
		Quantity:   item.Quantity,
		UnitPrice:  unit,
		TotalPrice: unit.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2),
		Status:     status,
		ConsumedAt: now,
		CreatedBy:  actor.ActorID,
	}
	if status == models.ConsumptionPaid {
		c.PaidAt = &now
	}
	if err := tx.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create consumption: %w", err)
	}
	if _, err := s.Kardex.ApplyMovement(tx, MovementInput{
		ProductID:     product.ID,
		BranchID:      booking.BranchID,
		Units:         item.Quantity,
		Type:          models.MovementSalida,
		Category:      models.CategoryVenta,
		Amount:        c.TotalPrice,
		ConsumptionID: &c.ID,
		ActorID:       actor.ActorID,
		Notes:         "sale " + booking.BookingCode,
	}); err != nil {
		return nil, err
	}
	c.Product = product
	return &c, nil
}

// AddConsumptions charges products to a checked-in booking as pending lines.
// Any failure, insufficient stock included, rolls back the whole batch.
func (s *ConsumptionService) AddConsumptions(ctx context.Context, actor ActorContext, bookingID uint, items []ConsumptionItem) (*ConsumptionResult, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}
	var result ConsumptionResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, actor, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != models.BookingCheckedIn {
			return ErrBookingNotCheckedIn
		}

		added := make([]models.BookingConsumption, 0, len(items))
		sum := decimal.Zero
		for _, it := range items {
			c, err := s.createConsumption(tx, actor, booking, it, models.ConsumptionPending, false)
			if err != nil {
				return err
			}
			sum = sum.Add(c.TotalPrice)
			added = append(added, *c)
		}

		booking.ProductsSubtotal = booking.ProductsSubtotal.Add(sum)
		if err := recalculateAndSave(tx, actor, booking); err != nil {
			return err
		}
		lines := make([]map[string]interface{}, 0, len(added))
		for _, c := range added {
			lines = append(lines, map[string]interface{}{
				"consumption_id": c.ID,
				"product_id":     c.ProductID,
				"quantity":       c.Quantity,
				"total_price":    c.TotalPrice,
			})
		}
		if err := recordEvent(tx, booking.ID, models.EventConsumptionAdded, actor, s.Clock.Now(), map[string]interface{}{
			"lines":  lines,
			"amount": sum,
		}); err != nil {
			return err
		}

		result = ConsumptionResult{Booking: booking, Consumptions: added, Amount: sum}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for range result.Consumptions {
		s.Metrics.KardexMovement(string(models.MovementSalida), string(models.CategoryVenta))
	}
	return &result, nil
}

// lockConsumption loads a consumption and locks its booking, which must belong
// to the actor's branch and still be in service.
func lockConsumption(tx *gorm.DB, actor ActorContext, consumptionID uint) (*models.BookingConsumption, *models.Booking, error) {
	var c models.BookingConsumption
	if err := tx.Clauses(forUpdate).First(&c, consumptionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrConsumptionNotFound
		}
		return nil, nil, err
	}
	booking, err := lockBooking(tx, actor, c.BookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, nil, ErrConsumptionNotFound
		}
		return nil, nil, err
	}
	if booking.Status.Terminal() {
		return nil, nil, ErrInvalidTransition
	}
	return &c, booking, nil
}

// UpdateConsumption changes the quantity of a pending line. Only the
// difference moves through the kardex.
func (s *ConsumptionService) UpdateConsumption(ctx context.Context, actor ActorContext, consumptionID uint, quantity int) (*ConsumptionResult, error) {
	if quantity <= 0 {
		return nil, newValidationError("quantity", "gt")
	}
	var result ConsumptionResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, booking, err := lockConsumption(tx, actor, consumptionID)
		if err != nil {
			return err
		}
		if !c.IsPending() {
			return ErrConsumptionPaid
		}

		delta := quantity - c.Quantity
		if delta != 0 {
			in := MovementInput{
				ProductID:     c.ProductID,
				BranchID:      booking.BranchID,
				ConsumptionID: &c.ID,
				ActorID:       actor.ActorID,
				Notes:         "consumption update " + booking.BookingCode,
			}
			if delta > 0 {
				in.Units, in.Type, in.Category = delta, models.MovementSalida, models.CategoryVenta
			} else {
				in.Units, in.Type, in.Category = -delta, models.MovementEntrada, models.CategoryAjuste
			}
			in.Amount = c.UnitPrice.Mul(decimal.NewFromInt(int64(in.Units)))
			if _, err := s.Kardex.ApplyMovement(tx, in); err != nil {
				return err
			}
		}

		oldTotal := c.TotalPrice
		c.Quantity = quantity
		c.TotalPrice = c.UnitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
		if err := tx.Model(c).Updates(map[string]interface{}{
			"quantity":    c.Quantity,
			"total_price": c.TotalPrice,
		}).Error; err != nil {
			return err
		}

		booking.ProductsSubtotal = booking.ProductsSubtotal.Add(c.TotalPrice.Sub(oldTotal))
		if err := recalculateAndSave(tx, actor, booking); err != nil {
			return err
		}
		if err := recordEvent(tx, booking.ID, models.EventConsumptionUpdated, actor, s.Clock.Now(), map[string]interface{}{
			"consumption_id": c.ID,
			"quantity_delta": delta,
			"total_price":    c.TotalPrice,
		}); err != nil {
			return err
		}
		result = ConsumptionResult{Booking: booking, Consumptions: []models.BookingConsumption{*c}, Amount: c.TotalPrice.Sub(oldTotal)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteConsumption soft-deletes a pending line and returns its units to stock.
func (s *ConsumptionService) DeleteConsumption(ctx context.Context, actor ActorContext, consumptionID uint) (*models.Booking, error) {
	var out *models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, booking, err := lockConsumption(tx, actor, consumptionID)
		if err != nil {
			return err
		}
		if !c.IsPending() {
			return ErrConsumptionPaid
		}
		if _, err := s.Kardex.ApplyMovement(tx, MovementInput{
			ProductID:     c.ProductID,
			BranchID:      booking.BranchID,
			Units:         c.Quantity,
			Type:          models.MovementEntrada,
			Category:      models.CategoryAjuste,
			Amount:        c.TotalPrice,
			ConsumptionID: &c.ID,
			ActorID:       actor.ActorID,
			Notes:         "consumption removed " + booking.BookingCode,
		}); err != nil {
			return err
		}
		if err := tx.Delete(c).Error; err != nil {
			return err
		}

		booking.ProductsSubtotal = booking.ProductsSubtotal.Sub(c.TotalPrice)
		if err := recalculateAndSave(tx, actor, booking); err != nil {
			return err
		}
		if err := recordEvent(tx, booking.ID, models.EventConsumptionRemoved, actor, s.Clock.Now(), map[string]interface{}{
			"consumption_id": c.ID,
			"quantity":       c.Quantity,
			"total_price":    c.TotalPrice,
		}); err != nil {
			return err
		}
		out = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkPaid settles a pending line. Money is collected through payments; this
// only flips the line so it can no longer be edited.
func (s *ConsumptionService) MarkPaid(ctx context.Context, actor ActorContext, consumptionID uint) (*models.BookingConsumption, error) {
	var out models.BookingConsumption
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, booking, err := lockConsumption(tx, actor, consumptionID)
		if err != nil {
			return err
		}
		if !c.IsPending() {
			return ErrConsumptionPaid
		}
		now := s.Clock.Now()
		c.Status = models.ConsumptionPaid
		c.PaidAt = &now
		if err := tx.Model(c).Updates(map[string]interface{}{
			"status":  c.Status,
			"paid_at": now,
		}).Error; err != nil {
			return err
		}
		if err := recordEvent(tx, booking.ID, models.EventConsumptionPaid, actor, now, map[string]interface{}{
			"consumption_id": c.ID,
			"total_price":    c.TotalPrice,
		}); err != nil {
			return err
		}
		out = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
