package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotel-pms/models"
	"hotel-pms/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentInput struct {
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethodID uint            `json:"payment_method_id" validate:"required"`
	CashRegisterID  *uint           `json:"cash_register_id"`
	OperationNumber string          `json:"operation_number" validate:"max=60"`
}

type PaymentService struct {
	DB    *gorm.DB
	Clock Clock
}

func NewPaymentService(db *gorm.DB, clock Clock) *PaymentService {
	return &PaymentService{DB: db, Clock: clock}
}

// activeRegister finds the open register in the actor's branch whose current
// session the actor opened.
func activeRegister(tx *gorm.DB, actor ActorContext) (*models.CashRegister, error) {
	var session models.CashRegisterSession
	err := tx.
		Joins("JOIN cash_registers ON cash_registers.current_session_id = cash_register_sessions.id").
		Where("cash_registers.branch_id = ? AND cash_registers.is_active = ?", actor.BranchID, true).
		Where("cash_register_sessions.status = ? AND cash_register_sessions.opened_by = ?", models.SessionOpen, actor.ActorID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoOpenCashRegister
		}
		return nil, err
	}
	var reg models.CashRegister
	if err := tx.Preload("CurrentSession").First(&reg, session.CashRegisterID).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

// applyPayments records each payment against the booking inside tx and returns
// the amount collected. Every payment must land in an open session opened by
// the actor; methods flagged requires_reference need an operation number.
func (s *PaymentService) applyPayments(tx *gorm.DB, actor ActorContext, booking *models.Booking, inputs []PaymentInput, note string) (decimal.Decimal, []models.Payment, error) {
	total := decimal.Zero
	if len(inputs) == 0 {
		return total, nil, nil
	}
	for i, in := range inputs {
		if fields := validateInput(in); fields != nil {
			return total, nil, &ValidationError{Fields: fields}
		}
		if !in.Amount.IsPositive() {
			return total, nil, newValidationError(fmt.Sprintf("payments[%d].amount", i), "gt")
		}
	}

	var fallback *models.CashRegister
	created := make([]models.Payment, 0, len(inputs))
	for _, in := range inputs {
		var reg *models.CashRegister
		if in.CashRegisterID != nil {
			var r models.CashRegister
			if err := tx.Preload("CurrentSession").Where("id = ? AND branch_id = ?", *in.CashRegisterID, actor.BranchID).First(&r).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return total, nil, ErrCashRegisterNotFound
				}
				return total, nil, err
			}
			reg = &r
		} else {
			if fallback == nil {
				r, err := activeRegister(tx, actor)
				if err != nil {
					return total, nil, err
				}
				fallback = r
			}
			reg = fallback
		}
		if !reg.IsOpen() {
			return total, nil, ErrCashRegisterClosed
		}
		if reg.CurrentSession.OpenedBy != actor.ActorID {
			return total, nil, ErrForeignCashSession
		}

		var method models.PaymentMethod
		if err := tx.First(&method, in.PaymentMethodID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return total, nil, ErrPaymentMethodNotFound
			}
			return total, nil, err
		}
		opNumber := strings.TrimSpace(in.OperationNumber)
		if method.RequiresReference && opNumber == "" {
			return total, nil, fmt.Errorf("%w: %s", ErrReferenceRequired, method.Name)
		}

		code, err := utils.GeneratePaymentCode(s.Clock.Now())
		if err != nil {
			return total, nil, fmt.Errorf("generate payment code: %w", err)
		}
		p := models.Payment{
			PaymentCode:           code,
			BookingID:             booking.ID,
			CurrencyID:            booking.CurrencyID,
			Amount:                in.Amount.Round(2),
			PaymentMethodID:       method.ID,
			CashRegisterID:        reg.ID,
			CashRegisterSessionID: reg.CurrentSession.ID,
			PaymentDate:           s.Clock.Now(),
			Status:                "completed",
			Notes:                 note,
			CreatedBy:             actor.ActorID,
		}
		if opNumber != "" {
			p.OperationNumber = &opNumber
		}
		if err := tx.Create(&p).Error; err != nil {
			return total, nil, fmt.Errorf("create payment: %w", err)
		}
		total = total.Add(p.Amount)
		created = append(created, p)
	}
	return total, created, nil
}

func (s *PaymentService) ListRegisters(ctx context.Context, actor ActorContext) ([]models.CashRegister, error) {
	var out []models.CashRegister
	if err := s.DB.WithContext(ctx).Preload("CurrentSession").Where("branch_id = ?", actor.BranchID).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PaymentService) OpenSession(ctx context.Context, actor ActorContext, registerID uint, openingAmount decimal.Decimal) (*models.CashRegisterSession, error) {
	if openingAmount.IsNegative() {
		return nil, newValidationError("opening_amount", "gte")
	}
	var session models.CashRegisterSession
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg models.CashRegister
		if err := tx.Clauses(forUpdate).Where("id = ? AND branch_id = ?", registerID, actor.BranchID).First(&reg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCashRegisterNotFound
			}
			return err
		}
		if reg.CurrentSessionID != nil {
			var current models.CashRegisterSession
			if err := tx.First(&current, *reg.CurrentSessionID).Error; err == nil && current.Status == models.SessionOpen {
				return ErrCashRegisterOpen
			}
		}
		session = models.CashRegisterSession{
			CashRegisterID: reg.ID,
			OpenedBy:       actor.ActorID,
			OpeningAmount:  openingAmount.Round(2),
			Status:         models.SessionOpen,
			OpenedAt:       s.Clock.Now(),
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		return tx.Model(&reg).Update("current_session_id", session.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *PaymentService) CloseSession(ctx context.Context, actor ActorContext, registerID uint, closingAmount decimal.Decimal) (*models.CashRegisterSession, error) {
	var session models.CashRegisterSession
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg models.CashRegister
		if err := tx.Clauses(forUpdate).Where("id = ? AND branch_id = ?", registerID, actor.BranchID).First(&reg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCashRegisterNotFound
			}
			return err
		}
		if reg.CurrentSessionID == nil {
			return ErrCashRegisterClosed
		}
		if err := tx.First(&session, *reg.CurrentSessionID).Error; err != nil {
			return err
		}
		if session.Status != models.SessionOpen {
			return ErrCashRegisterClosed
		}
		if session.OpenedBy != actor.ActorID {
			return ErrForeignCashSession
		}
		now := s.Clock.Now()
		amount := closingAmount.Round(2)
		session.Status = models.SessionClosed
		session.ClosedAt = &now
		session.ClosingAmount = &amount
		if err := tx.Save(&session).Error; err != nil {
			return err
		}
		return tx.Model(&reg).Update("current_session_id", nil).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}
