package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	Code              string `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name              string `gorm:"size:80;not null" json:"name"`
	RequiresReference bool   `json:"requires_reference"`
	IsActive          bool   `gorm:"not null" json:"is_active"`
}

type CashRegister struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	BranchID         uint   `gorm:"not null;index" json:"branch_id"`
	Name             string `gorm:"size:80;not null" json:"name"`
	CurrentSessionID *uint  `json:"current_session_id,omitempty"`
	IsActive         bool   `gorm:"not null" json:"is_active"`

	CurrentSession *CashRegisterSession `gorm:"foreignKey:CurrentSessionID" json:"current_session,omitempty"`
}

func (r *CashRegister) IsOpen() bool {
	return r.CurrentSession != nil && r.CurrentSession.Status == SessionOpen
}

const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

type CashRegisterSession struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	CashRegisterID uint             `gorm:"not null;index" json:"cash_register_id"`
	OpenedBy       uint             `gorm:"not null;index" json:"opened_by"`
	OpeningAmount  decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"opening_amount"`
	ClosingAmount  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"closing_amount,omitempty"`
	Status         string           `gorm:"size:10;not null" json:"status"`
	OpenedAt       time.Time        `gorm:"not null" json:"opened_at"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
}

type Payment struct {
	ID                    uint            `gorm:"primaryKey" json:"id"`
	PaymentCode           string          `gorm:"size:32;uniqueIndex;not null" json:"payment_code"`
	BookingID             uint            `gorm:"not null;index" json:"booking_id"`
	CurrencyID            uint            `gorm:"not null" json:"currency_id"`
	Amount                decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentMethodID       uint            `gorm:"not null" json:"payment_method_id"`
	CashRegisterID        uint            `gorm:"not null;index" json:"cash_register_id"`
	CashRegisterSessionID uint            `gorm:"not null;index" json:"cash_register_session_id"`
	OperationNumber       *string         `gorm:"size:60" json:"operation_number,omitempty"`
	PaymentDate           time.Time       `gorm:"not null" json:"payment_date"`
	Status                string          `gorm:"size:20;not null" json:"status"`
	Notes                 string          `gorm:"size:255" json:"notes,omitempty"`
	CreatedBy             uint            `json:"created_by"`
	CreatedAt             time.Time       `json:"created_at"`

	PaymentMethod PaymentMethod `gorm:"foreignKey:PaymentMethodID" json:"payment_method,omitempty"`
}
