package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ConsumptionStatus string

const (
	ConsumptionPending ConsumptionStatus = "pending"
	ConsumptionPaid    ConsumptionStatus = "paid"
)

type BookingConsumption struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	BookingID  uint              `gorm:"not null;index" json:"booking_id"`
	ProductID  uint              `gorm:"not null;index" json:"product_id"`
	Quantity   int               `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"total_price"`
	Status     ConsumptionStatus `gorm:"type:varchar(10);not null;index" json:"status"`
	ConsumedAt time.Time         `gorm:"not null" json:"consumed_at"`
	PaidAt     *time.Time        `json:"paid_at,omitempty"`
	CreatedBy  uint              `json:"created_by"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	DeletedAt  gorm.DeletedAt    `gorm:"index" json:"-"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (c *BookingConsumption) IsPending() bool { return c.Status == ConsumptionPending }

func (c *BookingConsumption) IsPaid() bool { return c.Status == ConsumptionPaid }
