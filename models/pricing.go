package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BranchRoomTypePrice is the pricing configuration for one
// {branch, room type, rate type} over an effective date window.
type BranchRoomTypePrice struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	BranchID      uint           `gorm:"not null;index:idx_price_key" json:"branch_id"`
	RoomTypeID    uint           `gorm:"not null;index:idx_price_key" json:"room_type_id"`
	RateTypeID    uint           `gorm:"not null;index:idx_price_key" json:"rate_type_id"`
	EffectiveFrom time.Time      `gorm:"not null" json:"effective_from"`
	EffectiveTo   *time.Time     `json:"effective_to,omitempty"`
	IsActive      bool           `gorm:"not null" json:"is_active"`
	CreatedBy     uint           `json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	RoomType RoomType       `gorm:"foreignKey:RoomTypeID" json:"room_type,omitempty"`
	RateType RateType       `gorm:"foreignKey:RateTypeID" json:"rate_type,omitempty"`
	Ranges   []PricingRange `gorm:"foreignKey:BranchRoomTypePriceID" json:"pricing_ranges,omitempty"`
}

// PricingRange maps the half-open interval [TimeFromMinutes, TimeToMinutes)
// to a flat price.
type PricingRange struct {
	ID                    uint            `gorm:"primaryKey" json:"id"`
	BranchRoomTypePriceID uint            `gorm:"not null;index" json:"branch_room_type_price_id"`
	TimeFromMinutes       int             `gorm:"not null" json:"time_from_minutes"`
	TimeToMinutes         int             `gorm:"not null" json:"time_to_minutes"`
	Price                 decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	IsActive              bool            `gorm:"not null" json:"is_active"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	DeletedAt             gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (r PricingRange) Contains(minutes int) bool {
	return minutes >= r.TimeFromMinutes && minutes < r.TimeToMinutes
}

// Overlaps reports whether [from, to) intersects the range.
func (r PricingRange) Overlaps(from, to int) bool {
	return from < r.TimeToMinutes && to > r.TimeFromMinutes
}
