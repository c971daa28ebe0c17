package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Branch is a sub-branch of the hotel chain. Rooms, stock, cash registers and
// pricing are all scoped to one.
type Branch struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:30;uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Address   string    `gorm:"type:text" json:"address"`
	Phone     string    `gorm:"size:50" json:"phone"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BranchTaxSetting struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	BranchID      uint            `gorm:"uniqueIndex;not null" json:"branch_id"`
	TaxPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_percentage"`
	TaxIncluded   bool            `json:"tax_included"`
	UpdatedBy     uint            `json:"updated_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// EffectiveRate is the percentage to add on top of the subtotal.
func (s *BranchTaxSetting) EffectiveRate() decimal.Decimal {
	if s == nil || s.TaxIncluded {
		return decimal.Zero
	}
	return s.TaxPercentage
}
