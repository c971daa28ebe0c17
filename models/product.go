package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Code           string          `gorm:"size:40;uniqueIndex;not null" json:"code"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	IsFractionable bool            `json:"is_fractionable"`
	FractionUnits  int             `json:"fraction_units"`
	IsActive       bool            `gorm:"not null" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// UnitsPerPackage is the base-unit count of one package, never below 1.
func (p Product) UnitsPerPackage() int {
	if !p.IsFractionable || p.FractionUnits < 1 {
		return 1
	}
	return p.FractionUnits
}

// BranchProductStock is the per-branch inventory record. CurrentStock is held
// in base units and PackagesInStock is derived from it.
type BranchProductStock struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	BranchID        uint      `gorm:"not null;uniqueIndex:idx_branch_product" json:"branch_id"`
	ProductID       uint      `gorm:"not null;uniqueIndex:idx_branch_product" json:"product_id"`
	CurrentStock    int       `gorm:"not null" json:"current_stock"`
	PackagesInStock int       `gorm:"not null" json:"packages_in_stock"`
	MinStock        int       `json:"min_stock"`
	UpdatedAt       time.Time `json:"updated_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
