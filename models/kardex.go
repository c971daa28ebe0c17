package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovementType string

const (
	MovementEntrada MovementType = "entrada"
	MovementSalida  MovementType = "salida"
)

type MovementCategory string

const (
	CategoryCompra MovementCategory = "compra"
	CategoryVenta  MovementCategory = "venta"
	CategoryAjuste MovementCategory = "ajuste"
	CategoryOtros  MovementCategory = "otros"
)

func (c MovementCategory) Valid() bool {
	switch c {
	case CategoryCompra, CategoryVenta, CategoryAjuste, CategoryOtros:
		return true
	}
	return false
}

var ErrKardexImmutable = errors.New("kardex_entry_immutable")

// KardexEntry is one immutable stock movement with the package/fraction
// snapshot before the movement, the moved quantity and the result.
type KardexEntry struct {
	ID               string           `gorm:"type:char(36);primaryKey" json:"id"`
	ProductID        uint             `gorm:"not null;index:idx_kardex_product_branch" json:"product_id"`
	BranchID         uint             `gorm:"not null;index:idx_kardex_product_branch" json:"branch_id"`
	ConsumptionID    *uint            `gorm:"index" json:"consumption_id,omitempty"`
	MovementType     MovementType     `gorm:"type:varchar(10);not null" json:"movement_type"`
	MovementCategory MovementCategory `gorm:"type:varchar(10);not null" json:"movement_category"`

	PrevStock    int `gorm:"not null" json:"prev_stock"`
	PrevPackages int `gorm:"not null" json:"prev_packages"`
	PrevFraction int `gorm:"not null" json:"prev_fraction"`

	MovedUnits    int `gorm:"not null" json:"moved_units"`
	MovedPackages int `gorm:"not null" json:"moved_packages"`
	MovedFraction int `gorm:"not null" json:"moved_fraction"`

	NewStock    int `gorm:"not null" json:"new_stock"`
	NewPackages int `gorm:"not null" json:"new_packages"`
	NewFraction int `gorm:"not null" json:"new_fraction"`

	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	Notes      string          `gorm:"size:255" json:"notes,omitempty"`
	CreatedBy  uint            `json:"created_by"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
}

func (KardexEntry) TableName() string { return "kardex" }

func (k *KardexEntry) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return nil
}

func (k *KardexEntry) BeforeUpdate(tx *gorm.DB) error { return ErrKardexImmutable }

func (k *KardexEntry) BeforeDelete(tx *gorm.DB) error { return ErrKardexImmutable }
