package services

import (
	"encoding/json"
	"log"

	"hotel-pms/models"
	"hotel-pms/utils"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var forUpdate = clause.Locking{Strength: "UPDATE"}

func validateInput(v interface{}) map[string]string {
	return utils.ValidateStruct(v)
}

func toJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("warning: marshal audit payload: %v", err)
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}

// branchTaxRate returns the flat tax percentage added on top of a branch's
// subtotals. No setting means no tax.
func branchTaxRate(tx *gorm.DB, branchID uint) (decimal.Decimal, error) {
	var settings []models.BranchTaxSetting
	if err := tx.Where("branch_id = ?", branchID).Limit(1).Find(&settings).Error; err != nil {
		return decimal.Zero, err
	}
	if len(settings) == 0 {
		return decimal.Zero, nil
	}
	return settings[0].EffectiveRate(), nil
}
