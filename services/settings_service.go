package services

import (
	"context"

	"hotel-pms/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SettingsService struct {
	DB *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{DB: db}
}

type TaxSettingInput struct {
	TaxPercentage decimal.Decimal `json:"tax_percentage"`
	TaxIncluded   bool            `json:"tax_included"`
}

// GetTaxSetting returns the branch setting, or a zero-rate value when the
// branch was never configured.
func (s *SettingsService) GetTaxSetting(ctx context.Context, actor ActorContext) (*models.BranchTaxSetting, error) {
	var settings []models.BranchTaxSetting
	if err := s.DB.WithContext(ctx).Where("branch_id = ?", actor.BranchID).Limit(1).Find(&settings).Error; err != nil {
		return nil, err
	}
	if len(settings) == 0 {
		return &models.BranchTaxSetting{BranchID: actor.BranchID, TaxPercentage: decimal.Zero}, nil
	}
	return &settings[0], nil
}

// UpdateTaxSetting upserts the branch row. Existing bookings pick the new
// rate up the next time their totals are recalculated.
func (s *SettingsService) UpdateTaxSetting(ctx context.Context, actor ActorContext, in TaxSettingInput) (*models.BranchTaxSetting, error) {
	if in.TaxPercentage.IsNegative() || in.TaxPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, newValidationError("tax_percentage", "between 0 and 100")
	}
	var setting models.BranchTaxSetting
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).
			Where(models.BranchTaxSetting{BranchID: actor.BranchID}).
			FirstOrInit(&setting).Error; err != nil {
			return err
		}
		setting.TaxPercentage = in.TaxPercentage.Round(2)
		setting.TaxIncluded = in.TaxIncluded
		setting.UpdatedBy = actor.ActorID
		return tx.Save(&setting).Error
	})
	if err != nil {
		return nil, err
	}
	return &setting, nil
}
