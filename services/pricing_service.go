package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotel-pms/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var maxRangePrice = decimal.RequireFromString("999999.99")

type PricingService struct {
	DB *gorm.DB
}

func NewPricingService(db *gorm.DB) *PricingService {
	return &PricingService{DB: db}
}

type PriceConfigInput struct {
	RoomTypeID    uint       `json:"room_type_id" validate:"required"`
	RateTypeID    uint       `json:"rate_type_id" validate:"required"`
	EffectiveFrom time.Time  `json:"effective_from" validate:"required"`
	EffectiveTo   *time.Time `json:"effective_to"`
	IsActive      *bool      `json:"is_active"`
}

type PricingRangeInput struct {
	TimeFromMinutes int             `json:"time_from_minutes" validate:"gte=0"`
	TimeToMinutes   int             `json:"time_to_minutes" validate:"gtfield=TimeFromMinutes"`
	Price           decimal.Decimal `json:"price"`
	IsActive        *bool           `json:"is_active"`
}

func (in PricingRangeInput) validate() error {
	if fields := validateInput(in); fields != nil {
		return &ValidationError{Fields: fields}
	}
	if in.Price.IsNegative() || in.Price.GreaterThan(maxRangePrice) {
		return newValidationError("price", "between")
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ResolveConfiguration selects the active configuration whose effective window
// contains asOf. Windows for the same key are assumed not to overlap.
func (s *PricingService) ResolveConfiguration(ctx context.Context, branchID, roomTypeID, rateTypeID uint, asOf time.Time) (*models.BranchRoomTypePrice, error) {
	return resolveConfiguration(s.DB.WithContext(ctx), branchID, roomTypeID, rateTypeID, asOf)
}

func resolveConfiguration(db *gorm.DB, branchID, roomTypeID, rateTypeID uint, asOf time.Time) (*models.BranchRoomTypePrice, error) {
	day := dateOnly(asOf)
	var cfg models.BranchRoomTypePrice
	err := db.
		Where("branch_id = ? AND room_type_id = ? AND rate_type_id = ? AND is_active = ?", branchID, roomTypeID, rateTypeID, true).
		Where("effective_from <= ?", day).
		Where("effective_to IS NULL OR effective_to >= ?", day).
		Order("effective_from DESC").
		First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPricingNotFound
		}
		return nil, fmt.Errorf("resolve pricing configuration: %w", err)
	}
	return &cfg, nil
}

// PriceForDuration returns the active range of configID whose [from, to)
// contains minutes.
func (s *PricingService) PriceForDuration(ctx context.Context, configID uint, minutes int) (*models.PricingRange, error) {
	return priceForDuration(s.DB.WithContext(ctx), configID, minutes)
}

func priceForDuration(db *gorm.DB, configID uint, minutes int) (*models.PricingRange, error) {
	var pr models.PricingRange
	err := db.
		Where("branch_room_type_price_id = ? AND is_active = ?", configID, true).
		Where("time_from_minutes <= ? AND time_to_minutes > ?", minutes, minutes).
		Order("time_from_minutes").
		First(&pr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPricingNotFound
		}
		return nil, fmt.Errorf("price for duration: %w", err)
	}
	return &pr, nil
}

type PriceQuote struct {
	ConfigurationID uint                `json:"configuration_id"`
	Minutes         int                 `json:"minutes"`
	Range           models.PricingRange `json:"range"`
	Price           decimal.Decimal     `json:"price"`
}

// CalculatePrice resolves the configuration for today's key and prices minutes.
func (s *PricingService) CalculatePrice(ctx context.Context, actor ActorContext, roomTypeID, rateTypeID uint, asOf time.Time, minutes int) (*PriceQuote, error) {
	if minutes < 0 {
		return nil, newValidationError("minutes", "gte")
	}
	cfg, err := s.ResolveConfiguration(ctx, actor.BranchID, roomTypeID, rateTypeID, asOf)
	if err != nil {
		return nil, err
	}
	pr, err := s.PriceForDuration(ctx, cfg.ID, minutes)
	if err != nil {
		return nil, err
	}
	return &PriceQuote{ConfigurationID: cfg.ID, Minutes: minutes, Range: *pr, Price: pr.Price}, nil
}

// PricingOptions lists the active ranges of a configuration in ascending order.
func (s *PricingService) PricingOptions(ctx context.Context, actor ActorContext, configID uint) (*models.BranchRoomTypePrice, error) {
	var cfg models.BranchRoomTypePrice
	err := s.DB.WithContext(ctx).
		Preload("Ranges", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("time_from_minutes")
		}).
		Preload("RoomType").Preload("RateType").
		Where("id = ? AND branch_id = ?", configID, actor.BranchID).
		First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPricingNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func (s *PricingService) ListConfigurations(ctx context.Context, actor ActorContext, roomTypeID, rateTypeID uint) ([]models.BranchRoomTypePrice, error) {
	q := s.DB.WithContext(ctx).Preload("RoomType").Preload("RateType").Where("branch_id = ?", actor.BranchID)
	if roomTypeID != 0 {
		q = q.Where("room_type_id = ?", roomTypeID)
	}
	if rateTypeID != 0 {
		q = q.Where("rate_type_id = ?", rateTypeID)
	}
	var out []models.BranchRoomTypePrice
	if err := q.Order("effective_from DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PricingService) CreateConfiguration(ctx context.Context, actor ActorContext, in PriceConfigInput) (*models.BranchRoomTypePrice, error) {
	if fields := validateInput(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	from := dateOnly(in.EffectiveFrom)
	var to *time.Time
	if in.EffectiveTo != nil {
		d := dateOnly(*in.EffectiveTo)
		if d.Before(from) {
			return nil, newValidationError("effective_to", "gtefield")
		}
		to = &d
	}
	cfg := models.BranchRoomTypePrice{
		BranchID:      actor.BranchID,
		RoomTypeID:    in.RoomTypeID,
		RateTypeID:    in.RateTypeID,
		EffectiveFrom: from,
		EffectiveTo:   to,
		IsActive:      in.IsActive == nil || *in.IsActive,
		CreatedBy:     actor.ActorID,
	}
	if err := s.DB.WithContext(ctx).Create(&cfg).Error; err != nil {
		return nil, fmt.Errorf("create pricing configuration: %w", err)
	}
	return &cfg, nil
}

func (s *PricingService) UpdateConfiguration(ctx context.Context, actor ActorContext, id uint, in PriceConfigInput) (*models.BranchRoomTypePrice, error) {
	if fields := validateInput(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	var cfg models.BranchRoomTypePrice
	if err := s.DB.WithContext(ctx).Where("id = ? AND branch_id = ?", id, actor.BranchID).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPricingNotFound
		}
		return nil, err
	}
	cfg.RoomTypeID = in.RoomTypeID
	cfg.RateTypeID = in.RateTypeID
	cfg.EffectiveFrom = dateOnly(in.EffectiveFrom)
	cfg.EffectiveTo = nil
	if in.EffectiveTo != nil {
		d := dateOnly(*in.EffectiveTo)
		if d.Before(cfg.EffectiveFrom) {
			return nil, newValidationError("effective_to", "gtefield")
		}
		cfg.EffectiveTo = &d
	}
	if in.IsActive != nil {
		cfg.IsActive = *in.IsActive
	}
	if err := s.DB.WithContext(ctx).Save(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *PricingService) DeleteConfiguration(ctx context.Context, actor ActorContext, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND branch_id = ?", id, actor.BranchID).Delete(&models.BranchRoomTypePrice{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPricingNotFound
		}
		return tx.Where("branch_room_type_price_id = ?", id).Delete(&models.PricingRange{}).Error
	})
}

// rangeOverlaps checks [from, to) against the other active ranges of the
// configuration. excludeID skips the range being updated.
func rangeOverlaps(db *gorm.DB, configID uint, from, to int, excludeID uint) (bool, error) {
	q := db.Model(&models.PricingRange{}).
		Where("branch_room_type_price_id = ? AND is_active = ?", configID, true).
		Where("time_from_minutes < ? AND time_to_minutes > ?", to, from)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *PricingService) CreateRange(ctx context.Context, actor ActorContext, configID uint, in PricingRangeInput) (*models.PricingRange, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var pr models.PricingRange
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg, err := lockConfiguration(tx, actor, configID)
		if err != nil {
			return err
		}
		overlap, err := rangeOverlaps(tx, cfg.ID, in.TimeFromMinutes, in.TimeToMinutes, 0)
		if err != nil {
			return err
		}
		if overlap {
			return ErrPricingOverlap
		}
		pr = models.PricingRange{
			BranchRoomTypePriceID: cfg.ID,
			TimeFromMinutes:       in.TimeFromMinutes,
			TimeToMinutes:         in.TimeToMinutes,
			Price:                 in.Price.Round(2),
			IsActive:              in.IsActive == nil || *in.IsActive,
		}
		return tx.Create(&pr).Error
	})
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

func (s *PricingService) UpdateRange(ctx context.Context, actor ActorContext, rangeID uint, in PricingRangeInput) (*models.PricingRange, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var pr models.PricingRange
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pr, rangeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPricingNotFound
			}
			return err
		}
		if _, err := lockConfiguration(tx, actor, pr.BranchRoomTypePriceID); err != nil {
			return err
		}
		active := pr.IsActive
		if in.IsActive != nil {
			active = *in.IsActive
		}
		if active {
			overlap, err := rangeOverlaps(tx, pr.BranchRoomTypePriceID, in.TimeFromMinutes, in.TimeToMinutes, pr.ID)
			if err != nil {
				return err
			}
			if overlap {
				return ErrPricingOverlap
			}
		}
		pr.TimeFromMinutes = in.TimeFromMinutes
		pr.TimeToMinutes = in.TimeToMinutes
		pr.Price = in.Price.Round(2)
		pr.IsActive = active
		return tx.Save(&pr).Error
	})
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

func (s *PricingService) DeleteRange(ctx context.Context, actor ActorContext, rangeID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pr models.PricingRange
		if err := tx.First(&pr, rangeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPricingNotFound
			}
			return err
		}
		if _, err := lockConfiguration(tx, actor, pr.BranchRoomTypePriceID); err != nil {
			return err
		}
		return tx.Delete(&pr).Error
	})
}

func (s *PricingService) ListRanges(ctx context.Context, actor ActorContext, configID uint) ([]models.PricingRange, error) {
	cfg, err := s.PricingOptions(ctx, actor, configID)
	if err != nil {
		return nil, err
	}
	var out []models.PricingRange
	if err := s.DB.WithContext(ctx).Where("branch_room_type_price_id = ?", cfg.ID).Order("time_from_minutes").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// lockConfiguration serializes range writes of one configuration so two
// concurrent inserts cannot both pass the overlap check.
func lockConfiguration(tx *gorm.DB, actor ActorContext, configID uint) (*models.BranchRoomTypePrice, error) {
	var cfg models.BranchRoomTypePrice
	err := tx.Clauses(forUpdate).Where("id = ? AND branch_id = ?", configID, actor.BranchID).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPricingNotFound
		}
		return nil, err
	}
	return &cfg, nil
}
