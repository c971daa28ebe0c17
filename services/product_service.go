package services

import (
	"context"
	"errors"
	"strings"

	"hotel-pms/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductService maintains the product catalog. Stock quantities are never
// written here; they only move through the kardex.
type ProductService struct {
	DB *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{DB: db}
}

type ProductInput struct {
	Code           string          `json:"code" validate:"required,max=40"`
	Name           string          `json:"name" validate:"required,max=255"`
	Price          decimal.Decimal `json:"price"`
	IsFractionable bool            `json:"is_fractionable"`
	FractionUnits  int             `json:"fraction_units" validate:"gte=0"`
	MinStock       int             `json:"min_stock" validate:"gte=0"`
	IsActive       *bool           `json:"is_active"`
}

func (in ProductInput) check() error {
	if fields := validateInput(in); fields != nil {
		return &ValidationError{Fields: fields}
	}
	if in.Price.IsNegative() {
		return newValidationError("price", "gte")
	}
	if in.IsFractionable && in.FractionUnits < 2 {
		return newValidationError("fraction_units", "gte")
	}
	return nil
}

func (s *ProductService) List(ctx context.Context, search string, onlyActive bool) ([]models.Product, error) {
	q := s.DB.WithContext(ctx)
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	if term := strings.TrimSpace(search); term != "" {
		like := "%" + term + "%"
		q = q.Where("code LIKE ? OR name LIKE ?", like, like)
	}
	var products []models.Product
	err := q.Order("name").Find(&products).Error
	return products, err
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create adds a product to the catalog and opens an empty stock row for it
// in the actor's branch.
func (s *ProductService) Create(ctx context.Context, actor ActorContext, in ProductInput) (*models.Product, error) {
	in.Code = strings.TrimSpace(in.Code)
	if err := in.check(); err != nil {
		return nil, err
	}
	p := models.Product{
		Code:           in.Code,
		Name:           in.Name,
		Price:          in.Price.Round(2),
		IsFractionable: in.IsFractionable,
		FractionUnits:  in.FractionUnits,
		IsActive:       in.IsActive == nil || *in.IsActive,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		return tx.Create(&models.BranchProductStock{
			BranchID:  actor.BranchID,
			ProductID: p.ID,
			MinStock:  in.MinStock,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update edits catalog data. Changing the package size of a product that
// already holds stock would reinterpret existing quantities, so it is refused.
func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	in.Code = strings.TrimSpace(in.Code)
	if err := in.check(); err != nil {
		return nil, err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.Clauses(forUpdate).First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if p.IsFractionable != in.IsFractionable || (in.IsFractionable && p.FractionUnits != in.FractionUnits) {
			var stocked int64
			if err := tx.Model(&models.BranchProductStock{}).
				Where("product_id = ? AND current_stock > 0", id).
				Count(&stocked).Error; err != nil {
				return err
			}
			if stocked > 0 {
				return newValidationError("fraction_units", "stocked")
			}
		}
		updates := map[string]interface{}{
			"code":            in.Code,
			"name":            in.Name,
			"price":           in.Price.Round(2),
			"is_fractionable": in.IsFractionable,
			"fraction_units":  in.FractionUnits,
		}
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}
		return tx.Model(&p).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
