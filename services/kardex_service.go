package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotel-pms/metrics"
	"hotel-pms/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// KardexService owns branch stock rows and the append-only kardex ledger.
type KardexService struct {
	DB      *gorm.DB
	Clock   Clock
	Metrics *metrics.Metrics
}

func NewKardexService(db *gorm.DB, clock Clock) *KardexService {
	return &KardexService{DB: db, Clock: clock}
}

type MovementInput struct {
	ProductID     uint
	BranchID      uint
	Units         int
	Type          models.MovementType
	Category      models.MovementCategory
	Amount        decimal.Decimal
	ConsumptionID *uint
	ActorID       uint
	Notes         string
}

// Decompose splits a base-unit quantity into whole packages and the
// remaining fraction: packages*perPackage + fraction == units.
func Decompose(units, perPackage int) (packages, fraction int) {
	if perPackage < 1 {
		perPackage = 1
	}
	return units / perPackage, units % perPackage
}

// ApplyMovement moves Units in or out of the branch stock row and appends one
// kardex entry. It must run inside the caller's transaction so the stock row,
// the ledger and the triggering event commit together. Exits and entries share
// the same computation; only the sign and category differ.
func (s *KardexService) ApplyMovement(tx *gorm.DB, in MovementInput) (*models.KardexEntry, error) {
	if in.Units <= 0 {
		return nil, newValidationError("units", "gt")
	}
	var sign int
	switch in.Type {
	case models.MovementSalida:
		sign = -1
	case models.MovementEntrada:
		sign = 1
	default:
		return nil, newValidationError("movement_type", "oneof")
	}
	if !in.Category.Valid() {
		return nil, newValidationError("movement_category", "oneof")
	}

	var stock models.BranchProductStock
	err := tx.Clauses(forUpdate).
		Where("branch_id = ? AND product_id = ?", in.BranchID, in.ProductID).
		First(&stock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotInBranch
		}
		return nil, fmt.Errorf("load branch stock: %w", err)
	}
	var product models.Product
	if err := tx.First(&product, in.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	if sign < 0 && stock.CurrentStock < in.Units {
		return nil, &InsufficientStockError{ProductID: in.ProductID, Available: stock.CurrentStock, Requested: in.Units}
	}

	perPackage := product.UnitsPerPackage()
	prevPk, prevFr := Decompose(stock.CurrentStock, perPackage)
	newStock := stock.CurrentStock + sign*in.Units
	newPk, newFr := Decompose(newStock, perPackage)
	movedPk, movedFr := Decompose(in.Units, perPackage)

	if err := tx.Model(&stock).Updates(map[string]interface{}{
		"current_stock":     newStock,
		"packages_in_stock": newPk,
		"updated_at":        s.Clock.Now(),
	}).Error; err != nil {
		return nil, fmt.Errorf("update branch stock: %w", err)
	}

	entry := models.KardexEntry{
		ProductID:        in.ProductID,
		BranchID:         in.BranchID,
		ConsumptionID:    in.ConsumptionID,
		MovementType:     in.Type,
		MovementCategory: in.Category,
		PrevStock:        stock.CurrentStock,
		PrevPackages:     prevPk,
		PrevFraction:     prevFr,
		MovedUnits:       in.Units,
		MovedPackages:    movedPk,
		MovedFraction:    movedFr,
		NewStock:         newStock,
		NewPackages:      newPk,
		NewFraction:      newFr,
		TotalPrice:       in.Amount.Round(2),
		Notes:            in.Notes,
		CreatedBy:        in.ActorID,
		CreatedAt:        s.Clock.Now(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("append kardex entry: %w", err)
	}
	return &entry, nil
}

type ManualMovementInput struct {
	ProductID  uint                    `json:"product_id" validate:"required"`
	Units      int                     `json:"units" validate:"gt=0"`
	Type       models.MovementType     `json:"movement_type" validate:"required,oneof=entrada salida"`
	Category   models.MovementCategory `json:"movement_category" validate:"required,oneof=compra ajuste otros"`
	TotalPrice decimal.Decimal         `json:"total_price"`
	Notes      string                  `json:"notes" validate:"max=255"`
}

// RegisterMovement records a purchase or manual adjustment. Sales only ever
// enter the ledger through consumptions. A purchase creates the branch stock
// row when the product was never stocked in the branch.
func (s *KardexService) RegisterMovement(ctx context.Context, actor ActorContext, in ManualMovementInput) (*models.KardexEntry, error) {
	if fields := validateInput(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	var entry *models.KardexEntry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, in.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if in.Type == models.MovementEntrada {
			stock := models.BranchProductStock{BranchID: actor.BranchID, ProductID: product.ID}
			if err := tx.Where("branch_id = ? AND product_id = ?", actor.BranchID, product.ID).
				FirstOrCreate(&stock).Error; err != nil {
				return err
			}
		}
		var err error
		entry, err = s.ApplyMovement(tx, MovementInput{
			ProductID: product.ID,
			BranchID:  actor.BranchID,
			Units:     in.Units,
			Type:      in.Type,
			Category:  in.Category,
			Amount:    in.TotalPrice,
			ActorID:   actor.ActorID,
			Notes:     in.Notes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Metrics.KardexMovement(string(in.Type), string(in.Category))
	return entry, nil
}

type MovementFilter struct {
	ProductID uint
	Type      models.MovementType
	Category  models.MovementCategory
	From      *time.Time
	To        *time.Time
	Page      int
	PerPage   int
}

func applyMovementFilter(qb sq.SelectBuilder, branchID uint, f MovementFilter) sq.SelectBuilder {
	qb = qb.Where(sq.Eq{"branch_id": branchID})
	if f.ProductID != 0 {
		qb = qb.Where(sq.Eq{"product_id": f.ProductID})
	}
	if f.Type != "" {
		qb = qb.Where(sq.Eq{"movement_type": f.Type})
	}
	if f.Category != "" {
		qb = qb.Where(sq.Eq{"movement_category": f.Category})
	}
	if f.From != nil {
		qb = qb.Where(sq.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		qb = qb.Where(sq.LtOrEq{"created_at": *f.To})
	}
	return qb
}

// ListMovements pages through the branch's kardex, newest first.
func (s *KardexService) ListMovements(ctx context.Context, actor ActorContext, f MovementFilter) ([]models.KardexEntry, int64, error) {
	page, perPage := NormalizePage(f.Page, f.PerPage)

	countSQL, countArgs, err := applyMovementFilter(sq.Select("COUNT(*)").From("kardex"), actor.BranchID, f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build kardex count: %w", err)
	}
	var total int64
	if err := s.DB.WithContext(ctx).Raw(countSQL, countArgs...).Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	listSQL, listArgs, err := applyMovementFilter(sq.Select("*").From("kardex"), actor.BranchID, f).
		OrderBy("created_at DESC").
		Limit(uint64(perPage)).
		Offset(uint64((page - 1) * perPage)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build kardex list: %w", err)
	}
	var entries []models.KardexEntry
	if err := s.DB.WithContext(ctx).Raw(listSQL, listArgs...).Scan(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (s *KardexService) ListStock(ctx context.Context, actor ActorContext, productID uint) ([]models.BranchProductStock, error) {
	q := s.DB.WithContext(ctx).Preload("Product").Where("branch_id = ?", actor.BranchID)
	if productID != 0 {
		q = q.Where("product_id = ?", productID)
	}
	var out []models.BranchProductStock
	if err := q.Order("product_id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// NormalizePage clamps paging parameters for every listing: default 15 per
// page, at most 100.
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 15
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
