package services

import (
	"context"

	"hotel-pms/models"

	"gorm.io/gorm"
)

// RoomTypeService manages the catalog rows bookings and prices refer to:
// room types, rate types and currencies.
type RoomTypeService struct {
	DB *gorm.DB
}

func NewRoomTypeService(db *gorm.DB) *RoomTypeService {
	return &RoomTypeService{DB: db}
}

type RoomTypeInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Code        string `json:"code" validate:"required,max=30"`
	Description string `json:"description"`
	MaxGuests   uint   `json:"max_guests"`
}

func (s *RoomTypeService) Create(ctx context.Context, in RoomTypeInput) (*models.RoomType, error) {
	if fields := validateInput(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	rt := models.RoomType{Name: in.Name, Code: in.Code, Description: in.Description, MaxGuests: in.MaxGuests}
	if err := s.DB.WithContext(ctx).Create(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (s *RoomTypeService) GetAll(ctx context.Context) ([]models.RoomType, error) {
	var types []models.RoomType
	err := s.DB.WithContext(ctx).Order("name").Find(&types).Error
	return types, err
}

func (s *RoomTypeService) GetByID(ctx context.Context, id uint) (*models.RoomType, error) {
	var rt models.RoomType
	if err := s.DB.WithContext(ctx).First(&rt, id).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (s *RoomTypeService) Update(ctx context.Context, id uint, in RoomTypeInput) (*models.RoomType, error) {
	if fields := validateInput(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	rt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(rt).Updates(map[string]interface{}{
		"name":        in.Name,
		"code":        in.Code,
		"description": in.Description,
		"max_guests":  in.MaxGuests,
	}).Error; err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *RoomTypeService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.RoomType{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *RoomTypeService) RateTypes(ctx context.Context) ([]models.RateType, error) {
	var out []models.RateType
	err := s.DB.WithContext(ctx).Where("is_active = ?", true).Order("duration_hours").Find(&out).Error
	return out, err
}

func (s *RoomTypeService) Currencies(ctx context.Context) ([]models.Currency, error) {
	var out []models.Currency
	err := s.DB.WithContext(ctx).Order("is_base DESC").Order("code").Find(&out).Error
	return out, err
}

func (s *RoomTypeService) PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	var out []models.PaymentMethod
	err := s.DB.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&out).Error
	return out, err
}
