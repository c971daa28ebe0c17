package services

import (
	"context"
	"errors"
	"strings"

	"hotel-pms/models"

	"gorm.io/gorm"
)

type CustomerService struct {
	DB *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{DB: db}
}

type CustomerInput struct {
	FullName       string `json:"full_name" validate:"required,max=255"`
	DocumentType   string `json:"document_type" validate:"omitempty,oneof=DNI CE RUC PAS"`
	DocumentNumber string `json:"document_number" validate:"max=30"`
	Phone          string `json:"phone" validate:"max=30"`
	Email          string `json:"email" validate:"omitempty,email,max=150"`
}

func (in *CustomerInput) normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.DocumentType = strings.ToUpper(strings.TrimSpace(in.DocumentType))
	in.DocumentNumber = strings.TrimSpace(in.DocumentNumber)
	in.Email = strings.TrimSpace(in.Email)
}

// List searches by name or document number, most recent first.
func (s *CustomerService) List(ctx context.Context, search string, page, perPage int) ([]models.Customer, int64, error) {
	page, perPage = NormalizePage(page, perPage)
	q := s.DB.WithContext(ctx).Model(&models.Customer{})
	if term := strings.TrimSpace(search); term != "" {
		like := "%" + term + "%"
		q = q.Where("full_name LIKE ? OR document_number LIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var customers []models.Customer
	err := q.Order("id DESC").Limit(perPage).Offset((page - 1) * perPage).Find(&customers).Error
	return customers, total, err
}

func (s *CustomerService) Get(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := s.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	in.normalize()
	if fields := validateInput(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	c := models.Customer{
		FullName:       in.FullName,
		DocumentType:   in.DocumentType,
		DocumentNumber: in.DocumentNumber,
		Phone:          in.Phone,
		Email:          in.Email,
	}
	if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CustomerService) Update(ctx context.Context, id uint, in CustomerInput) (*models.Customer, error) {
	in.normalize()
	if fields := validateInput(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(c).Updates(map[string]interface{}{
		"full_name":       in.FullName,
		"document_type":   in.DocumentType,
		"document_number": in.DocumentNumber,
		"phone":           in.Phone,
		"email":           in.Email,
	}).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
