package services

import (
	"context"
	"errors"
	"strings"

	"hotel-pms/models"
	"hotel-pms/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService verifies operator credentials and answers permission checks
// for the HTTP middleware.
type AuthService struct {
	DB     *gorm.DB
	Tokens *utils.TokenService
}

func NewAuthService(db *gorm.DB, tokens *utils.TokenService) *AuthService {
	return &AuthService{DB: db, Tokens: tokens}
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token       string      `json:"token"`
	User        models.User `json:"user"`
	Permissions []string    `json:"permissions"`
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	if fields := validateInput(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", in.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	perms, err := s.Permissions(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	token, err := s.Tokens.GenerateToken(user.ID, user.BranchID, user.Username)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user, Permissions: perms}, nil
}

// Permissions lists the distinct permission strings granted to the user
// through any of their roles.
func (s *AuthService) Permissions(ctx context.Context, userID uint) ([]string, error) {
	var perms []string
	err := s.DB.WithContext(ctx).Model(&models.RolePermission{}).
		Distinct("role_permissions.permission").
		Joins("JOIN role_members ON role_members.role_id = role_permissions.role_id").
		Where("role_members.user_id = ?", userID).
		Order("role_permissions.permission").
		Pluck("role_permissions.permission", &perms).Error
	return perms, err
}

// HasPermission reports whether the user holds perm. A "<module>.*" grant
// covers every action of that module.
func (s *AuthService) HasPermission(ctx context.Context, userID uint, perm string) (bool, error) {
	candidates := []string{perm, "*"}
	if i := strings.Index(perm, "."); i > 0 {
		candidates = append(candidates, perm[:i]+".*")
	}
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.RolePermission{}).
		Joins("JOIN role_members ON role_members.role_id = role_permissions.role_id").
		Where("role_members.user_id = ? AND role_permissions.permission IN ?", userID, candidates).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
