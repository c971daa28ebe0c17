package services

import (
	"context"
	"errors"
	"strings"

	"hotel-pms/models"

	"gorm.io/gorm"
)

// UserService manages front-desk operators of the actor's branch and their
// role membership.
type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

type CreateUserInput struct {
	FullName string `json:"full_name" validate:"required,max=255"`
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required"`
}

type UserView struct {
	models.User
	Roles []string `json:"roles"`
}

func (s *UserService) List(ctx context.Context, actor ActorContext) ([]UserView, error) {
	db := s.DB.WithContext(ctx)
	var users []models.User
	if err := db.Where("branch_id = ?", actor.BranchID).Order("full_name").Find(&users).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	var rows []struct {
		UserID uint
		Name   string
	}
	if len(ids) > 0 {
		if err := db.Table("role_members").
			Select("role_members.user_id, roles.name").
			Joins("JOIN roles ON roles.id = role_members.role_id").
			Where("role_members.user_id IN ?", ids).
			Scan(&rows).Error; err != nil {
			return nil, err
		}
	}
	byUser := map[uint][]string{}
	for _, r := range rows {
		byUser[r.UserID] = append(byUser[r.UserID], r.Name)
	}
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		roles := byUser[u.ID]
		if roles == nil {
			roles = []string{}
		}
		out = append(out, UserView{User: u, Roles: roles})
	}
	return out, nil
}

func findRoleByName(tx *gorm.DB, name string) (*models.Role, error) {
	var role models.Role
	if err := tx.Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

// Create registers an active operator in the actor's branch with one role.
func (s *UserService) Create(ctx context.Context, actor ActorContext, in CreateUserInput) (*UserView, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FullName = strings.TrimSpace(in.FullName)
	if fields := validateInput(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	var view UserView
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := findRoleByName(tx, in.Role)
		if err != nil {
			return err
		}
		user := models.User{
			FullName: in.FullName,
			Username: in.Username,
			Password: hash,
			BranchID: actor.BranchID,
			IsActive: true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.RoleMember{RoleID: role.ID, UserID: user.ID}).Error; err != nil {
			return err
		}
		view = UserView{User: user, Roles: []string{role.Name}}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *UserService) lockUser(tx *gorm.DB, actor ActorContext, id uint) (*models.User, error) {
	var user models.User
	if err := tx.Clauses(forUpdate).Where("id = ? AND branch_id = ?", id, actor.BranchID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// AssignRole replaces the user's roles with the named one.
func (s *UserService) AssignRole(ctx context.Context, actor ActorContext, id uint, roleName string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.lockUser(tx, actor, id)
		if err != nil {
			return err
		}
		role, err := findRoleByName(tx, roleName)
		if err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.RoleMember{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.RoleMember{RoleID: role.ID, UserID: user.ID}).Error
	})
}

// Delete deactivates and soft-deletes a user. Operators cannot remove
// themselves.
func (s *UserService) Delete(ctx context.Context, actor ActorContext, id uint) error {
	if id == actor.ActorID {
		return newValidationError("id", "cannot delete yourself")
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.lockUser(tx, actor, id)
		if err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.RoleMember{}).Error; err != nil {
			return err
		}
		if err := tx.Model(user).Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
}
