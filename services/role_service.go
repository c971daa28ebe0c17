package services

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"hotel-pms/models"

	"gorm.io/gorm"
)

// PermissionCatalog lists every action per module. Role listings render the
// full matrix so unchecked actions show up as false.
var PermissionCatalog = map[string][]string{
	"bookings":  {"view", "create", "checkin", "checkout", "extend", "cancel"},
	"rooms":     {"view", "create", "edit", "delete", "status"},
	"customers": {"view", "create", "edit"},
	"pricing":   {"view", "manage"},
	"inventory": {"view", "consume", "adjust", "products"},
	"cash":      {"view", "open", "close"},
	"settings":  {"view", "edit"},
	"roles":     {"view", "edit"},
}

type RoleMemberView struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type RoleView struct {
	ID          uint                       `json:"id"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Permissions map[string]map[string]bool `json:"permissions"`
	Members     []RoleMemberView           `json:"members"`
}

type RoleService struct {
	DB *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{DB: db}
}

func permissionMatrix(granted []models.RolePermission) map[string]map[string]bool {
	matrix := map[string]map[string]bool{}
	for module, actions := range PermissionCatalog {
		matrix[module] = map[string]bool{}
		for _, action := range actions {
			matrix[module][action] = false
		}
	}
	for _, p := range granted {
		if p.Permission == "*" {
			for module := range matrix {
				for a := range matrix[module] {
					matrix[module][a] = true
				}
			}
			continue
		}
		module, action, ok := strings.Cut(p.Permission, ".")
		if !ok {
			continue
		}
		if _, known := matrix[module]; !known {
			matrix[module] = map[string]bool{}
		}
		if action == "*" {
			for a := range matrix[module] {
				matrix[module][a] = true
			}
			continue
		}
		matrix[module][action] = true
	}
	return matrix
}

func (s *RoleService) ListRoles(ctx context.Context) ([]RoleView, error) {
	var roles []models.Role
	if err := s.DB.WithContext(ctx).Preload("Permissions").Preload("Members").Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}
	out := make([]RoleView, 0, len(roles))
	for _, role := range roles {
		members := make([]RoleMemberView, 0, len(role.Members))
		for _, u := range role.Members {
			members = append(members, RoleMemberView{ID: u.ID, Name: u.FullName, Username: u.Username})
		}
		out = append(out, RoleView{
			ID:          role.ID,
			Name:        role.Name,
			Description: role.Description,
			Permissions: permissionMatrix(role.Permissions),
			Members:     members,
		})
	}
	return out, nil
}

// findRole accepts either a numeric id or the role name.
func (s *RoleService) findRole(tx *gorm.DB, ref string) (*models.Role, error) {
	ref = strings.TrimSpace(ref)
	var role models.Role
	var err error
	if id, convErr := strconv.ParseUint(ref, 10, 64); convErr == nil && id > 0 {
		err = tx.First(&role, id).Error
	} else {
		err = tx.Where("name = ?", ref).First(&role).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

// UpdateRolePermissions replaces the role's grants with perms.
func (s *RoleService) UpdateRolePermissions(ctx context.Context, ref string, perms []string) ([]string, error) {
	seen := map[string]bool{}
	clean := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		if p != "*" && !strings.Contains(p, ".") {
			return nil, newValidationError("permissions", "format module.action")
		}
		seen[p] = true
		clean = append(clean, p)
	}
	sort.Strings(clean)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := s.findRole(tx, ref)
		if err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		if len(clean) == 0 {
			return nil
		}
		rows := make([]models.RolePermission, 0, len(clean))
		for _, p := range clean {
			rows = append(rows, models.RolePermission{RoleID: role.ID, Permission: p})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return clean, nil
}
