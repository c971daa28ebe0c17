package config

import (
	"errors"
	"log"
	"strings"

	"hotel-pms/models"
	"hotel-pms/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var rolePermissions = map[string][]string{
	"owner": {"*"},
	"Manager": {
		"bookings.*", "rooms.*", "customers.*", "pricing.*",
		"inventory.*", "cash.*", "settings.view", "roles.view",
	},
	"Receptionist": {
		"bookings.*", "rooms.view", "rooms.status", "customers.*",
		"pricing.view", "inventory.view", "inventory.consume", "cash.*",
	},
	"Housekeeping": {"rooms.view", "rooms.status"},
}

var roleDescriptions = map[string]string{
	"owner":        "System owner with full access",
	"Manager":      "Branch manager",
	"Receptionist": "Front desk operations",
	"Housekeeping": "Room cleaning and maintenance",
}

// SeedDatabase inserts the reference rows a fresh install needs. Every step
// is idempotent.
func SeedDatabase(db *gorm.DB) error {
	branch := models.Branch{
		Code:     utils.EnvOrDefault("SEED_BRANCH_CODE", "MAIN"),
		Name:     utils.EnvOrDefault("SEED_BRANCH_NAME", "Main branch"),
		IsActive: true,
	}
	if err := db.Where(models.Branch{Code: branch.Code}).FirstOrCreate(&branch).Error; err != nil {
		return err
	}

	rateTypes := []models.RateType{
		{Name: "Hourly", Code: models.RateHour, DurationHours: 1, IsActive: true},
		{Name: "Daily", Code: models.RateDay, DurationHours: 24, IsActive: true},
		{Name: "Nightly", Code: models.RateNight, DurationHours: 12, IsActive: true},
	}
	for i := range rateTypes {
		if err := db.Where(models.RateType{Code: rateTypes[i].Code}).FirstOrCreate(&rateTypes[i]).Error; err != nil {
			return err
		}
	}

	currency := models.Currency{Code: "PEN", Symbol: "S/", IsBase: true}
	if err := db.Where(models.Currency{Code: currency.Code}).FirstOrCreate(&currency).Error; err != nil {
		return err
	}

	methods := []models.PaymentMethod{
		{Code: "CASH", Name: "Cash", IsActive: true},
		{Code: "CARD", Name: "Card", RequiresReference: true, IsActive: true},
		{Code: "TRANSFER", Name: "Bank transfer", RequiresReference: true, IsActive: true},
	}
	for i := range methods {
		if err := db.Where(models.PaymentMethod{Code: methods[i].Code}).FirstOrCreate(&methods[i]).Error; err != nil {
			return err
		}
	}

	var rtCount int64
	if err := db.Model(&models.RoomType{}).Count(&rtCount).Error; err != nil {
		return err
	}
	if rtCount == 0 {
		roomTypes := []models.RoomType{
			{Name: "Standard", Code: "STD", Description: "Standard Room", MaxGuests: 2},
			{Name: "Superior", Code: "SUP", Description: "Superior Room", MaxGuests: 3},
			{Name: "Deluxe", Code: "DLX", Description: "Deluxe Room", MaxGuests: 4},
		}
		if err := db.Create(&roomTypes).Error; err != nil {
			return err
		}
		log.Println("RoomTypes seeded")
	}

	var regCount int64
	if err := db.Model(&models.CashRegister{}).Where("branch_id = ?", branch.ID).Count(&regCount).Error; err != nil {
		return err
	}
	if regCount == 0 {
		if err := db.Create(&models.CashRegister{BranchID: branch.ID, Name: "Front desk", IsActive: true}).Error; err != nil {
			return err
		}
	}

	admin, err := seedAdmin(db, branch.ID)
	if err != nil {
		return err
	}
	if err := seedRoles(db, admin); err != nil {
		return err
	}
	log.Println("Reference data ensured")
	return nil
}

func seedAdmin(db *gorm.DB, branchID uint) (*models.User, error) {
	username := utils.EnvOrDefault("SEED_ADMIN_USERNAME", "admin@hotel.local")
	var admin models.User
	err := db.Where("username = ?", username).First(&admin).Error
	if err == nil {
		return &admin, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(utils.EnvOrDefault("SEED_ADMIN_PASSWORD", "admin123")), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin = models.User{
		FullName: "Admin User",
		Username: username,
		Password: string(hash),
		BranchID: branchID,
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return nil, err
	}
	log.Println("Default admin seeded")
	return &admin, nil
}

func seedRoles(db *gorm.DB, owner *models.User) error {
	for name, perms := range rolePermissions {
		var role models.Role
		err := db.Where("LOWER(name) = ?", strings.ToLower(name)).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role = models.Role{Name: name, Description: roleDescriptions[name]}
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		var permCount int64
		if err := db.Model(&models.RolePermission{}).Where("role_id = ?", role.ID).Count(&permCount).Error; err != nil {
			return err
		}
		if permCount == 0 {
			rows := make([]models.RolePermission, 0, len(perms))
			for _, p := range perms {
				rows = append(rows, models.RolePermission{RoleID: role.ID, Permission: p})
			}
			if err := db.Create(&rows).Error; err != nil {
				return err
			}
		}

		if name != "owner" {
			continue
		}
		var memberCount int64
		if err := db.Model(&models.RoleMember{}).Where("role_id = ?", role.ID).Count(&memberCount).Error; err != nil {
			return err
		}
		if memberCount == 0 {
			if err := db.Create(&models.RoleMember{RoleID: role.ID, UserID: owner.ID}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
