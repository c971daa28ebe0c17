package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a front-desk operator. BranchID is the branch the user works in and
// is copied into every token issued at login.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	FullName  string         `gorm:"size:255" json:"full_name"`
	Username  string         `gorm:"uniqueIndex;size:150" json:"username"`
	Password  string         `gorm:"size:255" json:"-"` // bcrypt hash
	BranchID  uint           `gorm:"not null;index" json:"branch_id"`
	IsActive  bool           `gorm:"not null" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Role struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Name        string           `gorm:"size:100;uniqueIndex" json:"name"`
	Description string           `gorm:"size:255" json:"description"`
	Permissions []RolePermission `gorm:"foreignKey:RoleID" json:"permissions"`
	Members     []User           `gorm:"many2many:role_members;joinForeignKey:RoleID;joinReferences:UserID" json:"members"`
	CreatedAt   time.Time        `json:"created_at"`
}

type RolePermission struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	RoleID     uint   `gorm:"not null;index:idx_role_permission,unique" json:"role_id"`
	Permission string `gorm:"size:150;not null;index:idx_role_permission,unique" json:"permission"`
}

type RoleMember struct {
	RoleID uint `gorm:"primaryKey" json:"role_id"`
	UserID uint `gorm:"primaryKey" json:"user_id"`
}
