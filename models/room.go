package models

import (
	"time"

	"gorm.io/gorm"
)

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
	RoomCleaning    RoomStatus = "cleaning"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomMaintenance, RoomCleaning:
		return true
	}
	return false
}

// CanTransitionTo reports whether the room may move from s to next.
// Entering or leaving occupied is reserved to the booking lifecycle, see
// ManualTransitionAllowed for operator-driven changes.
func (s RoomStatus) CanTransitionTo(next RoomStatus) bool {
	switch s {
	case RoomAvailable:
		return next == RoomOccupied || next == RoomMaintenance || next == RoomCleaning
	case RoomOccupied:
		// occupied -> occupied is the audit-only entry written by extra-time charges
		return next == RoomCleaning || next == RoomOccupied
	case RoomMaintenance:
		return next == RoomAvailable || next == RoomCleaning
	case RoomCleaning:
		return next == RoomAvailable || next == RoomMaintenance
	}
	return false
}

// ManualTransitionAllowed is the subset of transitions an operator may request directly.
func (s RoomStatus) ManualTransitionAllowed(next RoomStatus) bool {
	if s == RoomOccupied || next == RoomOccupied {
		return false
	}
	return s != next && s.CanTransitionTo(next)
}

type Room struct {
	gorm.Model

	BranchID        uint       `json:"branch_id" gorm:"column:branch_id;not null;uniqueIndex:idx_room_branch_number"`
	RoomTypeID      uint       `json:"room_type_id" gorm:"column:room_type_id;not null;index"`
	RoomNumber      string     `json:"room_number" gorm:"column:room_number;type:varchar(50);not null;uniqueIndex:idx_room_branch_number"`
	Name            string     `json:"name" gorm:"type:varchar(120)"`
	Floor           string     `json:"floor" gorm:"type:varchar(10)"`
	Description     string     `json:"description" gorm:"type:text"`
	Status          RoomStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	StatusChangedAt *time.Time `json:"status_changed_at,omitempty"`
	IsActive        bool       `json:"is_active" gorm:"not null"`

	RoomType RoomType `json:"room_type,omitempty" gorm:"foreignKey:RoomTypeID"`
}
