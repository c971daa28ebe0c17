package models

import (
	"time"

	"gorm.io/datatypes"
)

// RoomStatusLog is appended on every room status change, including the
// same-status entries written when extra time is billed.
type RoomStatusLog struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	RoomID         uint           `gorm:"not null;index" json:"room_id"`
	BookingID      *uint          `gorm:"index" json:"booking_id,omitempty"`
	PreviousStatus RoomStatus     `gorm:"type:varchar(20)" json:"previous_status"`
	NewStatus      RoomStatus     `gorm:"type:varchar(20);not null;index" json:"new_status"`
	Reason         string         `gorm:"size:255" json:"reason"`
	ChangedBy      uint           `gorm:"index" json:"changed_by"`
	ChangedAt      time.Time      `gorm:"not null;index" json:"changed_at"`
	Metadata       datatypes.JSON `json:"metadata,omitempty"`
}
