package models

import (
	"time"

	"gorm.io/gorm"
)

type RoomType struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string `gorm:"size:120;not null" json:"name"`
	Code        string `gorm:"size:30;uniqueIndex" json:"code"`
	Description string `json:"description"`
	MaxGuests   uint   `json:"max_guests"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RateType is the billing unit of a booking: hourly, daily, nightly.
type RateType struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"size:80;not null" json:"name"`
	Code          string `gorm:"size:20;uniqueIndex;not null" json:"code"`
	DurationHours int    `gorm:"not null" json:"duration_hours"`
	IsActive      bool   `gorm:"not null" json:"is_active"`
}

const (
	RateHour  = "HOUR"
	RateDay   = "DAY"
	RateNight = "NIGHT"
)

type Currency struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Code   string `gorm:"size:3;uniqueIndex;not null" json:"code"`
	Symbol string `gorm:"size:8" json:"symbol"`
	IsBase bool   `json:"is_base"`
}
