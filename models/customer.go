// models/customer.go
package models

import (
	"gorm.io/gorm"
)

type Customer struct {
	gorm.Model

	FullName       string `json:"full_name" gorm:"size:255;not null"`
	DocumentType   string `json:"document_type" gorm:"size:20"`
	DocumentNumber string `json:"document_number" gorm:"size:30;index"`
	Phone          string `json:"phone" gorm:"size:30"`
	Email          string `json:"email" gorm:"size:150"`
}
