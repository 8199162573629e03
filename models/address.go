package models

import (
	"time"
)

// Address is a shipping destination owned by a user. At most one address
// per user carries is_default; the flag is cleared on the others inside
// the same transaction that sets it.
type Address struct {
	ID            uint      `json:"address_id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"not null;index"`
	RecipientName string    `json:"recipient_name" gorm:"not null"`
	Phone         string    `json:"phone" gorm:"not null"`
	AddressLine   string    `json:"address_line" gorm:"not null"`
	City          string    `json:"city" gorm:"not null"`
	District      string    `json:"district"`
	IsDefault     bool      `json:"is_default" gorm:"default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
