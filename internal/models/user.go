package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account that owns a wallet and chat conversations.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Email    string `gorm:"type:text;index"`                // Contact email.

	Active bool `gorm:"not null;default:true"` // Whether the account may be charged.

	Wallet *Wallet `gorm:"foreignKey:UserID"` // Owned wallet, created with the user.

	CreatedAt time.Time      `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime"` // Last update timestamp.
	DeletedAt gorm.DeletedAt `gorm:"index"`                   // Soft delete marker.
}
