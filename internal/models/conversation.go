package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Conversation groups the exchanges of one chat session and accumulates
// their coin cost. CoinUsage only ever grows, and only by committed charges.
type Conversation struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	PublicID string `gorm:"type:text;not null;uniqueIndex"` // Client-facing conversation ID.

	UserID uint64 `gorm:"not null;index"`    // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID"` // Owning user record.

	Title string `gorm:"type:text"` // Display title.

	CoinUsage decimal.Decimal `gorm:"type:decimal(20,10);not null;default:0"` // Running cost of all charged exchanges.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
