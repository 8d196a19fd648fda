package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PrepaidCard represents a purchasable coin card. Redeeming a card credits
// its full value to the owner's paid bucket through the grant service.
type PrepaidCard struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name     string `gorm:"type:text;not null"`             // Card display name.
	CardSN   string `gorm:"type:text;not null;uniqueIndex"` // Unique card serial number.
	Password string `gorm:"type:text;not null"`             // Redemption password.

	Amount decimal.Decimal `gorm:"type:decimal(20,10);not null"` // Card coin value.

	ValidDays int        `gorm:"not null;default:0"` // Validity window in days; 0 means no expiry.
	ExpiresAt *time.Time // Expiration time, if any.

	IsEnabled bool `gorm:"not null;default:true"` // Whether the card can be redeemed.

	RedeemedUserID *uint64 `gorm:"index"`                     // User who redeemed the card.
	RedeemedUser   *User   `gorm:"foreignKey:RedeemedUserID"` // Redeeming user record.

	CreatedAt  time.Time  `gorm:"not null;autoCreateTime"` // Creation timestamp.
	RedeemedAt *time.Time // Redemption time, if redeemed.
}
