package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a user's spendable coin balances and lifetime counters.
//
// Balance is always the sum of PaidBalance and PromotionBalance, and never
// goes negative. Mutations happen only through the wallet package while the
// row is locked inside a billing or grant transaction.
type Wallet struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;uniqueIndex"` // Owning user ID, one wallet per user.
	User   *User  `gorm:"foreignKey:UserID"`    // Owning user record.

	Balance          decimal.Decimal `gorm:"type:decimal(20,10);not null;default:0"` // Total spendable amount.
	PaidBalance      decimal.Decimal `gorm:"type:decimal(20,10);not null;default:0"` // Purchased funds bucket.
	PromotionBalance decimal.Decimal `gorm:"type:decimal(20,10);not null;default:0"` // Granted free funds bucket.

	TotalPurchased decimal.Decimal `gorm:"type:decimal(20,10);not null;default:0"` // Lifetime credited to the paid bucket.
	TotalUsed      decimal.Decimal `gorm:"type:decimal(20,10);not null;default:0"` // Lifetime debited by usage charges.

	LastTransactionAt *time.Time // Time of the most recent ledger-producing mutation.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
