package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TransactionType identifies the kind of balance mutation a ledger entry records.
type TransactionType string

// TransactionType constants cover every mutation the ledger accepts.
const (
	// TransactionUsageCharge is a debit caused by consuming model tokens.
	TransactionUsageCharge TransactionType = "USAGE_CHARGE"
	// TransactionPurchaseCredit is a credit from a real-money purchase.
	TransactionPurchaseCredit TransactionType = "PURCHASE_CREDIT"
	// TransactionPromotionCredit is a credit of granted free funds.
	TransactionPromotionCredit TransactionType = "PROMOTION_CREDIT"
	// TransactionAdminAdjustment is a manual correction by an administrator.
	TransactionAdminAdjustment TransactionType = "ADMIN_ADJUSTMENT"
)

// Debit reports whether the type reduces the wallet balance.
func (t TransactionType) Debit() bool {
	return t == TransactionUsageCharge
}

// Valid reports whether the type is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionUsageCharge, TransactionPurchaseCredit, TransactionPromotionCredit, TransactionAdminAdjustment:
		return true
	default:
		return false
	}
}

// CoinTransaction is one immutable ledger entry describing a wallet mutation
// and the balance that resulted from it. Rows are append-only: they are never
// updated or deleted, so replaying a user's entries oldest-first from zero
// reproduces the wallet balance exactly.
type CoinTransaction struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`    // Wallet owner, always present.
	User   *User  `gorm:"foreignKey:UserID"` // Owning user record.

	Type TransactionType `gorm:"type:text;not null;index"` // Mutation kind.

	Amount       decimal.Decimal `gorm:"type:decimal(20,10);not null"` // Unsigned magnitude; Type carries direction.
	BalanceAfter decimal.Decimal `gorm:"type:decimal(20,10);not null"` // Wallet balance immediately after this entry.

	ModelID        *uint64 `gorm:"index"` // Charged model ID, usage charges only.
	ConversationID *uint64 `gorm:"index"` // Parent conversation ID, usage charges only.
	ExchangeID     *uint64 `gorm:"uniqueIndex"` // Charged exchange ID, at most one charge per exchange.

	Description string         `gorm:"type:text"`  // Human-readable reason, includes the acting admin for adjustments.
	Detail      datatypes.JSON `gorm:"type:jsonb"` // Token breakdown JSON for usage charges.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Append timestamp.
}

// TableName overrides the default table name.
func (CoinTransaction) TableName() string {
	return "coin_transactions"
}
