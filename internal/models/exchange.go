package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Exchange is one user/assistant turn inside a conversation. Token and coin
// counters are written once, when the charge for the turn commits, and are
// immutable afterwards.
type Exchange struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	PublicID string `gorm:"type:text;not null;uniqueIndex"` // Client-facing exchange ID, idempotency key for charges.

	ConversationID uint64        `gorm:"not null;index"`            // Parent conversation ID.
	Conversation   *Conversation `gorm:"foreignKey:ConversationID"` // Parent conversation record.

	ModelID *uint64 `gorm:"index"` // Model that served the turn.

	InputTokens  int64 `gorm:"not null;default:0"` // Prompt token count.
	OutputTokens int64 `gorm:"not null;default:0"` // Completion token count.
	TokenCount   int64 `gorm:"not null;default:0"` // Total tokens, set when charged.

	CoinCount decimal.Decimal `gorm:"type:decimal(20,10);not null;default:0"` // Coin cost, set when charged.

	ChargedAt *time.Time `gorm:"index"` // Charge commit time; nil until charged.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
