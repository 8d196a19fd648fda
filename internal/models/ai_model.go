package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AIModel is a priced upstream model in the catalog.
//
// Base prices are per one million tokens and already include the operator
// markup; MarkupRate is kept so pricing displays can derive the provider-net
// price. The billing engine never reads this table mid-charge: callers pass a
// point-in-time snapshot instead.
type AIModel struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name string `gorm:"type:text;not null;uniqueIndex"` // Unique human-readable name.

	BasePriceInput  decimal.Decimal `gorm:"type:decimal(20,10);not null;default:0"` // Price per 1M input tokens, markup inclusive.
	BasePriceOutput decimal.Decimal `gorm:"type:decimal(20,10);not null;default:0"` // Price per 1M output tokens, markup inclusive.
	MarkupRate      decimal.Decimal `gorm:"type:decimal(20,10);not null;default:0"` // Operator margin fraction, e.g. 0.2 for 20%.

	Active bool `gorm:"not null;default:true"` // Whether new usage may be charged.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName overrides the default table name.
func (AIModel) TableName() string {
	return "ai_models"
}
