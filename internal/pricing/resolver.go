package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/chatmeter/chatmeter/internal/models"
)

// LedgerScale is the number of fractional digits persisted for money values.
const LedgerScale = 10

// Resolver error sentinels.
var (
	// ErrModelInactive rejects charges against a deactivated model.
	ErrModelInactive = errors.New("pricing: model inactive")
	// ErrCorruptSnapshot marks a snapshot with impossible pricing data.
	ErrCorruptSnapshot = errors.New("pricing: corrupt model snapshot")
)

var million = decimal.NewFromInt(1_000_000)

// Snapshot is a point-in-time copy of a catalog model row. Charges price
// against the snapshot taken when the exchange completed, so a concurrent
// price edit never changes the cost of an in-flight charge.
//
// Base prices are per one million tokens and already include the operator
// markup; the charge path uses them directly and never re-applies MarkupRate.
type Snapshot struct {
	ModelID         uint64
	Name            string
	BasePriceInput  decimal.Decimal
	BasePriceOutput decimal.Decimal
	MarkupRate      decimal.Decimal
	Active          bool
}

// SnapshotOf copies the pricing fields of a catalog row.
func SnapshotOf(m *models.AIModel) Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		ModelID:         m.ID,
		Name:            m.Name,
		BasePriceInput:  m.BasePriceInput,
		BasePriceOutput: m.BasePriceOutput,
		MarkupRate:      m.MarkupRate,
		Active:          m.Active,
	}
}

// InvalidTokenCountError rejects negative token counts.
type InvalidTokenCountError struct {
	InputTokens  int64
	OutputTokens int64
}

func (e *InvalidTokenCountError) Error() string {
	return fmt.Sprintf("pricing: invalid token counts input=%d output=%d", e.InputTokens, e.OutputTokens)
}

// Cost computes the coin cost of an observed token usage against a model
// snapshot: tokens/1M times the per-million base price, summed over input
// and output, rounded half-up to the ledger scale. Pure function, no
// storage access.
func Cost(snap Snapshot, inputTokens, outputTokens int64) (decimal.Decimal, error) {
	if !snap.Active {
		return decimal.Zero, ErrModelInactive
	}
	if inputTokens < 0 || outputTokens < 0 {
		return decimal.Zero, &InvalidTokenCountError{InputTokens: inputTokens, OutputTokens: outputTokens}
	}
	if snap.BasePriceInput.IsNegative() || snap.BasePriceOutput.IsNegative() || snap.MarkupRate.IsNegative() {
		return decimal.Zero, ErrCorruptSnapshot
	}

	inputCost := decimal.NewFromInt(inputTokens).Mul(snap.BasePriceInput)
	outputCost := decimal.NewFromInt(outputTokens).Mul(snap.BasePriceOutput)
	total := inputCost.Add(outputCost).Div(million)

	return total.Round(LedgerScale), nil
}

// DisplayPrices returns the provider-net per-million prices shown on pricing
// pages: the stored markup-inclusive price divided by (1 + MarkupRate).
func DisplayPrices(snap Snapshot) (input, output decimal.Decimal, err error) {
	if snap.MarkupRate.IsNegative() {
		return decimal.Zero, decimal.Zero, ErrCorruptSnapshot
	}
	divisor := decimal.NewFromInt(1).Add(snap.MarkupRate)
	input = snap.BasePriceInput.Div(divisor).Round(LedgerScale)
	output = snap.BasePriceOutput.Div(divisor).Round(LedgerScale)
	return input, output, nil
}
