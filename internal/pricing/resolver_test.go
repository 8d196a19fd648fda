package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func activeSnapshot(input, output string) Snapshot {
	return Snapshot{
		ModelID:         1,
		Name:            "test-model",
		BasePriceInput:  decimal.RequireFromString(input),
		BasePriceOutput: decimal.RequireFromString(output),
		MarkupRate:      decimal.RequireFromString("0.25"),
		Active:          true,
	}
}

func TestCostPerMillionTokens(t *testing.T) {
	snap := activeSnapshot("2.0", "8.0")

	cost, errCost := Cost(snap, 500_000, 100_000)
	if errCost != nil {
		t.Fatalf("cost: %v", errCost)
	}
	if !cost.Equal(decimal.RequireFromString("1.8")) {
		t.Fatalf("expected cost 1.8, got %s", cost)
	}
}

func TestCostZeroTokens(t *testing.T) {
	snap := activeSnapshot("2.0", "8.0")

	cost, errCost := Cost(snap, 0, 0)
	if errCost != nil {
		t.Fatalf("cost: %v", errCost)
	}
	if !cost.IsZero() {
		t.Fatalf("expected zero cost, got %s", cost)
	}
}

func TestCostInactiveModel(t *testing.T) {
	snap := activeSnapshot("2.0", "8.0")
	snap.Active = false

	if _, errCost := Cost(snap, 1000, 1000); !errors.Is(errCost, ErrModelInactive) {
		t.Fatalf("expected ErrModelInactive, got %v", errCost)
	}
}

func TestCostNegativeTokens(t *testing.T) {
	snap := activeSnapshot("2.0", "8.0")

	_, errCost := Cost(snap, -1, 0)
	var invalid *InvalidTokenCountError
	if !errors.As(errCost, &invalid) {
		t.Fatalf("expected InvalidTokenCountError, got %v", errCost)
	}
}

func TestCostCorruptSnapshot(t *testing.T) {
	snap := activeSnapshot("2.0", "8.0")
	snap.BasePriceOutput = decimal.RequireFromString("-1")

	if _, errCost := Cost(snap, 1, 1); !errors.Is(errCost, ErrCorruptSnapshot) {
		t.Fatalf("expected ErrCorruptSnapshot, got %v", errCost)
	}
}

func TestCostRoundsToLedgerScale(t *testing.T) {
	// 1 token at 1.5 per million is 0.0000015, within the persisted scale.
	snap := activeSnapshot("1.5", "0")

	cost, errCost := Cost(snap, 1, 0)
	if errCost != nil {
		t.Fatalf("cost: %v", errCost)
	}
	if cost.Exponent() < -10 {
		t.Fatalf("expected at most 10 fractional digits, got exponent %d", cost.Exponent())
	}
	if !cost.Equal(decimal.RequireFromString("0.0000015")) {
		t.Fatalf("expected 0.0000015, got %s", cost)
	}
}

func TestCostNoDriftOverManySmallCharges(t *testing.T) {
	snap := activeSnapshot("3.0", "0")

	total := decimal.Zero
	for i := 0; i < 1_000_000; i++ {
		cost, errCost := Cost(snap, 1, 0)
		if errCost != nil {
			t.Fatalf("cost: %v", errCost)
		}
		total = total.Add(cost)
	}
	if !total.Equal(decimal.RequireFromString("3")) {
		t.Fatalf("expected one million single-token charges to sum to 3, got %s", total)
	}
}

func TestDisplayPricesRemoveMarkup(t *testing.T) {
	snap := activeSnapshot("2.5", "10.0")

	input, output, errDisplay := DisplayPrices(snap)
	if errDisplay != nil {
		t.Fatalf("display prices: %v", errDisplay)
	}
	if !input.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("expected net input price 2, got %s", input)
	}
	if !output.Equal(decimal.RequireFromString("8")) {
		t.Fatalf("expected net output price 8, got %s", output)
	}
}
