package wallet

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chatmeter/chatmeter/internal/models"
)

func newWallet(paid, promotion string) *models.Wallet {
	p := decimal.RequireFromString(paid)
	promo := decimal.RequireFromString(promotion)
	return &models.Wallet{
		UserID:           1,
		Balance:          p.Add(promo),
		PaidBalance:      p,
		PromotionBalance: promo,
	}
}

func TestDebitDrainsPromotionFirst(t *testing.T) {
	w := newWallet("60", "40")

	newBalance, errDebit := Debit(w, decimal.RequireFromString("50"), time.Now())
	if errDebit != nil {
		t.Fatalf("debit: %v", errDebit)
	}
	if !newBalance.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected balance 50, got %s", newBalance)
	}
	if !w.PromotionBalance.IsZero() {
		t.Fatalf("expected promotion bucket drained, got %s", w.PromotionBalance)
	}
	if !w.PaidBalance.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected paid balance 50, got %s", w.PaidBalance)
	}
	if !w.TotalUsed.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected total used 50, got %s", w.TotalUsed)
	}
	if errInvariants := VerifyInvariants(w); errInvariants != nil {
		t.Fatalf("invariants: %v", errInvariants)
	}
}

func TestDebitInsufficientFundsLeavesWalletUntouched(t *testing.T) {
	w := newWallet("1", "0")

	_, errDebit := Debit(w, decimal.RequireFromString("5"), time.Now())
	var insufficient *InsufficientFundsError
	if !errors.As(errDebit, &insufficient) {
		t.Fatalf("expected InsufficientFundsError, got %v", errDebit)
	}
	if !insufficient.Shortfall.Equal(decimal.RequireFromString("4")) {
		t.Fatalf("expected shortfall 4, got %s", insufficient.Shortfall)
	}
	if !w.Balance.Equal(decimal.RequireFromString("1")) {
		t.Fatalf("expected balance unchanged at 1, got %s", w.Balance)
	}
	if !w.TotalUsed.IsZero() {
		t.Fatalf("expected total used unchanged, got %s", w.TotalUsed)
	}
	if w.LastTransactionAt != nil {
		t.Fatalf("expected last transaction time unchanged")
	}
}

func TestDebitExactBalance(t *testing.T) {
	w := newWallet("3", "7")

	newBalance, errDebit := Debit(w, decimal.RequireFromString("10"), time.Now())
	if errDebit != nil {
		t.Fatalf("debit: %v", errDebit)
	}
	if !newBalance.IsZero() {
		t.Fatalf("expected zero balance, got %s", newBalance)
	}
	if errInvariants := VerifyInvariants(w); errInvariants != nil {
		t.Fatalf("invariants: %v", errInvariants)
	}
}

func TestDebitRejectsNonPositiveAmount(t *testing.T) {
	w := newWallet("10", "0")

	for _, amount := range []string{"0", "-1"} {
		_, errDebit := Debit(w, decimal.RequireFromString(amount), time.Now())
		var invalid *InvalidAmountError
		if !errors.As(errDebit, &invalid) {
			t.Fatalf("amount %s: expected InvalidAmountError, got %v", amount, errDebit)
		}
	}
}

func TestCreditPaidBucketBumpsTotalPurchased(t *testing.T) {
	w := newWallet("0", "0")

	newBalance, errCredit := Credit(w, decimal.RequireFromString("25"), BucketPaid, time.Now())
	if errCredit != nil {
		t.Fatalf("credit: %v", errCredit)
	}
	if !newBalance.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("expected balance 25, got %s", newBalance)
	}
	if !w.TotalPurchased.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("expected total purchased 25, got %s", w.TotalPurchased)
	}
	if !w.PromotionBalance.IsZero() {
		t.Fatalf("expected promotion bucket untouched, got %s", w.PromotionBalance)
	}
}

func TestCreditPromotionBucket(t *testing.T) {
	w := newWallet("0", "0")

	newBalance, errCredit := Credit(w, decimal.RequireFromString("20"), BucketPromotion, time.Now())
	if errCredit != nil {
		t.Fatalf("credit: %v", errCredit)
	}
	if !newBalance.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("expected balance 20, got %s", newBalance)
	}
	if !w.PromotionBalance.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("expected promotion balance 20, got %s", w.PromotionBalance)
	}
	if !w.TotalPurchased.IsZero() {
		t.Fatalf("expected total purchased unchanged, got %s", w.TotalPurchased)
	}
}

func TestCreditRejectsUnknownBucket(t *testing.T) {
	w := newWallet("0", "0")

	_, errCredit := Credit(w, decimal.RequireFromString("5"), Bucket("bonus"), time.Now())
	var invalid *InvalidBucketError
	if !errors.As(errCredit, &invalid) {
		t.Fatalf("expected InvalidBucketError, got %v", errCredit)
	}
}

func TestVerifyInvariantsDetectsMismatch(t *testing.T) {
	w := newWallet("10", "5")
	w.Balance = decimal.RequireFromString("20")

	if errInvariants := VerifyInvariants(w); errInvariants == nil {
		t.Fatalf("expected bucket sum mismatch error")
	}
}
