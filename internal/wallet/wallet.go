package wallet

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chatmeter/chatmeter/internal/models"
)

// Bucket names a wallet sub-balance.
type Bucket string

// Wallet buckets. Promotion funds are spent before paid funds.
const (
	// BucketPaid holds funds from real purchases.
	BucketPaid Bucket = "paid"
	// BucketPromotion holds granted free funds.
	BucketPromotion Bucket = "promotion"
)

// Valid reports whether the bucket name is known.
func (b Bucket) Valid() bool {
	return b == BucketPaid || b == BucketPromotion
}

// InsufficientFundsError rejects a debit that exceeds the wallet balance.
type InsufficientFundsError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("wallet: insufficient funds: requested=%s available=%s shortfall=%s",
		e.Requested, e.Available, e.Shortfall)
}

// InvalidAmountError rejects a non-positive mutation amount.
type InvalidAmountError struct {
	Amount decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("wallet: invalid amount: %s", e.Amount)
}

// InvalidBucketError rejects an unknown bucket name.
type InvalidBucketError struct {
	Bucket Bucket
}

func (e *InvalidBucketError) Error() string {
	return fmt.Sprintf("wallet: invalid bucket: %q", string(e.Bucket))
}

// Debit removes amount from the wallet, draining the promotion bucket first
// and the paid bucket for the remainder. On insufficient funds the wallet is
// left untouched. The caller must hold the wallet's exclusive update lock.
func Debit(w *models.Wallet, amount decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if w == nil {
		return decimal.Zero, fmt.Errorf("wallet: nil wallet")
	}
	if !amount.IsPositive() {
		return w.Balance, &InvalidAmountError{Amount: amount}
	}

	available := w.PromotionBalance.Add(w.PaidBalance)
	if available.LessThan(amount) {
		return w.Balance, &InsufficientFundsError{
			Requested: amount,
			Available: available,
			Shortfall: amount.Sub(available),
		}
	}

	fromPromotion := decimal.Min(w.PromotionBalance, amount)
	fromPaid := amount.Sub(fromPromotion)

	w.PromotionBalance = w.PromotionBalance.Sub(fromPromotion)
	w.PaidBalance = w.PaidBalance.Sub(fromPaid)
	w.Balance = w.PromotionBalance.Add(w.PaidBalance)
	w.TotalUsed = w.TotalUsed.Add(amount)
	touched := now.UTC()
	w.LastTransactionAt = &touched

	return w.Balance, nil
}

// Credit adds amount to the named bucket and the total balance. Crediting
// the paid bucket also grows the lifetime TotalPurchased counter. The caller
// must hold the wallet's exclusive update lock.
func Credit(w *models.Wallet, amount decimal.Decimal, bucket Bucket, now time.Time) (decimal.Decimal, error) {
	if w == nil {
		return decimal.Zero, fmt.Errorf("wallet: nil wallet")
	}
	if !amount.IsPositive() {
		return w.Balance, &InvalidAmountError{Amount: amount}
	}
	if !bucket.Valid() {
		return w.Balance, &InvalidBucketError{Bucket: bucket}
	}

	switch bucket {
	case BucketPaid:
		w.PaidBalance = w.PaidBalance.Add(amount)
		w.TotalPurchased = w.TotalPurchased.Add(amount)
	case BucketPromotion:
		w.PromotionBalance = w.PromotionBalance.Add(amount)
	}
	w.Balance = w.PromotionBalance.Add(w.PaidBalance)
	touched := now.UTC()
	w.LastTransactionAt = &touched

	return w.Balance, nil
}

// VerifyInvariants checks the wallet's structural invariants: no negative
// balances and the buckets summing to the total.
func VerifyInvariants(w *models.Wallet) error {
	if w == nil {
		return fmt.Errorf("wallet: nil wallet")
	}
	if w.Balance.IsNegative() || w.PaidBalance.IsNegative() || w.PromotionBalance.IsNegative() {
		return fmt.Errorf("wallet: negative balance: total=%s paid=%s promotion=%s",
			w.Balance, w.PaidBalance, w.PromotionBalance)
	}
	if !w.PaidBalance.Add(w.PromotionBalance).Equal(w.Balance) {
		return fmt.Errorf("wallet: bucket sum mismatch: total=%s paid=%s promotion=%s",
			w.Balance, w.PaidBalance, w.PromotionBalance)
	}
	return nil
}
