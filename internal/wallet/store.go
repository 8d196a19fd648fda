package wallet

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chatmeter/chatmeter/internal/models"
)

// Ensure creates the user's wallet with zero balances if it does not exist
// yet and returns the row. Wallets are created once per user and never
// hard-deleted.
func Ensure(ctx context.Context, db *gorm.DB, userID uint64) (*models.Wallet, error) {
	if db == nil {
		return nil, errors.New("wallet: nil db")
	}
	if userID == 0 {
		return nil, errors.New("wallet: empty user id")
	}
	w := models.Wallet{UserID: userID}
	if errFirst := db.WithContext(ctx).
		Where("user_id = ?", userID).
		FirstOrCreate(&w).Error; errFirst != nil {
		return nil, errFirst
	}
	return &w, nil
}

// LockForUpdate loads the user's wallet row under an exclusive row lock.
// Must be called inside a transaction.
func LockForUpdate(ctx context.Context, tx *gorm.DB, userID uint64) (*models.Wallet, error) {
	if tx == nil {
		return nil, errors.New("wallet: nil tx")
	}
	var w models.Wallet
	if errTake := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Take(&w).Error; errTake != nil {
		return nil, errTake
	}
	return &w, nil
}

// Save persists the mutated wallet row inside the caller's transaction.
func Save(ctx context.Context, tx *gorm.DB, w *models.Wallet) error {
	if tx == nil {
		return errors.New("wallet: nil tx")
	}
	if w == nil {
		return errors.New("wallet: nil wallet")
	}
	return tx.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ?", w.ID).
		Updates(map[string]any{
			"balance":             w.Balance,
			"paid_balance":        w.PaidBalance,
			"promotion_balance":   w.PromotionBalance,
			"total_purchased":     w.TotalPurchased,
			"total_used":          w.TotalUsed,
			"last_transaction_at": w.LastTransactionAt,
		}).Error
}

// LockTable serializes wallet mutations per user within this process.
// Postgres already serializes via the SELECT ... FOR UPDATE row lock; the
// in-process mutex carries the same guarantee on SQLite, where row locks
// are a no-op and concurrent write transactions would otherwise race.
type LockTable struct {
	locks sync.Map // user id -> *sync.Mutex
}

// NewLockTable constructs an empty LockTable.
func NewLockTable() *LockTable {
	return &LockTable{}
}

// Lock acquires the per-user mutex and returns its release function.
func (t *LockTable) Lock(userID uint64) func() {
	v, _ := t.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
