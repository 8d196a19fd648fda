package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbutil "github.com/chatmeter/chatmeter/internal/db"
	"github.com/chatmeter/chatmeter/internal/models"
)

// Append writes one immutable ledger entry inside the caller's transaction.
// BalanceAfter must already carry the wallet balance the mutation produced;
// the append and the wallet update commit or roll back together.
func Append(ctx context.Context, tx *gorm.DB, entry *models.CoinTransaction) error {
	if tx == nil {
		return errors.New("ledger: nil tx")
	}
	if entry == nil {
		return errors.New("ledger: nil entry")
	}
	if !entry.Type.Valid() {
		return fmt.Errorf("ledger: unknown transaction type %q", entry.Type)
	}
	if entry.UserID == 0 {
		return errors.New("ledger: entry missing user id")
	}
	if entry.Amount.IsNegative() {
		return fmt.Errorf("ledger: negative amount %s", entry.Amount)
	}
	if entry.BalanceAfter.IsNegative() {
		return fmt.Errorf("ledger: negative balance after %s", entry.BalanceAfter)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return tx.WithContext(ctx).Create(entry).Error
}

// ListFilter narrows a transaction listing.
type ListFilter struct {
	Types  []models.TransactionType // Empty means all types.
	From   *time.Time               // Inclusive lower bound on CreatedAt.
	To     *time.Time               // Inclusive upper bound on CreatedAt.
	Search string                   // Case-insensitive match against Description.
}

// List returns one page of a user's ledger entries, newest first, along with
// the total row count for the filter.
func List(ctx context.Context, db *gorm.DB, userID uint64, filter ListFilter, page, pageSize int) ([]models.CoinTransaction, int64, error) {
	if db == nil {
		return nil, 0, errors.New("ledger: nil db")
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	q := db.WithContext(ctx).Model(&models.CoinTransaction{}).Where("user_id = ?", userID)
	if len(filter.Types) > 0 {
		q = q.Where("type IN ?", filter.Types)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", filter.To.UTC())
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := dbutil.NormalizeLikePattern(db, "%"+search+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(db, "description"), pattern)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		return nil, 0, errCount
	}

	var entries []models.CoinTransaction
	if errFind := q.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error; errFind != nil {
		return nil, 0, errFind
	}
	return entries, total, nil
}

// ChainError reports a ledger chain that does not replay to the wallet balance.
type ChainError struct {
	UserID  uint64
	EntryID uint64
	Reason  string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("ledger: chain broken for user %d at entry %d: %s", e.UserID, e.EntryID, e.Reason)
}

// VerifyChain replays a user's ledger entries oldest-first from zero and
// checks that every BalanceAfter matches the running total and that the
// final total equals the wallet's current balance.
func VerifyChain(ctx context.Context, db *gorm.DB, userID uint64) error {
	if db == nil {
		return errors.New("ledger: nil db")
	}

	var w models.Wallet
	if errWallet := db.WithContext(ctx).Where("user_id = ?", userID).Take(&w).Error; errWallet != nil {
		return fmt.Errorf("ledger: load wallet: %w", errWallet)
	}

	var entries []models.CoinTransaction
	if errFind := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; errFind != nil {
		return errFind
	}

	running := decimal.Zero
	for _, entry := range entries {
		if entry.Type.Debit() {
			running = running.Sub(entry.Amount)
		} else {
			running = running.Add(entry.Amount)
		}
		if running.IsNegative() {
			return &ChainError{UserID: userID, EntryID: entry.ID, Reason: fmt.Sprintf("running balance went negative: %s", running)}
		}
		if !entry.BalanceAfter.Equal(running) {
			return &ChainError{
				UserID:  userID,
				EntryID: entry.ID,
				Reason:  fmt.Sprintf("balance_after=%s, replay=%s", entry.BalanceAfter, running),
			}
		}
	}

	if !running.Equal(w.Balance) {
		return &ChainError{UserID: userID, Reason: fmt.Sprintf("chain total=%s, wallet balance=%s", running, w.Balance)}
	}
	return nil
}
