package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/chatmeter/chatmeter/internal/ledger"
	"github.com/chatmeter/chatmeter/internal/models"
	"github.com/chatmeter/chatmeter/internal/pricing"
	"github.com/chatmeter/chatmeter/internal/wallet"
)

// ErrExchangeNotFound rejects a charge against an unknown exchange.
var ErrExchangeNotFound = errors.New("billing: exchange not found")

// ErrExchangeOwner rejects a charge whose exchange belongs to another user.
var ErrExchangeOwner = errors.New("billing: exchange does not belong to user")

// Engine orchestrates one usage charge: price the token usage, debit the
// wallet, append the ledger entry, and finalize the exchange and its
// conversation counters, all in a single transaction.
type Engine struct {
	db    *gorm.DB
	locks *wallet.LockTable
}

// NewEngine constructs an Engine sharing the given per-wallet lock table.
func NewEngine(db *gorm.DB, locks *wallet.LockTable) *Engine {
	if locks == nil {
		locks = wallet.NewLockTable()
	}
	return &Engine{db: db, locks: locks}
}

// usageDetail is the token breakdown persisted with a usage charge entry.
type usageDetail struct {
	Model        string `json:"model"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
	TotalTokens  int64  `json:"total_tokens"`
}

// Balance is the bucket view returned to callers.
type Balance struct {
	Balance          decimal.Decimal `json:"balance"`
	PaidBalance      decimal.Decimal `json:"paid_balance"`
	PromotionBalance decimal.Decimal `json:"promotion_balance"`
}

// ChargeUsage applies the charge for one completed exchange.
//
// The model snapshot must be the one taken when the provider call completed;
// the engine never re-reads the catalog. Invoking ChargeUsage twice for the
// same exchange is safe: the second call returns the entry recorded by the
// first without touching the wallet. A zero-cost charge finalizes the
// exchange counters but writes no ledger entry and returns a nil entry.
func (e *Engine) ChargeUsage(ctx context.Context, userID uint64, exchangeID string, snap pricing.Snapshot, inputTokens, outputTokens int64) (*models.CoinTransaction, error) {
	if e == nil || e.db == nil {
		return nil, errors.New("billing: nil engine")
	}

	cost, errCost := pricing.Cost(snap, inputTokens, outputTokens)
	if errCost != nil {
		return nil, errCost
	}

	unlock := e.locks.Lock(userID)
	defer unlock()

	var entry *models.CoinTransaction
	errTx := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exchange models.Exchange
		if errFind := tx.WithContext(ctx).
			Where("public_id = ?", exchangeID).
			Take(&exchange).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrExchangeNotFound
			}
			return errFind
		}

		var conversation models.Conversation
		if errConv := tx.WithContext(ctx).
			Select("id", "user_id").
			Take(&conversation, exchange.ConversationID).Error; errConv != nil {
			return fmt.Errorf("billing: load conversation: %w", errConv)
		}
		if conversation.UserID != userID {
			return ErrExchangeOwner
		}

		// Replayed callback after a network blip: the exchange is already
		// finalized, so hand back whatever the first attempt recorded.
		if exchange.ChargedAt != nil {
			var existing models.CoinTransaction
			errExisting := tx.WithContext(ctx).
				Where("exchange_id = ?", exchange.ID).
				Take(&existing).Error
			if errExisting == nil {
				entry = &existing
				return nil
			}
			if errors.Is(errExisting, gorm.ErrRecordNotFound) {
				entry = nil // zero-cost charge, no entry was written
				return nil
			}
			return errExisting
		}

		now := time.Now().UTC()
		totalTokens := inputTokens + outputTokens

		if cost.IsPositive() {
			w, errLock := wallet.LockForUpdate(ctx, tx, userID)
			if errLock != nil {
				return fmt.Errorf("billing: lock wallet: %w", errLock)
			}

			newBalance, errDebit := wallet.Debit(w, cost, now)
			if errDebit != nil {
				return errDebit
			}
			if errSave := wallet.Save(ctx, tx, w); errSave != nil {
				return errSave
			}

			detail, errMarshal := json.Marshal(usageDetail{
				Model:        snap.Name,
				InputTokens:  inputTokens,
				OutputTokens: outputTokens,
				TotalTokens:  totalTokens,
			})
			if errMarshal != nil {
				return errMarshal
			}

			modelID := snap.ModelID
			conversationID := exchange.ConversationID
			exchangeRef := exchange.ID
			entry = &models.CoinTransaction{
				UserID:         userID,
				Type:           models.TransactionUsageCharge,
				Amount:         cost,
				BalanceAfter:   newBalance,
				ModelID:        &modelID,
				ConversationID: &conversationID,
				ExchangeID:     &exchangeRef,
				Description:    fmt.Sprintf("usage charge for model %s", snap.Name),
				Detail:         datatypes.JSON(detail),
				CreatedAt:      now,
			}
			if errAppend := ledger.Append(ctx, tx, entry); errAppend != nil {
				return errAppend
			}

			if errConvUpdate := tx.WithContext(ctx).
				Model(&models.Conversation{}).
				Where("id = ?", exchange.ConversationID).
				Update("coin_usage", gorm.Expr("coin_usage + ?", cost)).Error; errConvUpdate != nil {
				return errConvUpdate
			}
		}

		modelID := snap.ModelID
		if errExchange := tx.WithContext(ctx).
			Model(&models.Exchange{}).
			Where("id = ?", exchange.ID).
			Updates(map[string]any{
				"model_id":      &modelID,
				"input_tokens":  inputTokens,
				"output_tokens": outputTokens,
				"token_count":   totalTokens,
				"coin_count":    cost,
				"charged_at":    now,
			}).Error; errExchange != nil {
			return errExchange
		}

		return nil
	})
	if errTx != nil {
		var insufficient *wallet.InsufficientFundsError
		if errors.As(errTx, &insufficient) {
			// The provider call already happened, so this cost cannot be
			// recovered from the user. Logged for reconciliation.
			log.WithFields(log.Fields{
				"user_id":     userID,
				"exchange_id": exchangeID,
				"model":       snap.Name,
				"cost":        cost.String(),
				"shortfall":   insufficient.Shortfall.String(),
			}).Warn("usage charge rejected: insufficient funds, provider cost unrecoverable")
		}
		return nil, errTx
	}
	return entry, nil
}

// GetBalance returns the user's current wallet buckets.
func (e *Engine) GetBalance(ctx context.Context, userID uint64) (Balance, error) {
	if e == nil || e.db == nil {
		return Balance{}, errors.New("billing: nil engine")
	}
	var w models.Wallet
	if errTake := e.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&w).Error; errTake != nil {
		return Balance{}, errTake
	}
	return Balance{
		Balance:          w.Balance,
		PaidBalance:      w.PaidBalance,
		PromotionBalance: w.PromotionBalance,
	}, nil
}
