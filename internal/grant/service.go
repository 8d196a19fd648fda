package grant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chatmeter/chatmeter/internal/ledger"
	"github.com/chatmeter/chatmeter/internal/models"
	"github.com/chatmeter/chatmeter/internal/security"
	"github.com/chatmeter/chatmeter/internal/wallet"
)

// Prepaid card redemption errors.
var (
	// ErrCardNotFound is returned for an unknown card serial.
	ErrCardNotFound = errors.New("grant: card not found")
	// ErrCardPassword is returned when the redemption password does not match.
	ErrCardPassword = errors.New("grant: invalid card password")
	// ErrCardDisabled is returned for a disabled card.
	ErrCardDisabled = errors.New("grant: card is disabled")
	// ErrCardRedeemed is returned when the card was already redeemed.
	ErrCardRedeemed = errors.New("grant: card already redeemed")
	// ErrCardExpired is returned for a card past its expiry.
	ErrCardExpired = errors.New("grant: card expired")
)

// Service orchestrates wallet credits: purchases, promotions, admin
// adjustments, and prepaid card redemptions. Every credit follows the same
// atomic discipline as a usage charge: wallet lock, bucket credit, ledger
// append, one transaction.
type Service struct {
	db    *gorm.DB
	locks *wallet.LockTable
}

// NewService constructs a Service sharing the given per-wallet lock table.
func NewService(db *gorm.DB, locks *wallet.LockTable) *Service {
	if locks == nil {
		locks = wallet.NewLockTable()
	}
	return &Service{db: db, locks: locks}
}

// Credit adds a strictly positive amount to the named bucket and appends the
// matching ledger entry: PURCHASE_CREDIT for paid, PROMOTION_CREDIT for
// promotion.
func (s *Service) Credit(ctx context.Context, userID uint64, amount decimal.Decimal, bucket wallet.Bucket, reason string) (*models.CoinTransaction, error) {
	txType := models.TransactionPromotionCredit
	if bucket == wallet.BucketPaid {
		txType = models.TransactionPurchaseCredit
	}
	return s.credit(ctx, userID, amount, bucket, txType, strings.TrimSpace(reason))
}

// AdminAdjust credits either bucket on behalf of a named administrator. The
// acting admin is recorded in the entry description for audit purposes.
func (s *Service) AdminAdjust(ctx context.Context, userID uint64, amount decimal.Decimal, bucket wallet.Bucket, adminName, note string) (*models.CoinTransaction, error) {
	adminName = strings.TrimSpace(adminName)
	if adminName == "" {
		return nil, errors.New("grant: admin adjustment requires the acting admin name")
	}
	description := fmt.Sprintf("admin adjustment by %s", adminName)
	if note = strings.TrimSpace(note); note != "" {
		description += ": " + note
	}
	return s.credit(ctx, userID, amount, bucket, models.TransactionAdminAdjustment, description)
}

func (s *Service) credit(ctx context.Context, userID uint64, amount decimal.Decimal, bucket wallet.Bucket, txType models.TransactionType, description string) (*models.CoinTransaction, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("grant: nil service")
	}
	if userID == 0 {
		return nil, errors.New("grant: empty user id")
	}
	if !amount.IsPositive() {
		return nil, &wallet.InvalidAmountError{Amount: amount}
	}
	if !bucket.Valid() {
		return nil, &wallet.InvalidBucketError{Bucket: bucket}
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	var entry *models.CoinTransaction
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, errEnsure := wallet.Ensure(ctx, tx, userID); errEnsure != nil {
			return errEnsure
		}
		w, errLock := wallet.LockForUpdate(ctx, tx, userID)
		if errLock != nil {
			return errLock
		}

		now := time.Now().UTC()
		newBalance, errCredit := wallet.Credit(w, amount, bucket, now)
		if errCredit != nil {
			return errCredit
		}
		if errSave := wallet.Save(ctx, tx, w); errSave != nil {
			return errSave
		}

		entry = &models.CoinTransaction{
			UserID:       userID,
			Type:         txType,
			Amount:       amount,
			BalanceAfter: newBalance,
			Description:  description,
			CreatedAt:    now,
		}
		return ledger.Append(ctx, tx, entry)
	})
	if errTx != nil {
		return nil, errTx
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"type":    string(txType),
		"amount":  amount.String(),
	}).Info("wallet credited")
	return entry, nil
}

// CreateCard issues a new prepaid card with a generated serial and password.
func (s *Service) CreateCard(ctx context.Context, name string, amount decimal.Decimal, validDays int) (*models.PrepaidCard, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("grant: nil service")
	}
	if !amount.IsPositive() {
		return nil, &wallet.InvalidAmountError{Amount: amount}
	}
	if validDays < 0 {
		return nil, fmt.Errorf("grant: negative valid days %d", validDays)
	}

	cardSN, errSN := security.GenerateCardSN()
	if errSN != nil {
		return nil, errSN
	}
	password, errPassword := security.GenerateRandomString(12)
	if errPassword != nil {
		return nil, errPassword
	}

	card := models.PrepaidCard{
		Name:      strings.TrimSpace(name),
		CardSN:    cardSN,
		Password:  password,
		Amount:    amount,
		ValidDays: validDays,
		IsEnabled: true,
	}
	if validDays > 0 {
		expires := time.Now().UTC().AddDate(0, 0, validDays)
		card.ExpiresAt = &expires
	}
	if errCreate := s.db.WithContext(ctx).Create(&card).Error; errCreate != nil {
		return nil, errCreate
	}
	return &card, nil
}

// RedeemCard credits the card's full value to the user's paid bucket and
// marks the card redeemed, all in one transaction. A disabled, expired, or
// already-redeemed card fails without any mutation.
func (s *Service) RedeemCard(ctx context.Context, userID uint64, cardSN, password string) (*models.CoinTransaction, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("grant: nil service")
	}
	cardSN = strings.TrimSpace(cardSN)
	password = strings.TrimSpace(password)
	if cardSN == "" || password == "" {
		return nil, ErrCardNotFound
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	var entry *models.CoinTransaction
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var card models.PrepaidCard
		if errFind := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("card_sn = ?", cardSN).
			Take(&card).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrCardNotFound
			}
			return errFind
		}

		if card.Password != password {
			return ErrCardPassword
		}
		if !card.IsEnabled {
			return ErrCardDisabled
		}
		if card.RedeemedUserID != nil {
			return ErrCardRedeemed
		}
		now := time.Now().UTC()
		if card.ExpiresAt != nil && now.After(*card.ExpiresAt) {
			return ErrCardExpired
		}

		if errUpdate := tx.WithContext(ctx).
			Model(&card).
			Updates(map[string]any{
				"redeemed_user_id": userID,
				"redeemed_at":      now,
			}).Error; errUpdate != nil {
			return errUpdate
		}

		if _, errEnsure := wallet.Ensure(ctx, tx, userID); errEnsure != nil {
			return errEnsure
		}
		w, errLock := wallet.LockForUpdate(ctx, tx, userID)
		if errLock != nil {
			return errLock
		}
		newBalance, errCredit := wallet.Credit(w, card.Amount, wallet.BucketPaid, now)
		if errCredit != nil {
			return errCredit
		}
		if errSave := wallet.Save(ctx, tx, w); errSave != nil {
			return errSave
		}

		entry = &models.CoinTransaction{
			UserID:       userID,
			Type:         models.TransactionPurchaseCredit,
			Amount:       card.Amount,
			BalanceAfter: newBalance,
			Description:  fmt.Sprintf("prepaid card %s redeemed", card.CardSN),
			CreatedAt:    now,
		}
		return ledger.Append(ctx, tx, entry)
	})
	if errTx != nil {
		return nil, errTx
	}
	return entry, nil
}
