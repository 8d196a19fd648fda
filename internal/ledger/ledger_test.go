package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/chatmeter/chatmeter/internal/db"
	"github.com/chatmeter/chatmeter/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, errOpen := dbpkg.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return conn
}

func seedUserWithWallet(t *testing.T, conn *gorm.DB, balance string) *models.User {
	t.Helper()
	user := models.User{Username: "ledger-user", Active: true}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	b := decimal.RequireFromString(balance)
	w := models.Wallet{UserID: user.ID, Balance: b, PaidBalance: b}
	if errCreate := conn.Create(&w).Error; errCreate != nil {
		t.Fatalf("create wallet: %v", errCreate)
	}
	return &user
}

func appendEntry(t *testing.T, conn *gorm.DB, userID uint64, txType models.TransactionType, amount, after string, at time.Time) *models.CoinTransaction {
	t.Helper()
	entry := models.CoinTransaction{
		UserID:       userID,
		Type:         txType,
		Amount:       decimal.RequireFromString(amount),
		BalanceAfter: decimal.RequireFromString(after),
		Description:  "test entry",
		CreatedAt:    at,
	}
	if errAppend := Append(context.Background(), conn, &entry); errAppend != nil {
		t.Fatalf("append: %v", errAppend)
	}
	return &entry
}

func TestAppendRejectsBadEntries(t *testing.T) {
	conn := openTestDB(t)

	cases := []struct {
		name  string
		entry models.CoinTransaction
	}{
		{"unknown type", models.CoinTransaction{UserID: 1, Type: "REFUND"}},
		{"missing user", models.CoinTransaction{Type: models.TransactionUsageCharge}},
		{"negative amount", models.CoinTransaction{UserID: 1, Type: models.TransactionUsageCharge, Amount: decimal.RequireFromString("-1")}},
	}
	for _, tc := range cases {
		entry := tc.entry
		if errAppend := Append(context.Background(), conn, &entry); errAppend == nil {
			t.Fatalf("%s: expected append to fail", tc.name)
		}
	}
}

func TestListFiltersAndPaginates(t *testing.T) {
	conn := openTestDB(t)
	user := seedUserWithWallet(t, conn, "0")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	appendEntry(t, conn, user.ID, models.TransactionPurchaseCredit, "30", "30", base)
	appendEntry(t, conn, user.ID, models.TransactionUsageCharge, "10", "20", base.Add(time.Minute))
	appendEntry(t, conn, user.ID, models.TransactionUsageCharge, "5", "15", base.Add(2*time.Minute))
	appendEntry(t, conn, user.ID, models.TransactionPromotionCredit, "1", "16", base.Add(3*time.Minute))

	entries, total, errList := List(context.Background(), conn, user.ID, ListFilter{
		Types: []models.TransactionType{models.TransactionUsageCharge},
	}, 1, 10)
	if errList != nil {
		t.Fatalf("list: %v", errList)
	}
	if total != 2 || len(entries) != 2 {
		t.Fatalf("expected 2 usage charges, got total=%d len=%d", total, len(entries))
	}
	if !entries[0].CreatedAt.After(entries[1].CreatedAt) {
		t.Fatalf("expected newest-first ordering")
	}

	from := base.Add(90 * time.Second)
	entries, total, errList = List(context.Background(), conn, user.ID, ListFilter{From: &from}, 1, 10)
	if errList != nil {
		t.Fatalf("list with from: %v", errList)
	}
	if total != 2 {
		t.Fatalf("expected 2 entries after %s, got %d", from, total)
	}

	entries, total, errList = List(context.Background(), conn, user.ID, ListFilter{}, 2, 3)
	if errList != nil {
		t.Fatalf("list page 2: %v", errList)
	}
	if total != 4 || len(entries) != 1 {
		t.Fatalf("expected 1 entry on page 2, got total=%d len=%d", total, len(entries))
	}
}

func TestListSearchMatchesDescription(t *testing.T) {
	conn := openTestDB(t)
	user := seedUserWithWallet(t, conn, "0")

	entry := models.CoinTransaction{
		UserID:       user.ID,
		Type:         models.TransactionAdminAdjustment,
		Amount:       decimal.RequireFromString("2"),
		BalanceAfter: decimal.RequireFromString("2"),
		Description:  "admin adjustment by Ops",
	}
	if errAppend := Append(context.Background(), conn, &entry); errAppend != nil {
		t.Fatalf("append: %v", errAppend)
	}

	entries, total, errList := List(context.Background(), conn, user.ID, ListFilter{Search: "ADJUSTMENT BY"}, 1, 10)
	if errList != nil {
		t.Fatalf("list: %v", errList)
	}
	if total != 1 || len(entries) != 1 {
		t.Fatalf("expected 1 match, got total=%d len=%d", total, len(entries))
	}
}

func TestVerifyChainReplaysToWalletBalance(t *testing.T) {
	conn := openTestDB(t)
	user := seedUserWithWallet(t, conn, "20")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	appendEntry(t, conn, user.ID, models.TransactionPurchaseCredit, "30", "30", base)
	appendEntry(t, conn, user.ID, models.TransactionUsageCharge, "10", "20", base.Add(time.Minute))

	if errVerify := VerifyChain(context.Background(), conn, user.ID); errVerify != nil {
		t.Fatalf("verify chain: %v", errVerify)
	}
}

func TestVerifyChainDetectsBrokenLink(t *testing.T) {
	conn := openTestDB(t)
	user := seedUserWithWallet(t, conn, "25")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	appendEntry(t, conn, user.ID, models.TransactionPurchaseCredit, "30", "30", base)
	// BalanceAfter disagrees with the replayed running total.
	appendEntry(t, conn, user.ID, models.TransactionUsageCharge, "10", "25", base.Add(time.Minute))

	errVerify := VerifyChain(context.Background(), conn, user.ID)
	var chainErr *ChainError
	if !errors.As(errVerify, &chainErr) {
		t.Fatalf("expected ChainError, got %v", errVerify)
	}
}

func TestVerifyChainDetectsWalletMismatch(t *testing.T) {
	conn := openTestDB(t)
	user := seedUserWithWallet(t, conn, "99")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	appendEntry(t, conn, user.ID, models.TransactionPurchaseCredit, "30", "30", base)

	errVerify := VerifyChain(context.Background(), conn, user.ID)
	var chainErr *ChainError
	if !errors.As(errVerify, &chainErr) {
		t.Fatalf("expected ChainError, got %v", errVerify)
	}
}
