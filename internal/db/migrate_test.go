package db

import (
	"path/filepath"
	"testing"

	"github.com/chatmeter/chatmeter/internal/models"
)

func TestMigrateCreatesSchema(t *testing.T) {
	conn, errOpen := Open(filepath.Join(t.TempDir(), "schema.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}

	migrator := conn.Migrator()
	tables := []any{
		&models.User{},
		&models.Wallet{},
		&models.AIModel{},
		&models.Conversation{},
		&models.Exchange{},
		&models.CoinTransaction{},
		&models.PrepaidCard{},
		&models.APIKey{},
	}
	for _, table := range tables {
		if !migrator.HasTable(table) {
			t.Fatalf("missing table for %T", table)
		}
	}

	columns := map[any][]string{
		&models.Wallet{}:          {"balance", "paid_balance", "promotion_balance", "total_purchased", "total_used"},
		&models.CoinTransaction{}: {"type", "amount", "balance_after", "exchange_id", "detail"},
		&models.Exchange{}:        {"public_id", "coin_count", "charged_at"},
	}
	for table, names := range columns {
		for _, name := range names {
			if !migrator.HasColumn(table, name) {
				t.Fatalf("missing column %s on %T", name, table)
			}
		}
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	conn, errOpen := Open(filepath.Join(t.TempDir(), "schema.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	for i := 0; i < 2; i++ {
		if errMigrate := Migrate(conn); errMigrate != nil {
			t.Fatalf("migrate run %d: %v", i+1, errMigrate)
		}
	}
}

func TestDialectDetection(t *testing.T) {
	conn, errOpen := Open(filepath.Join(t.TempDir(), "dialect.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if !IsSQLite(conn) {
		t.Fatalf("expected sqlite dialect, got %s", DialectName(conn))
	}
}
