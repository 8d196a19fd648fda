package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/chatmeter/chatmeter/internal/models"
)

// Migrate applies automatic schema migrations for all persisted models.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	return conn.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.AIModel{},
		&models.Conversation{},
		&models.Exchange{},
		&models.CoinTransaction{},
		&models.PrepaidCard{},
		&models.APIKey{},
	)
}
