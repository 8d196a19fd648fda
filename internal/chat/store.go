package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatmeter/chatmeter/internal/models"
)

// CreateConversation starts a new conversation for the user with a zero
// coin usage counter.
func CreateConversation(ctx context.Context, db *gorm.DB, userID uint64, title string) (*models.Conversation, error) {
	if db == nil {
		return nil, errors.New("chat: nil db")
	}
	if userID == 0 {
		return nil, errors.New("chat: empty user id")
	}
	conversation := models.Conversation{
		PublicID: uuid.NewString(),
		UserID:   userID,
		Title:    strings.TrimSpace(title),
	}
	if errCreate := db.WithContext(ctx).Create(&conversation).Error; errCreate != nil {
		return nil, errCreate
	}
	return &conversation, nil
}

// CreateExchange registers one pending user/assistant turn inside a
// conversation. Token and coin counters stay zero until the billing engine
// finalizes the charge.
func CreateExchange(ctx context.Context, db *gorm.DB, conversationID uint64) (*models.Exchange, error) {
	if db == nil {
		return nil, errors.New("chat: nil db")
	}
	if conversationID == 0 {
		return nil, errors.New("chat: empty conversation id")
	}
	exchange := models.Exchange{
		PublicID:       uuid.NewString(),
		ConversationID: conversationID,
	}
	if errCreate := db.WithContext(ctx).Create(&exchange).Error; errCreate != nil {
		return nil, errCreate
	}
	return &exchange, nil
}
