package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chatmeter/chatmeter/internal/models"
)

// parseUserIDParam parses the :user_id path parameter.
func parseUserIDParam(c *gin.Context) (uint64, bool) {
	raw := strings.TrimSpace(c.Param("user_id"))
	id, errParse := strconv.ParseUint(raw, 10, 64)
	if errParse != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// transactionDTO is the ledger entry response payload.
type transactionDTO struct {
	ID             uint64    `json:"id"`
	Type           string    `json:"type"`
	Amount         string    `json:"amount"`
	BalanceAfter   string    `json:"balance_after"`
	ModelID        *uint64   `json:"model_id,omitempty"`
	ConversationID *uint64   `json:"conversation_id,omitempty"`
	ExchangeID     *uint64   `json:"exchange_id,omitempty"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// transactionToDTO maps a ledger entry to its response payload.
func transactionToDTO(entry *models.CoinTransaction) *transactionDTO {
	if entry == nil {
		return nil
	}
	return &transactionDTO{
		ID:             entry.ID,
		Type:           string(entry.Type),
		Amount:         entry.Amount.String(),
		BalanceAfter:   entry.BalanceAfter.String(),
		ModelID:        entry.ModelID,
		ConversationID: entry.ConversationID,
		ExchangeID:     entry.ExchangeID,
		Description:    entry.Description,
		CreatedAt:      entry.CreatedAt,
	}
}
