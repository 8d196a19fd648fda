package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chatmeter/chatmeter/internal/chat"
)

// ConversationHandler exposes conversation and exchange registration for the
// chat orchestrator.
type ConversationHandler struct {
	db *gorm.DB
}

// NewConversationHandler constructs a ConversationHandler.
func NewConversationHandler(db *gorm.DB) *ConversationHandler {
	return &ConversationHandler{db: db}
}

// createConversationRequest defines the conversation creation body.
type createConversationRequest struct {
	UserID uint64 `json:"user_id"`
	Title  string `json:"title"`
}

// Create starts a new conversation.
func (h *ConversationHandler) Create(c *gin.Context) {
	var body createConversationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	conversation, errCreate := chat.CreateConversation(c.Request.Context(), h.db, body.UserID, body.Title)
	if errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create conversation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        conversation.ID,
		"public_id": conversation.PublicID,
	})
}

// CreateExchange registers a pending exchange inside a conversation.
func (h *ConversationHandler) CreateExchange(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("id"))
	conversationID, errParse := strconv.ParseUint(raw, 10, 64)
	if errParse != nil || conversationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	exchange, errCreate := chat.CreateExchange(c.Request.Context(), h.db, conversationID)
	if errCreate != nil {
		if errors.Is(errCreate, gorm.ErrForeignKeyViolated) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create exchange failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        exchange.ID,
		"public_id": exchange.PublicID,
	})
}
