package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chatmeter/chatmeter/internal/billing"
)

// WalletHandler exposes wallet balance reads.
type WalletHandler struct {
	engine *billing.Engine
}

// NewWalletHandler constructs a WalletHandler.
func NewWalletHandler(engine *billing.Engine) *WalletHandler {
	return &WalletHandler{engine: engine}
}

// Get returns the wallet buckets for a user.
func (h *WalletHandler) Get(c *gin.Context) {
	userID, ok := parseUserIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	balance, errGet := h.engine.GetBalance(c.Request.Context(), userID)
	if errGet != nil {
		if errors.Is(errGet, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query wallet failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":           balance.Balance.String(),
		"paid_balance":      balance.PaidBalance.String(),
		"promotion_balance": balance.PromotionBalance.String(),
	})
}
