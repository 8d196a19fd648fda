package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chatmeter/chatmeter/internal/ledger"
	"github.com/chatmeter/chatmeter/internal/models"
)

// WalletAdminHandler exposes wallet inspection and audit endpoints.
type WalletAdminHandler struct {
	db *gorm.DB
}

// NewWalletAdminHandler constructs a WalletAdminHandler.
func NewWalletAdminHandler(db *gorm.DB) *WalletAdminHandler {
	return &WalletAdminHandler{db: db}
}

func parseUserIDParam(c *gin.Context) (uint64, bool) {
	raw := strings.TrimSpace(c.Param("user_id"))
	id, errParse := strconv.ParseUint(raw, 10, 64)
	if errParse != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// Get returns the full wallet row including lifetime counters.
func (h *WalletAdminHandler) Get(c *gin.Context) {
	userID, ok := parseUserIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var w models.Wallet
	if errTake := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Take(&w).Error; errTake != nil {
		if errors.Is(errTake, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query wallet failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet": gin.H{
		"user_id":             w.UserID,
		"balance":             w.Balance.String(),
		"paid_balance":        w.PaidBalance.String(),
		"promotion_balance":   w.PromotionBalance.String(),
		"total_purchased":     w.TotalPurchased.String(),
		"total_used":          w.TotalUsed.String(),
		"last_transaction_at": w.LastTransactionAt,
	}})
}

// Audit replays the user's ledger chain and reports whether it reproduces
// the wallet balance.
func (h *WalletAdminHandler) Audit(c *gin.Context) {
	userID, ok := parseUserIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if errVerify := ledger.VerifyChain(c.Request.Context(), h.db, userID); errVerify != nil {
		var chainErr *ledger.ChainError
		if errors.As(errVerify, &chainErr) {
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": chainErr.Error()})
			return
		}
		if errors.Is(errVerify, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "audit failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
