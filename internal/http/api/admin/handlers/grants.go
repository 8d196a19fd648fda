package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/chatmeter/chatmeter/internal/grant"
	"github.com/chatmeter/chatmeter/internal/models"
	"github.com/chatmeter/chatmeter/internal/wallet"
)

// GrantHandler exposes wallet credit endpoints to admin and payment callers.
type GrantHandler struct {
	grants *grant.Service
}

// NewGrantHandler constructs a GrantHandler.
func NewGrantHandler(grants *grant.Service) *GrantHandler {
	return &GrantHandler{grants: grants}
}

// grantRequest defines the request body for a credit.
type grantRequest struct {
	UserID uint64 `json:"user_id"`
	Amount string `json:"amount"`
	Bucket string `json:"bucket"`
	Reason string `json:"reason"`
	Admin  string `json:"admin"` // Acting admin name; makes the grant an adjustment.
	Note   string `json:"note"`
}

// Credit adds funds to a user's wallet. With an admin name set the entry is
// recorded as an ADMIN_ADJUSTMENT, otherwise as a purchase or promotion
// credit depending on the bucket.
func (h *GrantHandler) Credit(c *gin.Context) {
	var body grantRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	amount, errParse := decimal.NewFromString(strings.TrimSpace(body.Amount))
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	bucket := wallet.Bucket(strings.TrimSpace(body.Bucket))

	var entry *models.CoinTransaction
	var errCredit error
	if admin := strings.TrimSpace(body.Admin); admin != "" {
		entry, errCredit = h.grants.AdminAdjust(c.Request.Context(), body.UserID, amount, bucket, admin, body.Note)
	} else {
		entry, errCredit = h.grants.Credit(c.Request.Context(), body.UserID, amount, bucket, body.Reason)
	}
	if errCredit != nil {
		var invalidAmount *wallet.InvalidAmountError
		var invalidBucket *wallet.InvalidBucketError
		switch {
		case errors.As(errCredit, &invalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		case errors.As(errCredit, &invalidBucket):
			c.JSON(http.StatusBadRequest, gin.H{"error": "bucket must be paid or promotion"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "credit failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": gin.H{
		"id":            entry.ID,
		"type":          string(entry.Type),
		"amount":        entry.Amount.String(),
		"balance_after": entry.BalanceAfter.String(),
		"description":   entry.Description,
		"created_at":    entry.CreatedAt,
	}})
}
