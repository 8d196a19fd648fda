package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chatmeter/chatmeter/internal/grant"
)

// PrepaidCardHandler exposes card redemption.
type PrepaidCardHandler struct {
	grants *grant.Service
}

// NewPrepaidCardHandler constructs a PrepaidCardHandler.
func NewPrepaidCardHandler(grants *grant.Service) *PrepaidCardHandler {
	return &PrepaidCardHandler{grants: grants}
}

// redeemCardRequest defines the request body for card redemption.
type redeemCardRequest struct {
	UserID   uint64 `json:"user_id"`
	CardSN   string `json:"card_sn"`
	Password string `json:"password"`
}

// Redeem credits a prepaid card's value to the user's paid bucket.
func (h *PrepaidCardHandler) Redeem(c *gin.Context) {
	var body redeemCardRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.UserID == 0 || strings.TrimSpace(body.CardSN) == "" || strings.TrimSpace(body.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id, card_sn and password are required"})
		return
	}

	entry, errRedeem := h.grants.RedeemCard(c.Request.Context(), body.UserID, body.CardSN, body.Password)
	if errRedeem != nil {
		switch {
		case errors.Is(errRedeem, grant.ErrCardNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		case errors.Is(errRedeem, grant.ErrCardPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid password"})
		case errors.Is(errRedeem, grant.ErrCardDisabled):
			c.JSON(http.StatusBadRequest, gin.H{"error": "card is disabled"})
		case errors.Is(errRedeem, grant.ErrCardRedeemed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "card already redeemed"})
		case errors.Is(errRedeem, grant.ErrCardExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "card expired"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "redeem failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transactionToDTO(entry)})
}
