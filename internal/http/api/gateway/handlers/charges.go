package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chatmeter/chatmeter/internal/billing"
	"github.com/chatmeter/chatmeter/internal/models"
	"github.com/chatmeter/chatmeter/internal/pricing"
	"github.com/chatmeter/chatmeter/internal/wallet"
)

// ChargeHandler exposes the usage charge endpoint to the chat orchestrator.
type ChargeHandler struct {
	db     *gorm.DB
	engine *billing.Engine
}

// NewChargeHandler constructs a ChargeHandler.
func NewChargeHandler(db *gorm.DB, engine *billing.Engine) *ChargeHandler {
	return &ChargeHandler{db: db, engine: engine}
}

// chargeRequest defines the request body for a usage charge.
type chargeRequest struct {
	UserID       uint64 `json:"user_id"`
	ExchangeID   string `json:"exchange_id"`
	ModelID      uint64 `json:"model_id"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
}

// Charge prices a completed exchange and debits the user's wallet. The model
// row is snapshotted here, once, before the charge starts.
func (h *ChargeHandler) Charge(c *gin.Context) {
	var body chargeRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.UserID == 0 || strings.TrimSpace(body.ExchangeID) == "" || body.ModelID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id, exchange_id and model_id are required"})
		return
	}

	var model models.AIModel
	if errFind := h.db.WithContext(c.Request.Context()).
		Take(&model, body.ModelID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "model not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query model failed"})
		return
	}

	entry, errCharge := h.engine.ChargeUsage(
		c.Request.Context(),
		body.UserID,
		strings.TrimSpace(body.ExchangeID),
		pricing.SnapshotOf(&model),
		body.InputTokens,
		body.OutputTokens,
	)
	if errCharge != nil {
		var insufficient *wallet.InsufficientFundsError
		var invalidTokens *pricing.InvalidTokenCountError
		switch {
		case errors.As(errCharge, &insufficient):
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error":     "insufficient funds",
				"shortfall": insufficient.Shortfall.String(),
			})
		case errors.Is(errCharge, pricing.ErrModelInactive):
			c.JSON(http.StatusConflict, gin.H{"error": "model inactive"})
		case errors.As(errCharge, &invalidTokens):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token counts"})
		case errors.Is(errCharge, billing.ErrExchangeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "exchange not found"})
		case errors.Is(errCharge, billing.ErrExchangeOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "exchange does not belong to user"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "charge failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transactionToDTO(entry)})
}
