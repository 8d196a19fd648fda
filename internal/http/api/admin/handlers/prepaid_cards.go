package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chatmeter/chatmeter/internal/grant"
	"github.com/chatmeter/chatmeter/internal/models"
	"github.com/chatmeter/chatmeter/internal/wallet"
)

// PrepaidCardAdminHandler manages prepaid card issuance.
type PrepaidCardAdminHandler struct {
	db     *gorm.DB
	grants *grant.Service
}

// NewPrepaidCardAdminHandler constructs a PrepaidCardAdminHandler.
func NewPrepaidCardAdminHandler(db *gorm.DB, grants *grant.Service) *PrepaidCardAdminHandler {
	return &PrepaidCardAdminHandler{db: db, grants: grants}
}

// createCardRequest defines the card creation body.
type createCardRequest struct {
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	ValidDays int    `json:"valid_days"`
}

// Create issues a new prepaid card and returns its serial and password.
func (h *PrepaidCardAdminHandler) Create(c *gin.Context) {
	var body createCardRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	amount, errParse := decimal.NewFromString(strings.TrimSpace(body.Amount))
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	card, errCreate := h.grants.CreateCard(c.Request.Context(), body.Name, amount, body.ValidDays)
	if errCreate != nil {
		var invalidAmount *wallet.InvalidAmountError
		if errors.As(errCreate, &invalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create card failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": gin.H{
		"id":         card.ID,
		"name":       card.Name,
		"card_sn":    card.CardSN,
		"password":   card.Password,
		"amount":     card.Amount.String(),
		"valid_days": card.ValidDays,
	}})
}

// List returns issued cards, newest first.
func (h *PrepaidCardAdminHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.PrepaidCard{})
	if redeemed := strings.TrimSpace(c.Query("redeemed")); redeemed == "true" {
		q = q.Where("redeemed_user_id IS NOT NULL")
	} else if redeemed == "false" {
		q = q.Where("redeemed_user_id IS NULL")
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query cards failed"})
		return
	}

	var cards []models.PrepaidCard
	if errFind := q.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&cards).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query cards failed"})
		return
	}

	resp := make([]gin.H, 0, len(cards))
	for _, card := range cards {
		resp = append(resp, gin.H{
			"id":               card.ID,
			"name":             card.Name,
			"card_sn":          card.CardSN,
			"amount":           card.Amount.String(),
			"valid_days":       card.ValidDays,
			"is_enabled":       card.IsEnabled,
			"redeemed_user_id": card.RedeemedUserID,
			"redeemed_at":      card.RedeemedAt,
			"created_at":       card.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"cards": resp, "total": total})
}
