package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chatmeter/chatmeter/internal/models"
	"github.com/chatmeter/chatmeter/internal/pricing"
)

// ModelsPricingHandler exposes the customer-facing pricing list.
type ModelsPricingHandler struct {
	db *gorm.DB
}

// NewModelsPricingHandler constructs a ModelsPricingHandler.
func NewModelsPricingHandler(db *gorm.DB) *ModelsPricingHandler {
	return &ModelsPricingHandler{db: db}
}

// modelPricingDTO defines one priced model in the response.
type modelPricingDTO struct {
	ID             uint64 `json:"id"`
	Name           string `json:"name"`
	PriceInput     string `json:"price_input_per_1m"`
	PriceOutput    string `json:"price_output_per_1m"`
	NetPriceInput  string `json:"net_price_input_per_1m"`
	NetPriceOutput string `json:"net_price_output_per_1m"`
	MarkupRate     string `json:"markup_rate"`
}

// List returns active models with their charged and provider-net prices.
func (h *ModelsPricingHandler) List(c *gin.Context) {
	var rows []models.AIModel
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("active = ?", true).
		Order("name ASC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query models failed"})
		return
	}

	resp := make([]modelPricingDTO, 0, len(rows))
	for i := range rows {
		snap := pricing.SnapshotOf(&rows[i])
		netInput, netOutput, errDisplay := pricing.DisplayPrices(snap)
		if errDisplay != nil {
			continue
		}
		resp = append(resp, modelPricingDTO{
			ID:             rows[i].ID,
			Name:           rows[i].Name,
			PriceInput:     rows[i].BasePriceInput.String(),
			PriceOutput:    rows[i].BasePriceOutput.String(),
			NetPriceInput:  netInput.String(),
			NetPriceOutput: netOutput.String(),
			MarkupRate:     rows[i].MarkupRate.String(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"models": resp})
}
