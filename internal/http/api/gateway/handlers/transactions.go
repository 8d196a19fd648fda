package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chatmeter/chatmeter/internal/ledger"
	"github.com/chatmeter/chatmeter/internal/models"
)

// TransactionHandler exposes ledger listing per user.
type TransactionHandler struct {
	db *gorm.DB
}

// NewTransactionHandler constructs a TransactionHandler.
func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{db: db}
}

// List returns one page of a user's ledger entries, newest first. Filters:
// type (repeatable), from/to (RFC3339), search (description substring).
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := parseUserIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var filter ledger.ListFilter
	for _, raw := range c.QueryArray("type") {
		txType := models.TransactionType(strings.TrimSpace(raw))
		if !txType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown transaction type: " + raw})
			return
		}
		filter.Types = append(filter.Types, txType)
	}
	if fromStr := strings.TrimSpace(c.Query("from")); fromStr != "" {
		if t, errParse := time.Parse(time.RFC3339, fromStr); errParse == nil {
			utc := t.UTC()
			filter.From = &utc
		}
	}
	if toStr := strings.TrimSpace(c.Query("to")); toStr != "" {
		if t, errParse := time.Parse(time.RFC3339, toStr); errParse == nil {
			utc := t.UTC()
			filter.To = &utc
		}
	}
	filter.Search = c.Query("search")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	entries, total, errList := ledger.List(c.Request.Context(), h.db, userID, filter, page, pageSize)
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query transactions failed"})
		return
	}

	resp := make([]*transactionDTO, 0, len(entries))
	for i := range entries {
		resp = append(resp, transactionToDTO(&entries[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": resp,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
	})
}
