package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chatmeter/chatmeter/internal/models"
	"github.com/chatmeter/chatmeter/internal/security"
)

// APIKeyAdminHandler manages service caller API keys.
type APIKeyAdminHandler struct {
	db *gorm.DB
}

// NewAPIKeyAdminHandler constructs an APIKeyAdminHandler.
func NewAPIKeyAdminHandler(db *gorm.DB) *APIKeyAdminHandler {
	return &APIKeyAdminHandler{db: db}
}

// createAPIKeyRequest defines the key creation body.
type createAPIKeyRequest struct {
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// Create issues a new API key. The full key value is only returned here.
func (h *APIKeyAdminHandler) Create(c *gin.Context) {
	var body createAPIKeyRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	token, errGenerate := security.GenerateAPIKey()
	if errGenerate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate key failed"})
		return
	}

	key := models.APIKey{
		Name:    name,
		APIKey:  token,
		IsAdmin: body.IsAdmin,
		Active:  true,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&key).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create key failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"api_key": gin.H{
		"id":       key.ID,
		"name":     key.Name,
		"key":      key.APIKey,
		"is_admin": key.IsAdmin,
	}})
}

// Revoke disables an API key.
func (h *APIKeyAdminHandler) Revoke(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	now := time.Now().UTC()
	res := h.db.WithContext(c.Request.Context()).
		Model(&models.APIKey{}).
		Where("id = ?", id).
		Updates(map[string]any{"active": false, "revoked_at": now})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "revoke failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
