package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/chatmeter/chatmeter/internal/models"
	"github.com/chatmeter/chatmeter/internal/util"
)

// APIKeyAuth authenticates service callers by API key. Keys arrive either as
// a bearer token or in the X-Api-Key header. When adminOnly is set, only
// admin keys pass.
func APIKeyAuth(db *gorm.DB, adminOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractAPIKey(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		var key models.APIKey
		if errFind := db.WithContext(c.Request.Context()).
			Where("api_key = ?", token).
			Take(&key).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				log.WithField("api_key", util.HideAPIKey(token)).Debug("unknown api key")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
				return
			}
			log.WithError(errFind).Error("api key lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authentication service error"})
			return
		}

		now := time.Now().UTC()
		if !key.Usable(now) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}
		if adminOnly && !key.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin key required"})
			return
		}

		// Best effort; losing a last-used update never fails the request.
		if errTouch := db.WithContext(c.Request.Context()).
			Model(&models.APIKey{}).
			Where("id = ?", key.ID).
			Update("last_used_at", now).Error; errTouch != nil {
			log.WithError(errTouch).Debug("api key last-used update failed")
		}

		c.Set("apiKey", &key)
		c.Next()
	}
}

// extractAPIKey pulls the key from the Authorization or X-Api-Key header.
func extractAPIKey(r *http.Request) string {
	if r == nil {
		return ""
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[len("bearer "):])
	}
	return strings.TrimSpace(r.Header.Get("X-Api-Key"))
}
