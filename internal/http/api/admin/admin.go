package admin

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chatmeter/chatmeter/internal/grant"
	internalhttp "github.com/chatmeter/chatmeter/internal/http"
	"github.com/chatmeter/chatmeter/internal/http/api/admin/handlers"
)

// RegisterAdminRoutes registers the endpoints for admin and payment callers.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, grants *grant.Service) {
	if r == nil || db == nil {
		return
	}

	group := r.Group("/v0/admin")
	group.Use(internalhttp.APIKeyAuth(db, true))

	grantHandler := handlers.NewGrantHandler(grants)
	group.POST("/grants", grantHandler.Credit)

	walletHandler := handlers.NewWalletAdminHandler(db)
	group.GET("/wallets/:user_id", walletHandler.Get)
	group.GET("/wallets/:user_id/audit", walletHandler.Audit)

	cardHandler := handlers.NewPrepaidCardAdminHandler(db, grants)
	group.GET("/prepaid-cards", cardHandler.List)
	group.POST("/prepaid-cards", cardHandler.Create)

	apiKeyHandler := handlers.NewAPIKeyAdminHandler(db)
	group.POST("/api-keys", apiKeyHandler.Create)
	group.DELETE("/api-keys/:id", apiKeyHandler.Revoke)
}
