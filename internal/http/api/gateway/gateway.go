package gateway

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chatmeter/chatmeter/internal/billing"
	"github.com/chatmeter/chatmeter/internal/grant"
	internalhttp "github.com/chatmeter/chatmeter/internal/http"
	"github.com/chatmeter/chatmeter/internal/http/api/gateway/handlers"
)

// RegisterGatewayRoutes registers the endpoints consumed by the chat
// orchestrator and other service callers.
func RegisterGatewayRoutes(r *gin.Engine, db *gorm.DB, engine *billing.Engine, grants *grant.Service) {
	if r == nil || db == nil {
		return
	}

	group := r.Group("/v0/gateway")
	group.Use(internalhttp.APIKeyAuth(db, false))

	chargeHandler := handlers.NewChargeHandler(db, engine)
	group.POST("/charges", chargeHandler.Charge)

	walletHandler := handlers.NewWalletHandler(engine)
	group.GET("/wallets/:user_id", walletHandler.Get)

	transactionHandler := handlers.NewTransactionHandler(db)
	group.GET("/wallets/:user_id/transactions", transactionHandler.List)

	conversationHandler := handlers.NewConversationHandler(db)
	group.POST("/conversations", conversationHandler.Create)
	group.POST("/conversations/:id/exchanges", conversationHandler.CreateExchange)

	pricingHandler := handlers.NewModelsPricingHandler(db)
	group.GET("/models/pricing", pricingHandler.List)

	cardHandler := handlers.NewPrepaidCardHandler(grants)
	group.POST("/prepaid-cards/redeem", cardHandler.Redeem)
}
