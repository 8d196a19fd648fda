package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/chatmeter/chatmeter/internal/billing"
	"github.com/chatmeter/chatmeter/internal/config"
	"github.com/chatmeter/chatmeter/internal/db"
	"github.com/chatmeter/chatmeter/internal/grant"
	"github.com/chatmeter/chatmeter/internal/http/api/admin"
	"github.com/chatmeter/chatmeter/internal/http/api/gateway"
	"github.com/chatmeter/chatmeter/internal/logging"
	"github.com/chatmeter/chatmeter/internal/wallet"
)

// RunServer boots the billing gateway with database-backed components.
func RunServer(ctx context.Context, configPath string) error {
	cfg, errLoad := config.Load(config.ResolveConfigPath(configPath))
	if errLoad != nil {
		return errLoad
	}
	logging.Setup(cfg.Log)

	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	locks := wallet.NewLockTable()
	engine := billing.NewEngine(conn, locks)
	grants := grant.NewService(conn, locks)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gateway.RegisterGatewayRoutes(router, conn, engine, grants)
	admin.RegisterAdminRoutes(router, conn, grants)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	log.WithField("addr", cfg.Server.Addr).Info("billing gateway listening")
	if errServe := server.ListenAndServe(); errServe != nil && errServe != http.ErrServerClosed {
		return errServe
	}
	return nil
}

// Migrate opens the database and runs migrations only.
func Migrate(ctx context.Context, configPath string) error {
	cfg, errLoad := config.Load(config.ResolveConfigPath(configPath))
	if errLoad != nil {
		return errLoad
	}
	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	return db.Migrate(conn)
}
