package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/platewise/platewise/internal/config"
	"github.com/platewise/platewise/internal/server/http/handlers"
	"github.com/platewise/platewise/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StorefrontFacade, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade, facade)
	walletHandler := handlers.NewWalletHandler(facade)
	couponHandler := handlers.NewCouponHandler(facade)
	refundHandler := handlers.NewRefundHandler(facade)
	webhookHandler := handlers.NewWebhookHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/health", healthHandler.Check)

	api := engine.Group("/api")
	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	userAuth := user.Group("")
	userAuth.Use(middleware.AuthRequired(facade))
	userAuth.GET("/orders", orderHandler.List)
	userAuth.POST("/suborders/:id/skip", orderHandler.Skip)
	userAuth.POST("/suborders/:id/unskip", orderHandler.Unskip)
	userAuth.GET("/wallet", walletHandler.Balance)
	userAuth.GET("/wallet/history", walletHandler.History)
	userAuth.POST("/coupons/preview", couponHandler.Preview)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired(cfg.AdminToken))
	admin.POST("/refunds", refundHandler.Refund)

	webhooks := api.Group("/webhooks")
	webhooks.Use(middleware.WebhookSecret(cfg.WebhookSecret))
	webhooks.POST("/payment", webhookHandler.Payment)

	return engine
}
