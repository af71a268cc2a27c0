package http

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/scoutystream/scouty/docs"
	"github.com/scoutystream/scouty/internal/infrastructure/permission"
	"github.com/scoutystream/scouty/internal/interfaces/http/middleware"
)

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	h := c.hdlrs

	c.engine.Use(middleware.RequestID())
	c.engine.Use(middleware.Logger(c.log))
	c.engine.Use(middleware.Recovery(c.log))
	c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))
	c.engine.Use(middleware.Metrics(c.metrics))

	c.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	c.engine.GET("/metrics", gin.WrapH(c.metrics.Handler()))

	api := c.engine.Group("/api", c.rateLimiter.Limit())
	api.GET("/health", h.healthHandler.HealthCheck)

	assets := api.Group("/assets")
	{
		assets.GET("", h.assetHandler.ListAssets)
		assets.GET("/:id", h.assetHandler.GetAsset)
		assets.GET("/:id/manifest", h.assetHandler.GetManifest)
		if c.cfg.Payment.Provider == "mock" {
			assets.POST("/:id/purchase", h.assetHandler.Purchase)
		}
	}

	payments := api.Group("/payments")
	{
		payments.POST("/x402/verify", h.paymentHandler.VerifyPayment)
		payments.POST("/webhook", h.paymentHandler.HandleWebhook)
		payments.GET("/status/:transactionId", h.paymentHandler.GetPaymentStatus)
		payments.GET("/history/:userId", h.paymentHandler.GetUserHistory)
	}

	uploads := api.Group("/uploads", c.authMiddleware.RequireAuth())
	{
		uploads.POST("/request",
			c.permissionMiddleware.RequirePermission(permission.ResourceUpload, permission.ActionCreate),
			h.uploadHandler.RequestUpload)
		uploads.POST("/commit",
			c.permissionMiddleware.RequirePermission(permission.ResourceUpload, permission.ActionCreate),
			h.uploadHandler.CommitUpload)
		uploads.GET("/status/:assetId",
			c.permissionMiddleware.RequirePermission(permission.ResourceUpload, permission.ActionRead),
			h.uploadHandler.GetUploadStatus)
	}

	admin := api.Group("/admin", c.authMiddleware.RequireAuth())
	{
		admin.POST("/access/grant",
			c.permissionMiddleware.RequirePermission(permission.ResourceAccess, permission.ActionGrant),
			h.adminAccessHandler.GrantAccess)
		admin.POST("/access/grant-batch",
			c.permissionMiddleware.RequirePermission(permission.ResourceAccess, permission.ActionGrant),
			h.adminAccessHandler.GrantAccessBatch)
		admin.POST("/access/revoke",
			c.permissionMiddleware.RequirePermission(permission.ResourceAccess, permission.ActionRevoke),
			h.adminAccessHandler.RevokeAccess)
		admin.GET("/assets/:id/access",
			c.permissionMiddleware.RequirePermission(permission.ResourceAccess, permission.ActionRead),
			h.adminAccessHandler.GetAssetAccess)
	}
}
