package router

import (
	"github.com/gin-gonic/gin"

	"pulsedesk.app/pulse/internal/http/handler"
	"pulsedesk.app/pulse/internal/http/middleware"
	"pulsedesk.app/pulse/internal/secrets"
	"pulsedesk.app/pulse/internal/service"
	"pulsedesk.app/pulse/internal/signature"
	"pulsedesk.app/pulse/internal/store"
)

type RouterConfig struct {
	AdminAPIKey string
	TraceHeader string
}

func SetupRoutes(router *gin.Engine, services *service.Services, stores *store.Stores, secretsSvc *secrets.Service, verifier *signature.Verifier, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	ingestHandler := handler.NewIngestHandler(services.Ingest(), verifier, cfg.TraceHeader)
	router.POST("/ingest/:source", ingestHandler.Ingest)

	adminKey := middleware.RequireAdminKey(cfg.AdminAPIKey)

	admin := router.Group("/admin", adminKey)
	{
		outboxHandler := handler.NewOutboxHandler(stores.Outbox())
		admin.GET("/outbox", outboxHandler.List)
		admin.POST("/outbox/:id/confirm", outboxHandler.Confirm)
		admin.POST("/outbox/:id/retry", outboxHandler.Retry)
		admin.POST("/outbox/:id/cancel", outboxHandler.Cancel)

		threadsHandler := handler.NewThreadsHandler(stores.Threads(), stores.Events(), stores.Digests())
		admin.GET("/threads", threadsHandler.List)
		admin.GET("/threads/:id/events", threadsHandler.Events)
		admin.GET("/threads/:id/digest", threadsHandler.Digest)

		secretsHandler := handler.NewSecretsHandler(secretsSvc)
		admin.GET("/secrets", secretsHandler.List)
		admin.GET("/secrets/:key", secretsHandler.Get)
		admin.PUT("/secrets/:key", secretsHandler.Put)
		admin.DELETE("/secrets/:key", secretsHandler.Delete)
	}

	config := router.Group("/config", adminKey)
	{
		topHandler := handler.NewConfigTopHandler(stores.ConfigTop())
		config.GET("/top", topHandler.List)
		config.POST("/top", topHandler.Create)
		config.DELETE("/top/:id", topHandler.Delete)
	}
}
