package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/girder-hq/girder/internal/interfaces/http/handlers"
)

type BillingRouteConfig struct {
	WebhookHandler *handlers.BillingWebhookHandler
}

func SetupBillingRoutes(engine *gin.Engine, config *BillingRouteConfig) {
	// Webhook calls are authenticated by signature, not actor headers.
	webhooks := engine.Group("/api/v1/webhooks")
	{
		webhooks.POST("/billing", config.WebhookHandler.HandleWebhook)
	}
}
