package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/girder-hq/girder/internal/interfaces/http/handlers"
	"github.com/girder-hq/girder/internal/interfaces/http/middleware"
)

type SubscriptionRouteConfig struct {
	SubscriptionHandler *handlers.SubscriptionHandler
}

func SetupSubscriptionRoutes(engine *gin.Engine, config *SubscriptionRouteConfig) {
	subscriptions := engine.Group("/api/v1/subscription")
	subscriptions.Use(middleware.ActorContext())
	{
		subscriptions.GET("", config.SubscriptionHandler.GetSubscription)
		subscriptions.GET("/history", config.SubscriptionHandler.ListHistory)
		subscriptions.POST("/cancel", config.SubscriptionHandler.CancelSubscription)
	}

	admin := engine.Group("/api/v1/admin/subscriptions")
	admin.Use(middleware.ActorContext())
	{
		admin.PUT("/:actor_id/tier", config.SubscriptionHandler.ChangeTier)
	}
}
