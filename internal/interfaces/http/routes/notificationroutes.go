package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/girder-hq/girder/internal/interfaces/http/handlers"
	"github.com/girder-hq/girder/internal/interfaces/http/middleware"
)

type NotificationRouteConfig struct {
	NotificationHandler *handlers.NotificationHandler
}

func SetupNotificationRoutes(engine *gin.Engine, config *NotificationRouteConfig) {
	notifications := engine.Group("/api/v1/notifications")
	notifications.Use(middleware.ActorContext())
	{
		notifications.GET("", config.NotificationHandler.ListNotifications)

		// Specific paths before the parameterized one.
		notifications.GET("/unread-count", config.NotificationHandler.GetUnreadCount)
		notifications.PATCH("/:id/read", config.NotificationHandler.MarkRead)
	}
}
