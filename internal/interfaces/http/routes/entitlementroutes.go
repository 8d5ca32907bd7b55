package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/girder-hq/girder/internal/interfaces/http/handlers"
	"github.com/girder-hq/girder/internal/interfaces/http/middleware"
)

type EntitlementRouteConfig struct {
	EntitlementHandler *handlers.EntitlementHandler
}

func SetupEntitlementRoutes(engine *gin.Engine, config *EntitlementRouteConfig) {
	entitlements := engine.Group("/api/v1/entitlements")
	entitlements.Use(middleware.ActorContext())
	{
		entitlements.GET("/capabilities", config.EntitlementHandler.GetCapabilities)
		entitlements.GET("/view", config.EntitlementHandler.GetEntitlementView)
		entitlements.POST("/admit", config.EntitlementHandler.AdmitAction)
	}
}
