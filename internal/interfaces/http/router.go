package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	billingUC "github.com/girder-hq/girder/internal/application/billing/usecases"
	entitlementUC "github.com/girder-hq/girder/internal/application/entitlement/usecases"
	"github.com/girder-hq/girder/internal/infrastructure/billing"
	"github.com/girder-hq/girder/internal/infrastructure/cache"
	"github.com/girder-hq/girder/internal/infrastructure/config"
	"github.com/girder-hq/girder/internal/infrastructure/repository"
	"github.com/girder-hq/girder/internal/interfaces/http/handlers"
	"github.com/girder-hq/girder/internal/interfaces/http/middleware"
	"github.com/girder-hq/girder/internal/interfaces/http/routes"
	"github.com/girder-hq/girder/internal/shared/logger"
	"github.com/girder-hq/girder/internal/shared/utils"
)

// Router wires repositories, use cases and handlers into a gin engine.
type Router struct {
	engine *gin.Engine

	// Reconciler is exposed so the scheduler can run the same sweep the
	// HTTP layer depends on.
	Reconciler *billingUC.ReconcileSubscriptionsUseCase
}

func NewRouter(
	db *gorm.DB,
	redisClient *redis.Client,
	cfg *config.Config,
	appLogger logger.Interface,
) *Router {
	engine := gin.New()
	engine.Use(middleware.Logger(appLogger))
	engine.Use(middleware.Recovery())

	subscriptionRepo := repository.NewSubscriptionRepository(db, appLogger)
	historyRepo := repository.NewSubscriptionHistoryRepository(db, appLogger)
	notificationRepo := repository.NewNotificationRepository(db, appLogger)
	usageRepo := repository.NewUsageRepository(db, appLogger)
	processedEvents := cache.NewProcessedEventStore(redisClient, cfg.Billing.DedupeTTL())
	webhookGateway := billing.NewWebhookGateway(cfg.Billing.WebhookSecret)

	getOrCreate := billingUC.NewGetOrCreateSubscriptionUseCase(subscriptionRepo, historyRepo, appLogger)
	scheduleCancel := billingUC.NewScheduleCancellationUseCase(subscriptionRepo, historyRepo, appLogger)
	changeTier := billingUC.NewApplyTierChangeUseCase(subscriptionRepo, historyRepo, appLogger)
	listHistory := billingUC.NewListSubscriptionHistoryUseCase(historyRepo)
	handleEvent := billingUC.NewHandleBillingEventUseCase(
		subscriptionRepo, historyRepo, notificationRepo, processedEvents, appLogger)
	reconciler := billingUC.NewReconcileSubscriptionsUseCase(
		subscriptionRepo, historyRepo, notificationRepo, cfg.Governance.WarningWindow(), appLogger)

	getCapabilities := entitlementUC.NewGetCapabilitiesUseCase(usageRepo, getOrCreate, appLogger)
	getEntitlementView := entitlementUC.NewGetEntitlementViewUseCase(usageRepo, getOrCreate, appLogger)
	admitAction := entitlementUC.NewAdmitActionUseCase(usageRepo, getOrCreate, appLogger)

	entitlementHandler := handlers.NewEntitlementHandler(
		getCapabilities, getEntitlementView, admitAction, appLogger)
	webhookHandler := handlers.NewBillingWebhookHandler(webhookGateway, handleEvent, appLogger)
	subscriptionHandler := handlers.NewSubscriptionHandler(
		getOrCreate, scheduleCancel, changeTier, listHistory, appLogger)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, appLogger)

	routes.SetupEntitlementRoutes(engine, &routes.EntitlementRouteConfig{
		EntitlementHandler: entitlementHandler,
	})
	routes.SetupBillingRoutes(engine, &routes.BillingRouteConfig{
		WebhookHandler: webhookHandler,
	})
	routes.SetupSubscriptionRoutes(engine, &routes.SubscriptionRouteConfig{
		SubscriptionHandler: subscriptionHandler,
	})
	routes.SetupNotificationRoutes(engine, &routes.NotificationRouteConfig{
		NotificationHandler: notificationHandler,
	})

	engine.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, http.StatusOK, "", gin.H{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Router{
		engine:     engine,
		Reconciler: reconciler,
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
