package http

import (
	"github.com/gin-gonic/gin"

	"scholara/internal/interfaces/http/handlers"
	"scholara/internal/interfaces/http/middleware"
	sharedConfig "scholara/internal/shared/config"
	"scholara/internal/shared/logger"
)

// Router wires the HTTP surface: capability queries, tenant and plan
// administration, and subscription management.
type Router struct {
	engine              *gin.Engine
	tenantHandler       *handlers.TenantHandler
	planHandler         *handlers.PlanHandler
	subscriptionHandler *handlers.SubscriptionHandler
	entitlementHandler  *handlers.EntitlementHandler
}

func NewRouter(
	cfg *sharedConfig.ServerConfig,
	tenantHandler *handlers.TenantHandler,
	planHandler *handlers.PlanHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	entitlementHandler *handlers.EntitlementHandler,
) *Router {
	gin.SetMode(cfg.Mode)

	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger(logger.NewLogger()))
	engine.Use(middleware.CORS(cfg.AllowedOrigins))

	r := &Router{
		engine:              engine,
		tenantHandler:       tenantHandler,
		planHandler:         planHandler,
		subscriptionHandler: subscriptionHandler,
		entitlementHandler:  entitlementHandler,
	}
	r.setupRoutes()

	return r
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.engine.Group("/api/v1")

	tenants := v1.Group("/tenants")
	{
		tenants.POST("", r.tenantHandler.RegisterTenant)
		tenants.GET("/:sid", r.tenantHandler.GetTenant)
		tenants.GET("/:sid/subscriptions", r.subscriptionHandler.ListTenantSubscriptions)

		tenants.GET("/:sid/modules", r.entitlementHandler.GetTenantModules)
		tenants.GET("/:sid/modules/:module", r.entitlementHandler.CheckTenantModule)
		tenants.GET("/:sid/permissions", r.entitlementHandler.GetTenantPermissions)
		tenants.GET("/:sid/permissions/:permission", r.entitlementHandler.CheckTenantPermission)
	}

	plans := v1.Group("/plans")
	{
		plans.POST("", r.planHandler.CreatePlan)
		plans.GET("", r.planHandler.ListPlans)
		plans.GET("/:sid", r.planHandler.GetPlan)
		plans.PUT("/:sid/modules", r.planHandler.UpdatePlanModules)
		plans.POST("/:sid/deactivate", r.planHandler.DeactivatePlan)
	}

	subscriptions := v1.Group("/subscriptions")
	{
		subscriptions.POST("", r.subscriptionHandler.CreateSubscription)
		subscriptions.GET("/:sid", r.subscriptionHandler.GetSubscription)
		subscriptions.POST("/:sid/cancel", r.subscriptionHandler.CancelSubscription)
		subscriptions.PUT("/:sid/plan", r.subscriptionHandler.ChangePlan)
		subscriptions.POST("/:sid/modules", r.subscriptionHandler.GrantModule)
		subscriptions.DELETE("/:sid/modules/:module", r.subscriptionHandler.RevokeModule)
	}

	entitlements := v1.Group("/entitlements")
	{
		entitlements.POST("/refresh", r.entitlementHandler.RefreshProjection)
		entitlements.POST("/invalidate", r.entitlementHandler.InvalidateCache)
	}
}
