package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	appent "scholara/internal/application/entitlement"
	subusecases "scholara/internal/application/subscription/usecases"
	tenantusecases "scholara/internal/application/tenant/usecases"
	domainent "scholara/internal/domain/entitlement"
	"scholara/internal/infrastructure/cache"
	"scholara/internal/infrastructure/config"
	"scholara/internal/infrastructure/database"
	"scholara/internal/infrastructure/migration"
	"scholara/internal/infrastructure/repository"
	httpRouter "scholara/internal/interfaces/http"
	"scholara/internal/interfaces/http/handlers"
	"scholara/internal/shared/biztime"
	"scholara/internal/shared/db"
	"scholara/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the Scholara entitlement server with the specified configuration.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Automatically run database migrations on startup (not recommended for production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Server.Mode = mapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("starting server",
		"environment", env,
		"auto_migrate", autoMigrate,
	)

	biztime.MustInit(cfg.Business.Timezone)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer database.Close()

	if autoMigrate {
		if env == "production" {
			logger.Warn("auto-migration is enabled in production environment - this is not recommended!")
		}
		manager := migration.NewManager(env)
		if err := manager.Migrate(database.Get(), migration.AllModels()...); err != nil {
			logger.Fatal("auto-migration failed", "error", err)
		}
		logger.Info("auto-migration completed")
	}

	gormDB := database.Get()
	log := logger.NewLogger()

	tenantRepo := repository.NewTenantRepository(gormDB, log)
	planRepo := repository.NewPlanRepository(gormDB, log)
	subscriptionRepo := repository.NewSubscriptionRepository(gormDB, log)
	grantRepo := repository.NewModuleGrantRepository(gormDB, log)
	tenantModuleRepo := repository.NewTenantModuleRepository(gormDB, log)

	txManager := db.NewTransactionManager(gormDB)
	entCache := cache.NewEntitlementCache()

	var publisher appent.InvalidationPublisher
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		bus := cache.NewInvalidationBus(redisClient, entCache, log)
		bus.Start()
		defer bus.Stop()
		publisher = bus
		logger.Info("cache invalidation bus started", "addr", cfg.Redis.GetAddr())
	}

	resolver := domainent.NewResolver(subscriptionRepo, planRepo, grantRepo, log)
	refresher := appent.NewRefresher(
		subscriptionRepo, planRepo, grantRepo, tenantModuleRepo,
		txManager, entCache, publisher, log,
	)

	entitlements := appent.NewService(
		entCache, tenantModuleRepo, tenantRepo,
		resolver, refresher, cfg.Entitlement, log,
	)
	defer entitlements.Close()

	if cfg.Entitlement.RefreshOnBoot {
		logger.Info("rebuilding entitlement projection on boot")
		if err := refresher.Refresh(context.Background(), nil); err != nil {
			logger.Fatal("projection rebuild on boot failed", "error", err)
		}
	}

	registerTenantUC := tenantusecases.NewRegisterTenantUseCase(tenantRepo, log)
	getTenantUC := tenantusecases.NewGetTenantUseCase(tenantRepo, log)

	createPlanUC := subusecases.NewCreatePlanUseCase(planRepo, log)
	updatePlanModulesUC := subusecases.NewUpdatePlanModulesUseCase(planRepo, refresher, txManager, log)
	deactivatePlanUC := subusecases.NewDeactivatePlanUseCase(planRepo, log)
	getPlanUC := subusecases.NewGetPlanUseCase(planRepo, log)
	listPlansUC := subusecases.NewListPlansUseCase(planRepo, log)

	createSubscriptionUC := subusecases.NewCreateSubscriptionUseCase(
		subscriptionRepo, planRepo, grantRepo, tenantRepo, refresher, txManager, log,
	)
	cancelSubscriptionUC := subusecases.NewCancelSubscriptionUseCase(subscriptionRepo, refresher, txManager, log)
	changePlanUC := subusecases.NewChangePlanUseCase(subscriptionRepo, planRepo, refresher, txManager, log)
	grantModuleUC := subusecases.NewGrantModuleUseCase(subscriptionRepo, grantRepo, refresher, txManager, log)
	revokeModuleUC := subusecases.NewRevokeModuleUseCase(subscriptionRepo, grantRepo, refresher, txManager, log)
	getSubscriptionUC := subusecases.NewGetSubscriptionUseCase(subscriptionRepo, planRepo, grantRepo, log)
	listTenantSubscriptionsUC := subusecases.NewListTenantSubscriptionsUseCase(subscriptionRepo, tenantRepo, log)

	router := httpRouter.NewRouter(
		&cfg.Server,
		handlers.NewTenantHandler(registerTenantUC, getTenantUC),
		handlers.NewPlanHandler(createPlanUC, updatePlanModulesUC, deactivatePlanUC, getPlanUC, listPlansUC),
		handlers.NewSubscriptionHandler(
			createSubscriptionUC, cancelSubscriptionUC, changePlanUC,
			grantModuleUC, revokeModuleUC, getSubscriptionUC, listTenantSubscriptionsUC,
		),
		handlers.NewEntitlementHandler(entitlements, refresher, getTenantUC),
	)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode,
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server exited gracefully")
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
