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

	"github.com/girder-hq/girder/internal/infrastructure/config"
	"github.com/girder-hq/girder/internal/infrastructure/database"
	"github.com/girder-hq/girder/internal/infrastructure/migration"
	"github.com/girder-hq/girder/internal/infrastructure/scheduler"
	httpRouter "github.com/girder-hq/girder/internal/interfaces/http"
	"github.com/girder-hq/girder/internal/shared/biztime"
	"github.com/girder-hq/girder/internal/shared/logger"
)

var (
	env            string
	autoMigrate    bool
	migrationsPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the governance HTTP server with the configured environment.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run pending database migrations on startup")
	cmd.Flags().StringVar(&migrationsPath, "migrations", "./migrations", "Path to migration files")

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

	if err := logger.Init(logger.Options{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		OutputPath: cfg.Logger.OutputPath,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger := logger.NewLogger()

	appLogger.Infow("starting server", "environment", env, "auto_migrate", autoMigrate)

	if err := biztime.Init(cfg.Governance.Timezone); err != nil {
		return fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	gin.SetMode(mapEnvToGinMode(env))
	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if autoMigrate {
		runner := migration.NewRunner(database.Get(), migrationsPath, appLogger)
		if err := runner.Up(); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		appLogger.Infow("auto-migration completed")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	router := httpRouter.NewRouter(database.Get(), redisClient, cfg, appLogger)

	schedulerManager, err := scheduler.NewSchedulerManager(appLogger)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := schedulerManager.RegisterReconcileJob(
		router.Reconciler, cfg.Governance.ReconcileInterval()); err != nil {
		return fmt.Errorf("failed to register reconcile job: %w", err)
	}
	schedulerManager.Start()
	defer func() {
		if err := schedulerManager.Stop(); err != nil {
			appLogger.Errorw("failed to stop scheduler", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Infow("server starting", "address", cfg.Server.GetAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Errorw("server stopped unexpectedly", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Errorw("server forced to shutdown", "error", err)
		return err
	}

	appLogger.Infow("server exited gracefully")
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return gin.ReleaseMode
	case "test", "testing":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
