package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/hhbot/dispatcher/internal/infrastructure/config"
	"github.com/hhbot/dispatcher/internal/infrastructure/database"
	"github.com/hhbot/dispatcher/internal/infrastructure/migration"
	"github.com/hhbot/dispatcher/internal/infrastructure/scheduler"
	httpRouter "github.com/hhbot/dispatcher/internal/interfaces/http"
	"github.com/hhbot/dispatcher/internal/shared/logger"
)

var (
	env                string
	autoMigrate        bool
	skipMigrationCheck bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server and background schedulers",
		Long:  `Start the dispatcher's HTTP control surface plus the campaign, dispatch, and notification schedulers.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Automatically run database migrations on startup (not recommended for production)")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip migration status check on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	ginMode := mapEnvToGinMode(env)

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Server.Mode = ginMode

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	log := logger.NewLogger()

	log.Infow("starting server",
		"environment", env,
		"auto_migrate", autoMigrate)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}
	defer database.Close()

	if err := handleMigrations(log); err != nil {
		log.Fatalw("migration handling failed", "error", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalw("failed to connect to redis", "error", err)
	}

	repos := httpRouter.BuildRepositories(database.Get())
	svcs := httpRouter.BuildServices(repos, database.Get(), redisClient, cfg, log)

	router := httpRouter.NewRouter(svcs, repos, redisClient, cfg, log)
	router.SetupRoutes()

	schedulerManager, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		log.Fatalw("failed to initialize scheduler manager", "error", err)
	}

	campaignInterval := time.Duration(cfg.Worker.AutoPollEverySec) * time.Second
	if campaignInterval <= 0 {
		campaignInterval = 5 * time.Minute
	}
	if err := schedulerManager.RegisterCampaignJob(svcs.Campaign, campaignInterval); err != nil {
		log.Fatalw("failed to register campaign job", "error", err)
	}

	dispatchInterval := time.Duration(cfg.Worker.DispatchEverySec) * time.Second
	if dispatchInterval <= 0 {
		dispatchInterval = 30 * time.Second
	}
	if err := schedulerManager.RegisterDispatchJob(svcs.Dispatch, dispatchInterval); err != nil {
		log.Fatalw("failed to register dispatch job", "error", err)
	}

	if cfg.Worker.NotifierEnabled {
		if err := schedulerManager.RegisterNotificationJobs(svcs.Notification); err != nil {
			log.Fatalw("failed to register notification jobs", "error", err)
		}
	}

	schedulerManager.Start()
	defer func() {
		if err := schedulerManager.Stop(); err != nil {
			log.Errorw("failed to stop scheduler manager", "error", err)
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "address", addr, "mode", cfg.Server.Mode)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Info("server exited gracefully")
	return nil
}

func handleMigrations(log logger.Interface) error {
	if skipMigrationCheck {
		log.Info("skipping migration check")
		return nil
	}

	scriptsPath, err := filepath.Abs("./internal/infrastructure/migration/scripts")
	if err != nil {
		log.Warnw("failed to get migration scripts path", "error", err)
		return nil
	}

	strategy := migration.NewGooseStrategy(scriptsPath, log)

	sqlDB, err := sqlDBFromGorm()
	if err != nil {
		log.Warnw("failed to get underlying sql.DB", "error", err)
		return nil
	}

	if autoMigrate {
		if env == "production" {
			log.Warn("auto-migration is enabled in production environment - this is not recommended!")
		}

		log.Info("running auto-migration")
		if err := strategy.Migrate(sqlDB); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		log.Info("auto-migration completed successfully")
		return nil
	}

	log.Info("checking migration status")
	version, err := strategy.GetVersion(sqlDB)
	if err != nil {
		log.Warnw("failed to check migration status", "error", err)
		return nil
	}
	log.Infow("current migration version", "version", version)
	return nil
}

func sqlDBFromGorm() (*sql.DB, error) {
	return database.Get().DB()
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod":
		return "release"
	case "development", "dev":
		return "debug"
	case "test", "testing":
		return "test"
	case "debug":
		return "debug"
	case "release":
		return "release"
	default:
		return "debug"
	}
}
