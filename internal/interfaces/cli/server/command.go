package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/scoutystream/scouty/internal/infrastructure/config"
	"github.com/scoutystream/scouty/internal/infrastructure/database"
	"github.com/scoutystream/scouty/internal/infrastructure/migration"
	"github.com/scoutystream/scouty/internal/infrastructure/seed"
	httpRouter "github.com/scoutystream/scouty/internal/interfaces/http"
	"github.com/scoutystream/scouty/internal/shared/logger"
	"github.com/scoutystream/scouty/internal/shared/version"
)

var (
	env            string
	skipMigrations bool
	seedFile       string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the ScoutyStream API server with the specified configuration.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not migrate the database on startup")
	cmd.Flags().StringVar(&seedFile, "seed", "", "Seed the asset catalog from this YAML file on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = mapEnvToGinMode(cfg.Server.Mode)

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode == gin.DebugMode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	log.Infow("starting server",
		"environment", env,
		"version", version.String(),
		"database", cfg.Database.Driver,
		"payment_provider", cfg.Payment.Provider,
		"ledger_provider", cfg.Ledger.Provider)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	var db *gorm.DB
	if cfg.Database.Driver != "memory" {
		if err := database.Init(&cfg.Database); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer func() {
			if err := database.Close(); err != nil {
				log.Errorw("failed to close database", "error", err)
			}
		}()
		db = database.Get()

		if !skipMigrations {
			manager, err := migration.NewManager(cfg.Server, cfg.Database.Driver, log)
			if err != nil {
				return err
			}
			if err := manager.Migrate(db); err != nil {
				return err
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := httpRouter.NewContainer(ctx, db, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	if seedFile != "" {
		catalog, err := seed.LoadCatalog(seedFile)
		if err != nil {
			_ = container.Shutdown(context.Background())
			return err
		}
		created, err := seed.NewSeeder(container.Assets(), log.Named("seed")).Seed(ctx, catalog)
		if err != nil {
			_ = container.Shutdown(context.Background())
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		log.Infow("catalog seeded", "file", seedFile, "created", created)
	}

	container.SetupRoutes()
	container.StartBackground()

	// A verify or grant request may wait on both the payment provider and
	// the ledger confirmation.
	writeTimeout := cfg.Payment.VerifyTimeout + cfg.Ledger.ConfirmTimeout + 15*time.Second

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      container.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			_ = container.Shutdown(context.Background())
			return fmt.Errorf("failed to start server: %w", err)
		}
	}

	log.Infow("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	if err := container.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Infow("server exited gracefully")
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
