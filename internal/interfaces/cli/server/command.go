package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/orris-inc/satsgate/internal/infrastructure/config"
	"github.com/orris-inc/satsgate/internal/infrastructure/database"
	"github.com/orris-inc/satsgate/internal/infrastructure/migration"
	httpRouter "github.com/orris-inc/satsgate/internal/interfaces/http"
	"github.com/orris-inc/satsgate/internal/interfaces/cli/clienv"
	"github.com/orris-inc/satsgate/internal/shared/goroutine"
	"github.com/orris-inc/satsgate/internal/shared/logger"
	"github.com/orris-inc/satsgate/internal/shared/version"
)

var (
	flags              clienv.Flags
	autoMigrate        bool
	skipMigrationCheck bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP API server",
		Long:  `Start the satsgate HTTP API. Background jobs run in the separate worker command.`,
		RunE:  run,
	}

	flags.Bind(cmd)
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Automatically run database migrations on startup (not recommended for production)")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip migration status check on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := flags.Init()
	if err != nil {
		return err
	}
	defer clienv.Close(log)

	log.Infow("starting server",
		"environment", flags.Env,
		"version", version.String(),
		"network", cfg.Bitcoin.Network,
		"auto_migrate", autoMigrate)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if err := handleMigrations(cfg, log); err != nil {
		return fmt.Errorf("migration handling failed: %w", err)
	}

	router := httpRouter.NewRouter(database.Get(), cfg, log)
	defer router.Shutdown()
	router.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	goroutine.SafeGo(log, "http-server", func() {
		log.Infow("server listening",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func handleMigrations(cfg *config.Config, log logger.Interface) error {
	if skipMigrationCheck {
		log.Infow("skipping migration check")
		return nil
	}

	// sqlite databases are always built from the models.
	if autoMigrate || cfg.Database.Driver == "sqlite" {
		if flags.Env == "production" {
			log.Warnw("auto-migration is enabled in production environment - this is not recommended!")
		}
		if err := migration.NewManager(cfg.Database.Driver, log).Migrate(database.Get()); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		return nil
	}

	current, err := migration.NewGooseStrategy(log).GetVersion(database.Get())
	if err != nil {
		log.Warnw("failed to check migration status", "error", err)
		return nil
	}
	log.Infow("current migration version", "version", current)
	return nil
}
