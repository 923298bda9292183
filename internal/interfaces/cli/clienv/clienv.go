// Package clienv loads configuration and opens shared resources for the
// satsgate subcommands.
package clienv

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/orris-inc/satsgate/internal/infrastructure/config"
	"github.com/orris-inc/satsgate/internal/infrastructure/database"
	httpRouter "github.com/orris-inc/satsgate/internal/interfaces/http"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

// Flags are the persistent flags every subcommand accepts.
type Flags struct {
	Env        string
	ConfigPath string
}

// Bind registers --env and --config on cmd.
func (f *Flags) Bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&f.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&f.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
}

// Init loads config, then sets up logging, the business timezone and the
// database. ENV overrides --env.
func (f *Flags) Init() (*config.Config, logger.Interface, error) {
	if envVar := os.Getenv("ENV"); envVar != "" {
		f.Env = envVar
	}

	cfg, err := config.Load(f.Env, f.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	if err := database.Init(&cfg.Database, log); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return cfg, log, nil
}

// Close releases what Init opened.
func Close(log logger.Interface) {
	if err := database.Close(); err != nil && log != nil {
		log.Warnw("failed to close database", "error", err)
	}
	_ = logger.Sync()
}

// NewContainer builds the application container without serving HTTP.
func NewContainer(cfg *config.Config, log logger.Interface) *httpRouter.Container {
	gin.SetMode(gin.ReleaseMode)
	return httpRouter.NewContainer(database.Get(), nil, cfg, log)
}
