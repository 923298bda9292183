package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/satsgate/internal/interfaces/cli/keys"
	"github.com/orris-inc/satsgate/internal/interfaces/cli/migrate"
	"github.com/orris-inc/satsgate/internal/interfaces/cli/pool"
	"github.com/orris-inc/satsgate/internal/interfaces/cli/server"
	"github.com/orris-inc/satsgate/internal/interfaces/cli/worker"
	"github.com/orris-inc/satsgate/internal/shared/version"
)

// @title satsgate API
// @version 1.0
// @description Bitcoin payment address allocation, confirmation tracking and merchant notifications.
// @BasePath /
// @securityDefinitions.apikey AdminKey
// @in header
// @name Authorization
// @description Operator key as "Bearer <key>"
func main() {
	rootCmd := &cobra.Command{
		Use:     "satsgate",
		Short:   "Satsgate - Bitcoin payment address allocation and confirmation",
		Long:    `Satsgate assigns BIP84 receiving addresses to orders, tracks on-chain confirmations and notifies merchants.`,
		Version: version.String(),
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		worker.NewCommand(),
		migrate.NewCommand(),
		keys.NewCommand(),
		pool.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
