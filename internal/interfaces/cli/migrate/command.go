package migrate

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/orris-inc/satsgate/internal/infrastructure/database"
	"github.com/orris-inc/satsgate/internal/infrastructure/migration"
	"github.com/orris-inc/satsgate/internal/interfaces/cli/clienv"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

const scriptsDir = "./internal/infrastructure/migration/scripts"

var (
	flags clienv.Flags
	name  string
	steps int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, checking status, and creating new migration files.`,
	}

	flags.Bind(cmd)

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply all pending migrations. sqlite databases are migrated from the models instead.`,
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		Long:  `Rollback a specified number of database migrations.`,
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the current migration version and status of the database.`,
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		Long:  `Create a new sequentially numbered SQL migration file.`,
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runUp(cmd *cobra.Command, args []string) error {
	cfg, log, err := flags.Init()
	if err != nil {
		return err
	}
	defer clienv.Close(log)

	log.Infow("running up migrations", "environment", flags.Env, "driver", cfg.Database.Driver)

	if err := migration.NewManager(cfg.Database.Driver, log).Migrate(database.Get()); err != nil {
		log.Errorw("migration failed", "error", err)
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	cfg, log, err := flags.Init()
	if err != nil {
		return err
	}
	defer clienv.Close(log)

	if cfg.Database.Driver == "sqlite" {
		return fmt.Errorf("down migration is only supported for mysql")
	}

	log.Infow("running down migrations", "environment", flags.Env, "steps", steps)

	if err := migration.NewGooseStrategy(log).MigrateDown(database.Get(), steps); err != nil {
		log.Errorw("down migration failed", "error", err)
		return fmt.Errorf("down migration failed: %w", err)
	}

	log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, log, err := flags.Init()
	if err != nil {
		return err
	}
	defer clienv.Close(log)

	if cfg.Database.Driver == "sqlite" {
		return fmt.Errorf("status check is only supported for mysql")
	}

	strategy := migration.NewGooseStrategy(log)
	version, err := strategy.GetVersion(database.Get())
	if err != nil {
		log.Errorw("failed to get migration version", "error", err)
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Printf("\nMigration Status:\n")
	fmt.Printf("  Environment:     %s\n", flags.Env)
	fmt.Printf("  Current Version: %d\n", version)

	if err := strategy.Status(database.Get()); err != nil {
		log.Errorw("failed to get detailed status", "error", err)
		return fmt.Errorf("failed to get detailed status: %w", err)
	}
	return nil
}

// runCreate only writes a file, so it skips the database.
func runCreate(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(scriptsDir)
	if err != nil {
		return fmt.Errorf("failed to get scripts path: %w", err)
	}

	if err := migration.NewGooseStrategy(logger.NewLogger()).Create(dir, name); err != nil {
		return err
	}

	fmt.Printf("Migration '%s' created in %s\n", name, dir)
	return nil
}
