package pool

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/orris-inc/satsgate/internal/interfaces/cli/clienv"
	httpRouter "github.com/orris-inc/satsgate/internal/interfaces/http"
)

var flags clienv.Flags

// SeedFile is the format accepted by `pool seed --file`.
//
//	addresses:
//	  - bc1q...
//	  - bc1q...
type SeedFile struct {
	Addresses []string `yaml:"addresses"`
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Inspect and fill the address pool",
	}

	flags.Bind(cmd)

	cmd.AddCommand(
		newSeedCommand(),
		newReplenishCommand(),
		newStatsCommand(),
	)

	return cmd
}

func withContainer(fn func(ctx context.Context, c *httpRouter.Container) error) error {
	cfg, log, err := flags.Init()
	if err != nil {
		return err
	}
	defer clienv.Close(log)

	container := clienv.NewContainer(cfg, log)
	defer container.Shutdown()

	return fn(context.Background(), container)
}

// LoadSeedFile reads addresses from a YAML seed file.
func LoadSeedFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var f SeedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if len(f.Addresses) == 0 {
		return nil, fmt.Errorf("seed file %s lists no addresses", path)
	}
	return f.Addresses, nil
}

func newSeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load pre-generated addresses into the pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			addresses, err := LoadSeedFile(file)
			if err != nil {
				return err
			}
			return withContainer(func(ctx context.Context, c *httpRouter.Container) error {
				result, err := c.SeedAddresses().Execute(ctx, addresses)
				if err != nil {
					return err
				}
				fmt.Printf("inserted: %d  duplicate: %d  invalid: %d\n", result.Inserted, result.Duplicate, len(result.Invalid))
				for _, a := range result.Invalid {
					fmt.Printf("  invalid: %s\n", a)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with an addresses list (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newReplenishCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "replenish",
		Short: "Run one replenishment pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(ctx context.Context, c *httpRouter.Container) error {
				result, err := c.ReplenishPool().Execute(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("generated: %d  pool size: %d\n", result.Generated, result.PoolSize)
				if result.AlertRaised {
					fmt.Println("warning: pool is critically low and no extended key is active")
				}
				return nil
			})
		},
	}
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show pool counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(ctx context.Context, c *httpRouter.Container) error {
				stats, err := c.PoolStats().Execute(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("total: %d  free: %d  reserved: %d  expired: %d  retired: %d\n",
					stats.Total, stats.Free, stats.Reserved, stats.Expired, stats.Retired)
				if stats.ActiveKey != nil {
					fmt.Printf("active key: %s (%s) next index %d\n", stats.ActiveKey.ID, stats.ActiveKey.Network, stats.ActiveKey.NextIndex)
				} else {
					fmt.Println("active key: none")
				}
				return nil
			})
		},
	}
}
