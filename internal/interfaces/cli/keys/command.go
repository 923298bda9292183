package keys

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/orris-inc/satsgate/internal/application/addresspool/usecases"
	vo "github.com/orris-inc/satsgate/internal/domain/addresspool/valueobjects"
	"github.com/orris-inc/satsgate/internal/interfaces/cli/clienv"
)

var flags clienv.Flags

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage extended public keys",
		Long:  `Register, list and toggle the extended public keys receiving addresses are derived from.`,
	}

	flags.Bind(cmd)

	cmd.AddCommand(
		newAddCommand(),
		newListCommand(),
		newActivateCommand(),
		newDeactivateCommand(),
		newDeriveCommand(),
	)

	return cmd
}

// withKeys runs fn against the key management use case.
func withKeys(fn func(ctx context.Context, uc *usecases.ManageKeysUseCase) error) error {
	cfg, log, err := flags.Init()
	if err != nil {
		return err
	}
	defer clienv.Close(log)

	container := clienv.NewContainer(cfg, log)
	defer container.Shutdown()

	return fn(context.Background(), container.ManageKeys())
}

func newAddCommand() *cobra.Command {
	var (
		network  string
		label    string
		activate bool
	)

	cmd := &cobra.Command{
		Use:   "add <xpub|zpub|vpub>",
		Short: "Register an extended public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeys(func(ctx context.Context, uc *usecases.ManageKeysUseCase) error {
				view, err := uc.Register(ctx, usecases.RegisterKeyCommand{
					KeyMaterial: args[0],
					Network:     vo.Network(network),
					Label:       label,
					Activate:    activate,
				})
				if err != nil {
					return err
				}
				printKeys([]*usecases.KeyView{view})
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&network, "network", string(vo.NetworkMainnet), "Bitcoin network (mainnet, testnet)")
	cmd.Flags().StringVar(&label, "label", "", "Human readable label")
	cmd.Flags().BoolVar(&activate, "activate", false, "Make this the active derivation key")

	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeys(func(ctx context.Context, uc *usecases.ManageKeysUseCase) error {
				views, err := uc.List(ctx)
				if err != nil {
					return err
				}
				printKeys(views)
				return nil
			})
		},
	}
}

func newActivateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <key-id>",
		Short: "Make a key the active derivation source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeys(func(ctx context.Context, uc *usecases.ManageKeysUseCase) error {
				view, err := uc.Activate(ctx, args[0])
				if err != nil {
					return err
				}
				printKeys([]*usecases.KeyView{view})
				return nil
			})
		},
	}
}

func newDeactivateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <key-id>",
		Short: "Stop deriving from a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeys(func(ctx context.Context, uc *usecases.ManageKeysUseCase) error {
				view, err := uc.Deactivate(ctx, args[0])
				if err != nil {
					return err
				}
				printKeys([]*usecases.KeyView{view})
				return nil
			})
		},
	}
}

func newDeriveCommand() *cobra.Command {
	var (
		from  uint32
		count int
	)

	cmd := &cobra.Command{
		Use:   "derive <key-id>",
		Short: "Preview derived addresses without reserving them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeys(func(ctx context.Context, uc *usecases.ManageKeysUseCase) error {
				derived, err := uc.Preview(ctx, args[0], from, count)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "INDEX\tPATH\tADDRESS")
				for _, d := range derived {
					fmt.Fprintf(w, "%d\t%s\t%s\n", d.Index, d.Path, d.Address)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().Uint32Var(&from, "from", 0, "First derivation index")
	cmd.Flags().IntVar(&count, "count", 5, "Number of addresses")

	return cmd
}

func printKeys(views []*usecases.KeyView) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNETWORK\tACTIVE\tNEXT INDEX\tLABEL\tKEY")
	for _, v := range views {
		fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%s\t%s\n", v.ID, v.Network, v.Active, v.NextIndex, v.Label, v.Key)
	}
	_ = w.Flush()
}
