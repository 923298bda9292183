package worker

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/orris-inc/satsgate/internal/interfaces/cli/clienv"
	"github.com/orris-inc/satsgate/internal/shared/goroutine"
)

var (
	flags       clienv.Flags
	metricsAddr string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run background jobs",
		Long: `Run the scheduled jobs: payment expiry, event replay and reconciliation,
pool replenishment, outbox dispatch and the webhook retry sweep.`,
		RunE: run,
	}

	flags.Bind(cmd)
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve worker metrics on this address (e.g. :9101)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := flags.Init()
	if err != nil {
		return err
	}
	defer clienv.Close(log)

	log.Infow("starting worker", "environment", flags.Env, "network", cfg.Bitcoin.Network)

	container := clienv.NewContainer(cfg, log)
	defer container.Shutdown()

	sm, err := container.BuildScheduler()
	if err != nil {
		return err
	}
	sm.Start()

	var metricsSrv *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", container.Metrics().Handler())
		metricsSrv = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		goroutine.SafeGo(log, "metrics-server", func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("metrics server stopped", "error", err)
			}
		})
		log.Infow("worker metrics listening", "address", metricsAddr)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down worker...")
	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(ctx)
	}
	return nil
}
