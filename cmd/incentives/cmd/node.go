package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MinterTeam/incentives-engine/core/keeper"
	"github.com/MinterTeam/incentives-engine/core/statistics"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/log"
	"github.com/MinterTeam/incentives-engine/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	tmLog "github.com/tendermint/tendermint/libs/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// RunNode is the command that runs the engine with its distribution keeper.
var RunNode = &cobra.Command{
	Use:   "node",
	Short: "Run the engine process",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runNode(cmd)
	},
}

func init() {
	RunNode.Flags().Bool("once", false, "run one keeper pass and exit")
}

func runNode(cmd *cobra.Command) error {
	log.InitLog(cfg)
	logger := log.With("module", "main")

	var stats *statistics.Data
	registry := prometheus.NewRegistry()
	if cfg.Instrumentation.Prometheus {
		stats = statistics.New(registry)
	}

	a, err := openApp(log.Logger(), stats)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.engine.Audit(); err != nil {
		logger.Error("state audit failed", "err", err)
		return err
	}
	logger.Info("engine started", "version", version.Version, "state", a.engine.Version())

	k, err := newKeeper(a, log.Logger())
	if err != nil {
		return err
	}

	once, err := cmd.Flags().GetBool("once")
	if err != nil {
		return err
	}
	if once {
		logger.Info("keeper pass finished", "batches", k.Tick(cmd.Context()))
		return nil
	}

	g, ctx := errgroup.WithContext(cmd.Context())

	if cfg.Keeper.Enabled {
		g.Go(func() error {
			return k.Run(ctx)
		})
	}

	if cfg.Instrumentation.Prometheus {
		g.Go(func() error {
			return serveMetrics(ctx, registry, logger)
		})
	}

	<-ctx.Done()
	logger.Info("stopping")

	return g.Wait()
}

func newKeeper(a *app, logger tmLog.Logger) (*keeper.Keeper, error) {
	schedule := ""
	if cfg.Keeper.Enabled {
		schedule = cfg.Keeper.Schedule
	}

	return keeper.NewKeeper(a.engine, a.clock, logger, keeper.Config{
		Schedule:   schedule,
		Address:    types.HexToAddress(cfg.Keeper.Address),
		RateLimit:  rate.Limit(cfg.Keeper.RateLimit),
		MaxBatches: cfg.Keeper.MaxBatches,
	})
}

func serveMetrics(ctx context.Context, registry *prometheus.Registry, logger tmLog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(registry, promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		MaxRequestsInFlight: cfg.Instrumentation.MaxOpenConnections,
	})))

	srv := &http.Server{
		Addr:              cfg.Instrumentation.PrometheusListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
