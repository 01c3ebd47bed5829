package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fleshka4/cpamm/internal/config"
	"github.com/fleshka4/cpamm/internal/metrics"
	"github.com/fleshka4/cpamm/internal/service"
	"github.com/fleshka4/cpamm/internal/simulate"
	"github.com/fleshka4/cpamm/internal/store"
	transport "github.com/fleshka4/cpamm/internal/transport/http"
)

const defaultConfigPath = "cfg/config.yaml"

func main() {
	root := &cobra.Command{
		Use:          "ammd",
		Short:        "Constant-product AMM simulator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path (defaults to $CONFIG_PATH or "+defaultConfigPath+")")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pool API over HTTP",
		RunE:  runServe,
	}

	serveCmd.Flags().String("listen", "", "listen address, overrides listen_addr")

	root.AddCommand(serveCmd)

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a YAML scenario and print its receipts",
		RunE:  runSimulate,
	}

	simulateCmd.Flags().String("script", "", "scenario file path")
	simulateCmd.Flags().String("log-level", "warn", "log level (debug, info, warn, error)")
	_ = simulateCmd.MarkFlagRequired("script")

	root.AddCommand(simulateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.ListenAddr = listen
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcOpts := []service.Option{service.WithLogger(logger.Named("service"))}
	srvOpts := []transport.Option{transport.WithLogger(logger.Named("http"))}
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m, err := metrics.New(reg)
		if err != nil {
			return errors.Wrap(err, "metrics.New")
		}
		svcOpts = append(svcOpts, service.WithMetrics(m))
		srvOpts = append(srvOpts, transport.WithMetricsHandler(m.Handler()))
	}

	svc := service.NewPoolService(store.NewMemStore(), svcOpts...)
	if err := createGenesisPools(ctx, svc, cfg.Pools, logger); err != nil {
		return err
	}

	srv := transport.NewServer(svc, cfg, srvOpts...)

	logger.Info("ammd start",
		zap.String("listen_addr", cfg.ListenAddr),
		zap.Int("genesis_pools", len(cfg.Pools)),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
	)

	return srv.Run(ctx, cfg.ListenAddr)
}

func createGenesisPools(ctx context.Context, svc service.Service, pools []config.Pool, logger *zap.Logger) error {
	for i, p := range pools {
		req, err := p.CreatePoolRequest()
		if err != nil {
			return errors.Wrapf(err, "pools[%d]", i)
		}
		rc, err := svc.CreatePool(ctx, req)
		if err != nil {
			return errors.Wrapf(err, "pools[%d]", i)
		}
		logger.Info("genesis pool created",
			zap.String("pool", rc.PoolID.Hex()),
			zap.String("lp_supply", rc.LPAmount.Dec()),
		)
	}
	return nil
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("script")
	level, _ := cmd.Flags().GetString("log-level")

	logger, err := newLogger(level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sc, err := simulate.LoadScenario(path)
	if err != nil {
		return errors.Wrap(err, "simulate.LoadScenario")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := simulate.NewRunner(cmd.OutOrStdout(), simulate.WithLogger(logger)).Run(ctx, sc)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d steps, %d failed\n", sum.Steps, sum.Failed)
	return err
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, errors.Wrap(err, "config.Load")
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrap(err, "level.UnmarshalText")
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
