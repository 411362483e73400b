package main

import (
	"context"
	"fmt"
	"os"
	osignal "os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/config"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/engine"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/indicator"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/logger"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/metrics"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/optimizer"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/portfolio"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/provider"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/provider/binance"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/provider/coingecko"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/provider/yahoo"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/scoring"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/signal"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/storage/blob"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/storage/snapshot"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one analysis cycle",
	Long:  "Fetch prices, search optimal windows, compose strategies and persist a snapshot",
	RunE:  runAnalysis,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()

	chain, err := buildChain(cfg, log, reg)
	if err != nil {
		return err
	}

	ctx, stop := osignal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating snapshot store: %w", err)
	}
	defer closeStore()

	eng := engine.New(engine.Config{
		BTCSymbol:  cfg.Analysis.BTCSymbol,
		ETHSymbol:  cfg.Analysis.ETHSymbol,
		Start:      cfg.StartTime(),
		Version:    Version,
		ConfigHash: cfg.Hash(),
		Portfolio: portfolio.Config{
			Search: optimizer.Config{
				MinWindow: cfg.Search.MinWindow,
				MaxWindow: cfg.Search.MaxWindow,
				Step:      cfg.Search.Step,
				Workers:   cfg.Analysis.Workers,
				MAType:    indicator.Type(cfg.Search.MAType),
				Scoring: scoring.Config{
					Subperiods:       cfg.Scoring.Subperiods,
					DecayRate:        cfg.Scoring.DecayRate,
					VolReference:     cfg.Scoring.VolReference,
					BaseReturnWeight: cfg.Scoring.BaseReturnWeight,
					RankWeightSpan:   cfg.Scoring.RankWeightSpan,
				},
			},
			Signal: signal.Config{
				Buffer:       cfg.Signal.Buffer,
				StrengthSpan: cfg.Signal.StrengthSpan,
			},
			Cadence:  portfolio.Cadence(cfg.Rebalance.Cadence),
			Observer: reg,
		},
	}, chain, store, log, reg)

	snap, err := eng.RunOnce(ctx)

	if cfg.Metrics.Enabled && cfg.Metrics.Pushgateway != "" {
		if pushErr := reg.Push(cfg.Metrics.Pushgateway, cfg.Metrics.Job); pushErr != nil {
			log.Warn("metrics push failed", zap.Error(pushErr))
		}
	}
	if err != nil {
		return fmt.Errorf("analysis run failed: %w", err)
	}

	printSnapshot(snap)
	return nil
}

func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func buildChain(cfg *config.Config, log *zap.Logger, rec provider.Recorder) (*provider.Chain, error) {
	var providers []provider.Provider
	for _, name := range cfg.Provider.Order {
		switch name {
		case "yahoo":
			providers = append(providers, yahoo.New())
		case "binance":
			providers = append(providers, binance.New())
		case "coingecko":
			providers = append(providers, coingecko.New(cfg.Provider.CoinGeckoAPIKey))
		default:
			return nil, fmt.Errorf("unknown provider %q", name)
		}
	}
	return provider.NewChain(providers, provider.ChainConfig{
		Timeout: cfg.Provider.Timeout,
		Retries: cfg.Provider.Retries,
		Backoff: cfg.Provider.Backoff,
	}, log, rec), nil
}

func buildStore(ctx context.Context, cfg *config.Config) (snapshot.Store, func(), error) {
	noop := func() {}
	switch cfg.Storage.Type {
	case "localfs":
		fs, err := blob.NewLocalFS(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return snapshot.NewArchiveStore(fs), noop, nil
	case "s3":
		s3, err := blob.NewS3(blob.S3Config{
			Bucket:    cfg.Storage.S3.Bucket,
			Endpoint:  cfg.Storage.S3.Endpoint,
			Region:    cfg.Storage.S3.Region,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
			Prefix:    cfg.Storage.S3.Prefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return snapshot.NewArchiveStore(s3), noop, nil
	case "postgres":
		pg, err := snapshot.NewPostgresStore(ctx, snapshot.PostgresConfig{
			DSN:      cfg.Storage.Postgres.DSN,
			MaxConns: cfg.Storage.Postgres.MaxConns,
		})
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case "memory":
		return snapshot.NewMemoryStore(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

func printSnapshot(snap *core.Snapshot) {
	fmt.Printf("Run %s  (%s .. %s)\n\n",
		snap.RunID,
		snap.StartDate.Format("2006-01-02"),
		snap.EndDate.Format("2006-01-02"))
	printStrategyTable(os.Stdout, snap)
}
