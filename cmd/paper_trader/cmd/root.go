package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"paper_trader/internal/config"
	"paper_trader/internal/engine"
	"paper_trader/internal/logger"
	"paper_trader/internal/market"
	"paper_trader/internal/predict"
	"paper_trader/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "paper_trader",
	Short: "Model-driven paper trading engine with snapshot persistence",
	Long: `paper_trader simulates trading decisions against cached market data,
tracks a virtual portfolio, and persists a snapshot after every cycle for
the dashboard to consume.

Per symbol, each cycle pulls a model prediction, gates it behind a
confidence threshold, and executes at most one simulated trade. Trained
models and portfolio snapshots live in a blob store (directory tree or
SQLite file).`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// app bundles everything a command needs, plus a cleanup hook for stores
// that hold resources.
type app struct {
	cfg     *config.Config
	profile *config.Profile
	engine  *engine.Engine
	cleanup func()
}

// buildApp loads configuration, wires the collaborators and returns a ready
// engine. Any error here is a fatal startup failure: no cycle may run.
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.LogFile, cfg.MaxLogSizeMB, cfg.MaxLogBackups)

	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		return nil, err
	}

	cleanup := func() {}
	var blobs storage.BlobStore
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		store, err := storage.NewSQLiteStore(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		blobs = store
		cleanup = func() { store.Close() }
	default:
		store, err := storage.NewFileStore(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		blobs = store
	}

	pricing, err := market.NewCacheProvider(cfg.DataDir, cfg.SimSeed)
	if err != nil {
		cleanup()
		return nil, err
	}

	var broker market.Broker
	if cfg.LiveOrders {
		broker = market.NewAlpacaProvider()
	}

	eng := engine.New(engine.Params{
		Profile:     profile,
		Pricing:     pricing,
		Predictions: predict.NewModelService(blobs, pricing, profile.ModelHistory),
		Snapshots:   storage.NewSnapshotStore(blobs, profile.SnapshotKey),
		Broker:      broker,
		Timeout:     time.Duration(cfg.CollabTimeoutSec) * time.Second,
	})

	return &app{cfg: cfg, profile: profile, engine: eng, cleanup: cleanup}, nil
}

func printSummary(a *app) {
	pf := a.engine.Portfolio()
	fmt.Printf("Cash Available:   $%s\n", pf.Cash.StringFixed(2))
	fmt.Printf("Active Positions: %d\n", pf.Ledger().Len())
	fmt.Printf("Total Trades:     %d\n", pf.TradeCount())
}
