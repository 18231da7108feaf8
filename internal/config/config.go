// Package config loads runtime settings from the environment (credentials,
// storage backend, operational knobs) and the trading profile from a YAML
// file (symbols, capital, thresholds).
package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config is the environment-driven part of the configuration. A problem
// here is a fatal startup failure: no cycle may run against a half
// configured process, unlike per-cycle collaborator hiccups which only
// degrade a single symbol.
type Config struct {
	StoreBackend string // "file" or "sqlite"
	StorePath    string // blob root dir, or sqlite database file
	DataDir      string // local OHLCV cache directory
	ProfilePath  string // trading profile YAML

	LiveOrders bool // mirror simulated trades to the Alpaca paper account

	PollIntervalMins int
	CollabTimeoutSec int
	SimSeed          int64

	LogFile       string
	MaxLogSizeMB  int64
	MaxLogBackups int
}

// Load reads the environment, first merging in a .env file when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		StoreBackend:     getEnv("TRADER_STORE_BACKEND", BackendFile),
		StorePath:        getEnv("TRADER_STORE_PATH", "trading_data"),
		DataDir:          getEnv("TRADER_DATA_DIR", "local_data_cache"),
		ProfilePath:      getEnv("TRADER_PROFILE", "profile.yaml"),
		LiveOrders:       getEnvAsBool("TRADER_LIVE_ORDERS", false),
		PollIntervalMins: getEnvAsInt("TRADER_POLL_INTERVAL_MINS", 60),
		CollabTimeoutSec: getEnvAsInt("TRADER_COLLAB_TIMEOUT_SEC", 30),
		SimSeed:          int64(getEnvAsInt("TRADER_SIM_SEED", 1)),
		LogFile:          getEnv("TRADER_LOG_FILE", "paper_trader.log"),
		MaxLogSizeMB:     int64(getEnvAsInt("TRADER_MAX_LOG_SIZE_MB", 10)),
		MaxLogBackups:    getEnvAsInt("TRADER_MAX_LOG_BACKUPS", 3),
	}

	switch cfg.StoreBackend {
	case BackendFile, BackendSQLite:
	default:
		return nil, fmt.Errorf("config: unknown TRADER_STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.StorePath == "" {
		return nil, fmt.Errorf("config: TRADER_STORE_PATH must not be empty")
	}

	// Live mirroring needs broker credentials up front; failing on the
	// first order would be far less obvious.
	if cfg.LiveOrders {
		var missing []string
		for _, key := range []string{"APCA_API_KEY_ID", "APCA_API_SECRET_KEY"} {
			if os.Getenv(key) == "" {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("config: TRADER_LIVE_ORDERS set but missing %v", missing)
		}
	}

	return cfg, nil
}
