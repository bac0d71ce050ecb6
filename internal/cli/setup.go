package cli

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oforidesmond/pulse-pos/internal/config"
	"github.com/oforidesmond/pulse-pos/internal/store"
	"github.com/oforidesmond/pulse-pos/internal/sync"
)

// newLogger builds the process logger. Verbose drops the level to
// debug; output goes to stderr so JSON command output stays clean.
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// loadConfig loads configuration honoring the --config flag.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// openStore opens the till database from config.
func openStore(cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// newEngine wires a sync engine from config. Requires at least the
// products URL to be configured.
func newEngine(cfg *config.Config, st *store.Store, log *zap.Logger) (*sync.Engine, error) {
	if cfg.API.ProductsURL == "" {
		return nil, NewExitError(ExitCommandError, "no products URL configured (set POS_PRODUCTS_URL or api.products_url)")
	}
	client := sync.NewClient(cfg.API.ProductsURL, cfg.API.SalesURL, cfg.API.Timeout)
	engine := sync.NewEngine(st, client, log, sync.Options{
		PageSize:     cfg.API.PageSize,
		PullDebounce: cfg.Sync.Debounce,
		SyncInterval: cfg.Sync.Interval,
	})
	return engine, nil
}
