package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oforidesmond/pulse-pos/internal/sync"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the background sync loop",
		Long: `Run the till's background loop: periodic catalog pulls and sales
pushes, plus a connectivity monitor that triggers a sync when the
backend comes back into reach.

The loop runs until interrupted. Sales entered while offline are
pushed on the next successful connection.

Example:
  pulse serve --config ./pulse.yaml
  pulse serve --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, cmd)
		},
	}

	return cmd
}

func runServe(opts *RootOptions, cmd *cobra.Command) error {
	log := newLogger(opts.Verbose)
	defer log.Sync()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log.Info("opening database", zap.String("path", cfg.Database))
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Error("error closing database", zap.Error(closeErr))
		}
	}()

	engine, err := newEngine(cfg, st, log)
	if err != nil {
		return err
	}
	engine.Notify(func(ev sync.CatalogReplaced) {
		log.Info("catalog replaced",
			zap.Int("products", ev.TotalFetched),
			zap.Time("synced_at", ev.LastSyncedAt))
	})

	// Use the command's context if set (tests), otherwise background.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info("received signal, shutting down", zap.Stringer("signal", sig))
			cancel()
		case <-ctx.Done():
		}
	}()

	monitor := sync.NewMonitor(engine, log, nil, 0)
	go func() {
		if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("monitor stopped", zap.Error(err))
		}
	}()

	log.Info("sync loop starting",
		zap.String("db", cfg.Database),
		zap.String("products_url", cfg.API.ProductsURL))
	fmt.Fprintln(cmd.OutOrStdout(), "Sync loop started. Press Ctrl-C to stop.")

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "sync loop error", err)
	}

	log.Info("sync loop stopped gracefully")
	return nil
}
