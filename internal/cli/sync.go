package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SyncSummary is the output of a manual sync.
type SyncSummary struct {
	Fetched   int    `json:"fetched"`
	Discarded int    `json:"discarded"`
	Synced    int    `json:"synced"`
	Failed    int    `json:"failed"`
	PullError string `json:"pull_error,omitempty"`
	PushError string `json:"push_error,omitempty"`
}

func (s SyncSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pulled %d products (%d discarded)\n", s.Fetched, s.Discarded)
	fmt.Fprintf(&b, "Pushed %d sales (%d failed)", s.Synced, s.Failed)
	if s.PullError != "" {
		fmt.Fprintf(&b, "\nPull error: %s", s.PullError)
	}
	if s.PushError != "" {
		fmt.Fprintf(&b, "\nPush error: %s", s.PushError)
	}
	return b.String()
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a full sync now",
		Long: `Pull the product catalog and push pending sales immediately,
bypassing the debounce window. Both directions run even if one fails.

Examples:
  pulse sync
  pulse sync --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, cmd)
		},
	}

	return cmd
}

func runSync(opts *RootOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	log := newLogger(opts.Verbose)
	defer log.Sync()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	engine, err := newEngine(cfg, st, log)
	if err != nil {
		return err
	}

	result := engine.SyncAll(ctx, true)
	summary := SyncSummary{
		Fetched:   result.Pull.Fetched,
		Discarded: result.Pull.Discarded,
		Synced:    result.Push.Synced,
		Failed:    result.Push.Failed,
	}
	if result.PullErr != nil {
		summary.PullError = result.PullErr.Error()
	}
	if result.PushErr != nil {
		summary.PushError = result.PushErr.Error()
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if err := formatter.Success(summary); err != nil {
		return err
	}

	if result.PullErr != nil || result.PushErr != nil || result.Push.Failed > 0 {
		return NewExitError(ExitFailure, "sync incomplete")
	}
	return nil
}
