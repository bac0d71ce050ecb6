package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oforidesmond/pulse-pos/internal/escpos"
)

// LabelsOptions holds flags for the labels command.
type LabelsOptions struct {
	*RootOptions
	Text    string
	Count   int
	Barcode string
	Paper   int
}

// NewLabelsCommand creates the labels command.
func NewLabelsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LabelsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Print barcode labels",
		Long: `Print a batch of CODE128 barcode labels, three per row.

With --value, every label carries the given barcode. Without it, each
label gets independent random 12-digit numerics.

Examples:
  pulse labels --count 12
  pulse labels --name "Milk 1L" --count 6 --value 400112345678
  pulse labels --count 9 --paper 58`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabels(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Text, "name", "", "product name carried on the label job")
	cmd.Flags().IntVar(&opts.Count, "count", 0, "number of labels (required)")
	_ = cmd.MarkFlagRequired("count")
	cmd.Flags().StringVar(&opts.Barcode, "value", "", "fixed barcode value (random per label when empty)")
	cmd.Flags().IntVar(&opts.Paper, "paper", escpos.Paper80mm, "paper width in mm (58 or 80)")

	return cmd
}

func runLabels(opts *LabelsOptions, cmd *cobra.Command) error {
	if opts.Paper != escpos.Paper58mm && opts.Paper != escpos.Paper80mm {
		return NewExitError(ExitCommandError, fmt.Sprintf("unsupported paper width %d: must be 58 or 80", opts.Paper))
	}

	ctx := context.Background()
	log := newLogger(opts.Verbose)
	defer log.Sync()

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctrl := newController(cfg, st, log)

	req := escpos.LabelRequest{
		Text:       opts.Text,
		Count:      opts.Count,
		Barcode:    opts.Barcode,
		PaperWidth: opts.Paper,
	}
	if err := ctrl.PrintLabels(ctx, req); err != nil {
		return WrapExitError(ExitFailure, "label print failed", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return formatter.Success(fmt.Sprintf("Printed %d labels", opts.Count))
}
