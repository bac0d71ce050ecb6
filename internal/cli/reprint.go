package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oforidesmond/pulse-pos/internal/app"
	"github.com/oforidesmond/pulse-pos/internal/config"
	"github.com/oforidesmond/pulse-pos/internal/escpos"
	"github.com/oforidesmond/pulse-pos/internal/printer"
	"github.com/oforidesmond/pulse-pos/internal/store"
	"go.uber.org/zap"
)

// ReprintResult holds the reprint command output.
type ReprintResult struct {
	SaleID        string `json:"sale_id"`
	ReceiptNumber string `json:"receipt_number"`
	Printed       bool   `json:"printed"`
	PrintError    string `json:"print_error,omitempty"`
}

func (r ReprintResult) String() string {
	if r.Printed {
		return fmt.Sprintf("Reprinted receipt %s", r.ReceiptNumber)
	}
	return fmt.Sprintf("Receipt %s could not be printed: %s", r.ReceiptNumber, r.PrintError)
}

// NewReprintCommand creates the reprint command.
func NewReprintCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reprint <sale-id>",
		Short: "Reprint the receipt for a sale",
		Long: `Re-encode and print the receipt for a stored sale.

Example:
  pulse reprint 7f3c2a4e-...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReprint(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runReprint(opts *RootOptions, saleID string, cmd *cobra.Command) error {
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

	ctrl := newController(cfg, st, log)

	result, err := ctrl.Reprint(ctx, saleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("no sale with id %q", saleID))
		}
		return WrapExitError(ExitCommandError, "reprint failed", err)
	}

	out := ReprintResult{
		SaleID:        result.Sale.ID,
		ReceiptNumber: result.Sale.ReceiptNumber,
		Printed:       result.Printed,
	}
	if result.PrintErr != nil {
		out.PrintError = result.PrintErr.Error()
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if err := formatter.Success(out); err != nil {
		return err
	}
	if !result.Printed {
		return NewExitError(ExitFailure, "print failed")
	}
	return nil
}

// newController wires a controller for one-shot print commands. No
// sync engine: these commands do not touch the backend.
func newController(cfg *config.Config, st *store.Store, log *zap.Logger) *app.Controller {
	return app.NewController(st, nil, printer.Resolve(cfg.Printer.Target), log, app.Options{
		Shop: escpos.ShopInfo{
			Name:     cfg.Shop.Name,
			Address:  cfg.Shop.Address,
			Phone:    cfg.Shop.Phone,
			Currency: cfg.Shop.Currency,
		},
		UserID: cfg.UserID,
	})
}
