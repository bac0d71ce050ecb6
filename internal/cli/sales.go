package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oforidesmond/pulse-pos/internal/pos"
	"github.com/oforidesmond/pulse-pos/internal/store"
)

// SalesOptions holds flags for the sales command.
type SalesOptions struct {
	*RootOptions
	Pending bool
}

// SaleRow is one sale in the listing.
type SaleRow struct {
	ID            string  `json:"id"`
	ReceiptNumber string  `json:"receipt_number"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	Total         float64 `json:"total"`
	PaymentMethod string  `json:"payment_method"`
	Items         int     `json:"items"`
	Synced        bool    `json:"synced"`
}

// SalesListing holds the sales command output.
type SalesListing struct {
	Sales   []SaleRow `json:"sales"`
	Pending int       `json:"pending"`
}

func (l SalesListing) String() string {
	if len(l.Sales) == 0 {
		return "No sales recorded."
	}
	var b strings.Builder
	for _, s := range l.Sales {
		status := "synced"
		if !s.Synced {
			status = "pending"
		}
		fmt.Fprintf(&b, "%-14s  %s %s  %8.2f  %-12s  %2d items  %s\n",
			s.ReceiptNumber, s.Date, s.Time, s.Total, s.PaymentMethod, s.Items, status)
	}
	fmt.Fprintf(&b, "%d sales, %d pending", len(l.Sales), l.Pending)
	return b.String()
}

// NewSalesCommand creates the sales command.
func NewSalesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SalesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sales",
		Short: "List recorded sales",
		Long: `List sales stored on this till, newest first.

With --pending, only sales not yet pushed to the backend are shown,
oldest first - the order they will be submitted in.

Examples:
  pulse sales
  pulse sales --pending --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSales(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Pending, "pending", false, "only sales awaiting sync")

	return cmd
}

func runSales(opts *SalesOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	filter := store.AllSales
	if opts.Pending {
		filter = store.PendingSales
	}
	sales, err := st.ListSales(ctx, filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sales", err)
	}
	pending, err := st.CountPending(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count pending sales", err)
	}

	listing := SalesListing{Sales: make([]SaleRow, 0, len(sales)), Pending: pending}
	for _, s := range sales {
		listing.Sales = append(listing.Sales, saleRow(s))
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return formatter.Success(listing)
}

func saleRow(s pos.Sale) SaleRow {
	return SaleRow{
		ID:            s.ID,
		ReceiptNumber: s.ReceiptNumber,
		Date:          s.Date,
		Time:          s.Time,
		Total:         s.TotalAmount,
		PaymentMethod: pos.PaymentDisplay(s.PaymentMethod),
		Items:         len(s.Items),
		Synced:        s.Synced,
	}
}
