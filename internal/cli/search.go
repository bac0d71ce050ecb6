package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oforidesmond/pulse-pos/internal/pos"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Page     int
	PageSize int
}

// SearchListing holds the search command output.
type SearchListing struct {
	Products   []pos.Product `json:"products"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Total      int           `json:"total"`
}

func (l SearchListing) String() string {
	if l.Total == 0 {
		return "No matching products."
	}
	var b strings.Builder
	for _, p := range l.Products {
		fmt.Fprintf(&b, "%-24s  %-12s  %8.2f  stock %g\n", p.Name, p.SKU, p.SellingPrice, p.StockQuantity)
	}
	fmt.Fprintf(&b, "Page %d of %d (%d products)", l.Page, l.TotalPages, l.Total)
	return b.String()
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the product catalog",
		Long: `Search the local catalog by name or SKU, case-insensitively.
An empty query lists everything, alphabetically.

Examples:
  pulse search milk
  pulse search --page 2 --page-size 20
  pulse search "" --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runSearch(opts, query, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "result page")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 20, "products per page")

	return cmd
}

func runSearch(opts *SearchOptions, query string, cmd *cobra.Command) error {
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

	result, err := st.SearchProducts(ctx, opts.Page, opts.PageSize, query)
	if err != nil {
		return WrapExitError(ExitCommandError, "search failed", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return formatter.Success(SearchListing{
		Products:   result.Products,
		Page:       result.Page,
		TotalPages: result.TotalPages,
		Total:      result.Total,
	})
}
