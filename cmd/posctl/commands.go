package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"posjournal/internal/core"
	"posjournal/internal/report"
)

func newCatalogCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [term]",
		Short: "List catalog items, optionally filtered by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := ""
			if len(args) == 1 {
				term = args[0]
			}
			return opts.printer(cmd).catalog(opts.app.Service.SearchCatalog(term))
		},
	}
}

func newRecordCommand(opts *rootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "record <item> <quantity>",
		Short: "Record a sale at the current catalog price",
		Long: `Record a sale of a catalog item. The unit price is taken from the
catalog when the sale is recorded.

Example:
  posctl record Latte 2 --date 2024-03-05`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: %q", core.ErrInvalidQuantity, args[1])
			}
			if date == "" {
				date = time.Now().Format(core.DateLayout)
			}

			tx, err := opts.app.Service.RecordSale(cmd.Context(), args[0], qty, date)
			if err != nil {
				return err
			}
			return opts.printer(cmd).recorded(tx)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "business date as YYYY-MM-DD (default today)")

	return cmd
}

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded sales, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.printer(cmd).transactions(opts.app.Service.ListTransactions(cmd.Context()))
		},
	}
}

func newReportCommand(opts *rootOptions) *cobra.Command {
	var (
		period string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the sales dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := report.ParsePeriod(period)
			if err != nil {
				return err
			}
			return opts.printer(cmd).dashboard(opts.app.Service.Dashboard(cmd.Context(), p, limit))
		},
	}

	cmd.Flags().StringVar(&period, "period", report.DefaultPeriod.String(), "trend period (daily|weekly|monthly)")
	cmd.Flags().IntVar(&limit, "limit", report.DefaultTopLimit, "number of top sellers")

	return cmd
}

func newResetCommand(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every recorded sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errConfirmRequired
			}
			if err := opts.app.Service.ResetJournal(cmd.Context()); err != nil {
				return err
			}
			return opts.printer(cmd).cleared()
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the irreversible reset")

	return cmd
}
