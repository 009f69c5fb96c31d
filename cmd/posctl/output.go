package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"posjournal/internal/core"
	"posjournal/internal/report"
)

// Exit codes for posctl.
const (
	exitFailure = 1 // storage or configuration failure
	exitInvalid = 2 // rejected input: unknown item, bad quantity or date, missing confirmation
)

var errConfirmRequired = errors.New("refusing to clear the journal without --yes")

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, core.ErrItemNotFound),
		errors.Is(err, core.ErrInvalidQuantity),
		errors.Is(err, core.ErrUnparseableDate),
		errors.Is(err, report.ErrInvalidPeriod),
		errors.Is(err, errConfirmRequired):
		return exitInvalid
	default:
		return exitFailure
	}
}

// printer writes command results as JSON or as aligned text tables.
type printer struct {
	format   string
	w        io.Writer
	currency string
}

func (p *printer) json() bool { return p.format == "json" }

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) table(write func(tw *tabwriter.Writer)) error {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	write(tw)
	return tw.Flush()
}

func (p *printer) money(m core.Money) string { return m.Format(p.currency) }

func (p *printer) catalog(items []core.CatalogItem) error {
	if p.json() {
		return p.encode(map[string]any{"items": items, "count": len(items)})
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(p.w, "No matching items")
		return err
	}
	return p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ITEM\tCATEGORY\tPRICE")
		for _, it := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ItemName, report.CategoryLabel(it.Category), p.money(it.UnitPrice))
		}
	})
}

func (p *printer) recorded(tx core.Transaction) error {
	if p.json() {
		return p.encode(tx)
	}
	_, err := fmt.Fprintf(p.w, "Recorded %d x %s on %s for %s (%s)\n",
		tx.Quantity, tx.ItemName, tx.Date, p.money(tx.TotalPrice), tx.ID)
	return err
}

func (p *printer) transactions(txs []core.Transaction) error {
	if p.json() {
		return p.encode(map[string]any{"transactions": txs, "count": len(txs)})
	}
	if len(txs) == 0 {
		_, err := fmt.Fprintln(p.w, "No sales recorded")
		return err
	}
	return p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "DATE\tITEM\tQTY\tUNIT\tTOTAL\tID")
		for _, tx := range txs {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
				tx.Date, tx.ItemName, tx.Quantity, p.money(tx.UnitPrice), p.money(tx.TotalPrice), tx.ID)
		}
	})
}

func (p *printer) dashboard(d report.Dashboard) error {
	if p.json() {
		return p.encode(d)
	}
	return p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Total sales\t%s\n", p.money(d.Summary.TotalSales))
		fmt.Fprintf(tw, "Items sold\t%d\n", d.Summary.TotalItems)
		fmt.Fprintf(tw, "Transactions\t%d\n", d.Summary.TotalCount)

		fmt.Fprintf(tw, "\nTrend (%s)\n", d.Trend.Period)
		for _, b := range d.Trend.Buckets {
			fmt.Fprintf(tw, "  %s\t%s\n", b.Key, p.money(b.Sales))
		}
		fmt.Fprintf(tw, "  total\t%s\n", p.money(d.Trend.PeriodTotal))
		if d.Trend.Skipped > 0 {
			fmt.Fprintf(tw, "  skipped\t%d\n", d.Trend.Skipped)
		}

		fmt.Fprintln(tw, "\nCategories")
		for _, c := range d.Categories {
			fmt.Fprintf(tw, "  %s\t%s\t%.1f%%\n", c.Label, p.money(c.Value), c.Percent)
		}

		fmt.Fprintln(tw, "\nTop sellers")
		for i, it := range d.TopSellers {
			fmt.Fprintf(tw, "  %d. %s\t%d\n", i+1, it.ItemName, it.Quantity)
		}
	})
}

func (p *printer) cleared() error {
	if p.json() {
		return p.encode(map[string]any{"cleared": true})
	}
	_, err := fmt.Fprintln(p.w, "Journal cleared")
	return err
}
