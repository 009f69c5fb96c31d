// Package report computes read-only sales analytics from a list of
// transactions.
//
// Every function here is pure: it never mutates its input, performs no I/O
// and returns identical output for identical input. Map iteration order never
// reaches the output; groupings are emitted either in first-occurrence order
// or after an explicit sort.
package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"posjournal/internal/core"
)

// Period selects the trend bucket size.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"

	// DefaultPeriod is what the dashboard shows first.
	DefaultPeriod = Monthly
	// DefaultTopLimit is the number of top sellers returned when no limit is given.
	DefaultTopLimit = 5
)

var ErrInvalidPeriod = errors.New("invalid period")

type (
	Summary struct {
		TotalSales core.Money `json:"totalSales"`
		TotalItems int        `json:"totalItems"`
		TotalCount int        `json:"totalCount"`
	}

	Bucket struct {
		Key   string     `json:"bucketKey"`
		Sales core.Money `json:"sales"`
	}

	TrendSeries struct {
		Period      Period     `json:"period"`
		Buckets     []Bucket   `json:"buckets"`
		PeriodTotal core.Money `json:"periodTotal"`
		// Skipped counts transactions left out because their date did not parse.
		Skipped int `json:"skipped"`
	}

	CategoryShare struct {
		Category string     `json:"category"`
		Label    string     `json:"label"`
		Value    core.Money `json:"value"`
		Percent  float64    `json:"percent"`
	}

	ItemQuantity struct {
		ItemName string `json:"itemName"`
		Quantity int    `json:"quantity"`
	}

	Dashboard struct {
		Summary    Summary         `json:"summary"`
		Trend      TrendSeries     `json:"trend"`
		Categories []CategoryShare `json:"categories"`
		TopSellers []ItemQuantity  `json:"topSellers"`
	}
)

// Periods lists the supported periods, shortest first.
func Periods() []Period { return []Period{Daily, Weekly, Monthly} }

func (p Period) String() string { return string(p) }

// IsValid reports whether p is one of the supported periods.
func (p Period) IsValid() bool {
	switch p {
	case Daily, Weekly, Monthly:
		return true
	default:
		return false
	}
}

// ParsePeriod converts user input such as "Weekly" into a Period.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w %q: must be one of %v", ErrInvalidPeriod, s, Periods())
	}
	return p, nil
}

// Summarize totals sales, items and transaction count.
func Summarize(txs []core.Transaction) Summary {
	var s Summary
	for _, tx := range txs {
		s.TotalSales = s.TotalSales.Add(tx.TotalPrice)
		s.TotalItems += tx.Quantity
	}
	s.TotalCount = len(txs)
	return s
}

// WeekStart returns the Sunday that opens the week containing d.
func WeekStart(d time.Time) time.Time {
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// BucketKey maps a business date onto its bucket for period p. Unknown
// periods fall back to daily buckets.
func BucketKey(p Period, d time.Time) string {
	switch p {
	case Monthly:
		return d.Format("2006-01")
	case Weekly:
		return WeekStart(d).Format(core.DateLayout)
	default:
		return d.Format(core.DateLayout)
	}
}

// Trend groups sales into time buckets sorted ascending by key.
//
// Transactions whose date does not parse are counted in Skipped and left out,
// so PeriodTotal equals Summarize(txs).TotalSales whenever Skipped is zero.
func Trend(txs []core.Transaction, p Period) TrendSeries {
	sums := map[string]core.Money{}
	keys := make([]string, 0)
	out := TrendSeries{Period: p}

	for _, tx := range txs {
		d, err := core.ParseDate(tx.Date)
		if err != nil {
			out.Skipped++
			continue
		}
		k := BucketKey(p, d)
		if _, ok := sums[k]; !ok {
			keys = append(keys, k)
		}
		sums[k] = sums[k].Add(tx.TotalPrice)
	}

	// Zero-padded keys sort chronologically as plain strings.
	sort.Strings(keys)
	out.Buckets = make([]Bucket, 0, len(keys))
	for _, k := range keys {
		out.Buckets = append(out.Buckets, Bucket{Key: k, Sales: sums[k]})
		out.PeriodTotal = out.PeriodTotal.Add(sums[k])
	}
	return out
}

// CategoryDistribution sums sales per category in first-occurrence order.
// Only categories present in txs appear.
func CategoryDistribution(txs []core.Transaction) []CategoryShare {
	index := map[string]int{}
	out := make([]CategoryShare, 0)
	total := core.Money{}

	for _, tx := range txs {
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, CategoryShare{Category: tx.Category, Label: CategoryLabel(tx.Category)})
		}
		out[i].Value = out[i].Value.Add(tx.TotalPrice)
		total = total.Add(tx.TotalPrice)
	}

	if total.IsZero() {
		return out
	}
	hundred := decimal.NewFromInt(100)
	for i := range out {
		pct := out[i].Value.Decimal().Mul(hundred).Div(total.Decimal()).Round(1)
		out[i].Percent = pct.InexactFloat64()
	}
	return out
}

// CategoryLabel turns a category key like "cold_drink" into "cold drink".
func CategoryLabel(category string) string {
	return strings.ReplaceAll(category, "_", " ")
}

// TopSellers ranks items by total quantity sold, highest first. Ties keep
// the order in which items were first seen. limit <= 0 means DefaultTopLimit.
func TopSellers(txs []core.Transaction, limit int) []ItemQuantity {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	index := map[string]int{}
	items := make([]ItemQuantity, 0)
	for _, tx := range txs {
		i, ok := index[tx.ItemName]
		if !ok {
			i = len(items)
			index[tx.ItemName] = i
			items = append(items, ItemQuantity{ItemName: tx.ItemName})
		}
		items[i].Quantity += tx.Quantity
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Quantity > items[b].Quantity
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// History returns a copy of txs ordered for display: newest business date
// first, then newest record first within a day.
func History(txs []core.Transaction) []core.Transaction {
	out := append(make([]core.Transaction, 0, len(txs)), txs...)
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Date != out[b].Date {
			return out[a].Date > out[b].Date
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out
}

// Build computes every dashboard view in one pass over the caller's data.
func Build(txs []core.Transaction, p Period, limit int) Dashboard {
	return Dashboard{
		Summary:    Summarize(txs),
		Trend:      Trend(txs, p),
		Categories: CategoryDistribution(txs),
		TopSellers: TopSellers(txs, limit),
	}
}
