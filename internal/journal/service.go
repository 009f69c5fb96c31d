package journal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"posjournal/internal/catalog"
	"posjournal/internal/core"
	"posjournal/internal/report"
)

// Publisher announces journal changes to downstream consumers.
type Publisher interface {
	PublishSaleRecorded(ctx context.Context, tx core.Transaction) error
	PublishJournalCleared(ctx context.Context) error
}

// Service is the API the presentation layer uses: catalog access, sale
// recording, journal reset and reports. The catalog and store are injected.
type Service struct {
	catalog   *catalog.Provider
	store     Store
	publisher Publisher
}

// NewService wires a service. publisher may be nil.
func NewService(cat *catalog.Provider, store Store, publisher Publisher) *Service {
	return &Service{
		catalog:   cat,
		store:     store,
		publisher: publisher,
	}
}

// Catalog returns every sellable item.
func (s *Service) Catalog() []core.CatalogItem {
	return s.catalog.Items()
}

// SearchCatalog filters the catalog by a case-insensitive name fragment.
func (s *Service) SearchCatalog(term string) []core.CatalogItem {
	return s.catalog.Search(term)
}

// ListTransactions returns the journal newest business date first.
func (s *Service) ListTransactions(ctx context.Context) []core.Transaction {
	return report.History(s.store.ReadAll(ctx))
}

// RecordSale validates the submission, snapshots the catalog price and
// persists the sale. Validation failures never reach the store.
func (s *Service) RecordSale(ctx context.Context, itemName string, quantity int, date string) (core.Transaction, error) {
	item, ok := s.catalog.Lookup(itemName)
	if !ok {
		return core.Transaction{}, fmt.Errorf("%w: %q", core.ErrItemNotFound, itemName)
	}
	if err := core.ValidateQuantity(quantity); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %d", err, quantity)
	}
	date = strings.TrimSpace(date)
	if _, err := core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %q", err, date)
	}

	tx, err := s.store.Append(ctx, core.NewDraft(item, quantity, date))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("record sale: %w", err)
	}

	slog.InfoContext(ctx, "Sale recorded",
		"id", tx.ID,
		"item", tx.ItemName,
		"quantity", tx.Quantity,
		"total", tx.TotalPrice.String(),
		"date", tx.Date)

	if s.publisher != nil {
		if err := s.publisher.PublishSaleRecorded(ctx, tx); err != nil {
			// The sale is already persisted locally.
			slog.ErrorContext(ctx, "Failed to publish sale recorded event", "id", tx.ID, "error", err)
		}
	}

	return tx, nil
}

// ResetJournal removes every recorded sale. Irreversible.
func (s *Service) ResetJournal(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("reset journal: %w", err)
	}

	slog.WarnContext(ctx, "Journal cleared")

	if s.publisher != nil {
		if err := s.publisher.PublishJournalCleared(ctx); err != nil {
			slog.ErrorContext(ctx, "Failed to publish journal cleared event", "error", err)
		}
	}
	return nil
}

func (s *Service) Summary(ctx context.Context) report.Summary {
	return report.Summarize(s.store.ReadAll(ctx))
}

func (s *Service) Trend(ctx context.Context, p report.Period) report.TrendSeries {
	return report.Trend(s.store.ReadAll(ctx), p)
}

func (s *Service) Categories(ctx context.Context) []report.CategoryShare {
	return report.CategoryDistribution(s.store.ReadAll(ctx))
}

func (s *Service) TopSellers(ctx context.Context, limit int) []report.ItemQuantity {
	return report.TopSellers(s.store.ReadAll(ctx), limit)
}

// Dashboard computes every report from a single read of the journal.
func (s *Service) Dashboard(ctx context.Context, p report.Period, limit int) report.Dashboard {
	return report.Build(s.store.ReadAll(ctx), p, limit)
}
