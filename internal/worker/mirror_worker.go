package worker

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"posjournal/internal/amqp"
	"posjournal/internal/core"
	"posjournal/internal/journal"
	"posjournal/internal/sheets"
)

// MirrorWorker applies journal events to the spreadsheet mirror.
// HandleEvent and Reconcile may run concurrently; mu makes each one's
// read-then-append on the sheet atomic with respect to the other.
type MirrorWorker struct {
	mu      sync.Mutex
	mirror  sheets.Mirror
	journal journal.Store
}

// NewMirrorWorker builds a worker. store may be nil, in which case
// Reconcile is a no-op.
func NewMirrorWorker(mirror sheets.Mirror, store journal.Store) *MirrorWorker {
	return &MirrorWorker{
		mirror:  mirror,
		journal: store,
	}
}

// Prepare writes the sheet header when the mirror supports it.
func (w *MirrorWorker) Prepare(ctx context.Context) error {
	if h, ok := w.mirror.(interface {
		EnsureHeader(ctx context.Context) error
	}); ok {
		if err := h.EnsureHeader(ctx); err != nil {
			return fmt.Errorf("ensure header: %w", err)
		}
	}
	return nil
}

// HandleEvent processes a single journal event from AMQP. Sales already
// present in the sheet are skipped, so redelivery is harmless.
func (w *MirrorWorker) HandleEvent(ctx context.Context, e *amqp.JournalEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch e.Type {
	case amqp.EventSaleRecorded:
		slog.InfoContext(ctx, "Processing sale event", "id", e.Transaction.ID, "timestamp", e.Timestamp)

		ids, err := w.mirror.TransactionIDs(ctx)
		if err != nil {
			return fmt.Errorf("list mirrored transactions: %w", err)
		}
		if slices.Contains(ids, e.Transaction.ID) {
			slog.InfoContext(ctx, "Sale already mirrored, skipping", "id", e.Transaction.ID)
			return nil
		}
		return w.appendTransaction(ctx, *e.Transaction)

	case amqp.EventJournalCleared:
		slog.InfoContext(ctx, "Processing journal cleared event", "timestamp", e.Timestamp)
		if err := w.mirror.ClearJournal(ctx); err != nil {
			return fmt.Errorf("clear mirror: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown type %q", amqp.ErrInvalidEvent, e.Type)
	}
}

// Reconcile appends every journal sale missing from the sheet, oldest first.
// This is the backup path for events lost while the worker was down.
func (w *MirrorWorker) Reconcile(ctx context.Context) (int, error) {
	if w.journal == nil {
		return 0, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	ids, err := w.mirror.TransactionIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list mirrored transactions: %w", err)
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}

	txs := w.journal.ReadAll(ctx)
	sort.SliceStable(txs, func(a, b int) bool {
		return txs[a].CreatedAt.Before(txs[b].CreatedAt)
	})

	synced, failed := 0, 0
	for _, tx := range txs {
		if _, ok := seen[tx.ID]; ok {
			continue
		}
		if err := w.appendTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror sale during reconcile", "id", tx.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Reconcile completed",
		"journal", len(txs),
		"mirrored", len(ids),
		"synced", synced,
		"errors", failed)

	if failed > 0 {
		return synced, fmt.Errorf("reconcile: %d sales not mirrored", failed)
	}
	return synced, nil
}

func (w *MirrorWorker) appendTransaction(ctx context.Context, tx core.Transaction) error {
	ref, err := w.mirror.AppendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored sale",
		"id", tx.ID,
		"sheets_ref", ref,
		"item", tx.ItemName,
		"total", tx.TotalPrice.String())
	return nil
}
