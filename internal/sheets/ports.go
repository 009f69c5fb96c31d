// Package sheets declares the outbound ports of the spreadsheet export.
// The spreadsheet is a write-only bookkeeping mirror of the journal.
package sheets

import (
	"context"

	"posjournal/internal/core"
)

// Ports for outbound adapters.
type (
	TransactionWriter interface {
		// AppendTransaction adds one row and returns its range reference.
		AppendTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// TransactionLister lets redelivered events be applied once.
	TransactionLister interface {
		TransactionIDs(ctx context.Context) ([]string, error)
	}

	JournalClearer interface {
		// ClearJournal removes every data row, keeping the header.
		ClearJournal(ctx context.Context) error
	}

	Mirror interface {
		TransactionWriter
		TransactionLister
		JournalClearer
	}
)
