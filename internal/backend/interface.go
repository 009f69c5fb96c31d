package backend

import (
	"context"

	"posjournal/internal/journal"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// BackendResult is a ready-to-use journal backend.
type BackendResult struct {
	// Store is the transaction store over the selected KV.
	Store *journal.KVStore
	// Publisher is nil when no broker is configured.
	Publisher journal.Publisher
	// Ping reports storage health. Never nil.
	Ping func(ctx context.Context) error
	// Cleanup is never nil.
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific: optional directory of *.json seed payloads
	DataDirectory string

	// Storage key of the journal; empty means journal.DefaultKey
	JournalKey string

	// Optional event publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
