package backend

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"posjournal/internal/amqp"
	"posjournal/internal/journal"
	"posjournal/internal/storage"
	"posjournal/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		kv      journal.KV
		ping    func(context.Context) error
		closeKV CleanupFunc
	)

	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		kv, ping, closeKV = repo, repo.Ping, repo.Close
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	case MemoryBackend:
		var store *memory.Store
		if config.DataDirectory != "" {
			store = memory.NewFromDir(config.DataDirectory)
		} else {
			store = memory.New()
		}
		kv = store
		f.logger.InfoContext(ctx, "Initialized memory backend", "data_directory", config.DataDirectory)

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	journalKey := journal.DefaultKey
	if config.JournalKey != "" {
		journalKey = config.JournalKey
	}
	f.inspectKeys(ctx, kv, journalKey)
	opts := []journal.Option{journal.WithKey(journalKey)}

	result := &BackendResult{
		Store: journal.NewKVStore(kv, opts...),
		Ping:  func(context.Context) error { return nil },
	}
	if ping != nil {
		result.Ping = ping
	}

	// AMQP is optional; the journal works without it.
	var client *amqp.Client
	if config.AMQPURL != "" {
		var err error
		client, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", "error", err)
			client = nil
		} else {
			result.Publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	result.Cleanup = func() error {
		var firstErr error
		if client != nil {
			if err := client.Close(); err != nil {
				firstErr = fmt.Errorf("close AMQP client: %w", err)
			}
		}
		if closeKV != nil {
			if err := closeKV(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("close storage: %w", err)
			}
		}
		return firstErr
	}

	return result, nil
}

// keyLister is implemented by both storage backends.
type keyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

// inspectKeys logs what the store already holds and warns when it has data
// but none under the journal key, which usually means a misnamed seed file
// or a different journal key.
func (f *DefaultFactory) inspectKeys(ctx context.Context, kv journal.KV, journalKey string) {
	lister, ok := kv.(keyLister)
	if !ok {
		return
	}
	keys, err := lister.Keys(ctx)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to list stored keys", "error", err)
		return
	}
	f.logger.InfoContext(ctx, "Storage contents", "keys", keys, "journal_key", journalKey)
	if len(keys) > 0 && !slices.Contains(keys, journalKey) {
		f.logger.WarnContext(ctx, "Storage holds data but no journal", "keys", keys, "journal_key", journalKey)
	}
}
