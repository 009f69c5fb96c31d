// Package journal owns the canonical list of recorded sales and the
// operations the presentation layer calls to record and report on them.
package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"posjournal/internal/core"
)

// DefaultKey is the storage key holding the serialized journal.
const DefaultKey = "pos_transactions"

// ErrCorruptPayload marks a stored journal that does not decode.
var ErrCorruptPayload = errors.New("corrupt journal payload")

// KV is the durable key-value storage the journal is persisted in.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store is the persistence contract for transactions.
type Store interface {
	// ReadAll returns every persisted transaction. It never fails: an absent,
	// unreadable or corrupt journal reads as empty. Order is not guaranteed.
	ReadAll(ctx context.Context) []core.Transaction
	// Append assigns ID and CreatedAt and persists the draft.
	Append(ctx context.Context, d core.Draft) (core.Transaction, error)
	// Clear removes every transaction.
	Clear(ctx context.Context) error
}

// KVStore keeps the whole journal as one JSON array under a single key,
// newest record first. Every call holds the store mutex, so the store has a
// single writer even when shared between goroutines.
type KVStore struct {
	mu    sync.Mutex
	kv    KV
	key   string
	now   func() time.Time
	newID func() string
	last  time.Time
}

var _ Store = (*KVStore)(nil)

// Option configures a KVStore.
type Option func(*KVStore)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *KVStore) { s.key = key }
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *KVStore) { s.now = now }
}

// WithIDGenerator overrides the ID source.
func WithIDGenerator(newID func() string) Option {
	return func(s *KVStore) { s.newID = newID }
}

func NewKVStore(kv KV, opts ...Option) *KVStore {
	s := &KVStore{
		kv:    kv,
		key:   DefaultKey,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *KVStore) load(ctx context.Context) ([]core.Transaction, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var txs []core.Transaction
	if err := json.Unmarshal(raw, &txs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}
	return txs, nil
}

func (s *KVStore) ReadAll(ctx context.Context) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Journal unreadable, reporting empty", "key", s.key, "error", err)
		return []core.Transaction{}
	}
	if txs == nil {
		return []core.Transaction{}
	}
	return txs
}

// Append prepends the new record and rewrites the journal in one Put. On any
// failure the stored journal is left as it was, and a corrupt journal is
// never overwritten.
func (s *KVStore) Append(ctx context.Context, d core.Draft) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: read journal: %w", core.ErrPersistence, err)
	}

	createdAt := s.now().UTC().Truncate(time.Millisecond)
	latest := s.last
	for _, tx := range existing {
		if tx.CreatedAt.After(latest) {
			latest = tx.CreatedAt
		}
	}
	if createdAt.Before(latest) {
		createdAt = latest
	}

	tx := d.Transaction(s.newID(), createdAt)
	updated := make([]core.Transaction, 0, len(existing)+1)
	updated = append(updated, tx)
	updated = append(updated, existing...)

	payload, err := json.Marshal(updated)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: encode journal: %w", core.ErrPersistence, err)
	}
	if err := s.kv.Put(ctx, s.key, payload); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: write journal: %w", core.ErrPersistence, err)
	}

	s.last = createdAt
	return tx, nil
}

func (s *KVStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("%w: clear journal: %w", core.ErrPersistence, err)
	}
	return nil
}
