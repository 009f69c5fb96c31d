package cache

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Memo computes values on a miss and stores them. Concurrent misses for the
// same key share one computation.
type Memo[T any] struct {
	cache Cache[T]
	group singleflight.Group

	// gen increments on Purge. A computation started before an invalidation
	// never repopulates the cache, and later callers never join it.
	mu  sync.Mutex
	gen uint64
}

func NewMemo[T any](c Cache[T]) *Memo[T] {
	return &Memo[T]{cache: c}
}

// Get returns the cached value for key or computes it with fn. hit reports
// whether the value came from the cache.
func (m *Memo[T]) Get(key string, fn func() (T, error)) (value T, hit bool, err error) {
	if v, ok := m.cache.Get(key); ok {
		return v, true, nil
	}

	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()

	flight := strconv.FormatUint(gen, 10) + ":" + key
	res, err, _ := m.group.Do(flight, func() (any, error) {
		v, err := fn()
		if err != nil {
			return v, err
		}
		m.mu.Lock()
		if m.gen == gen {
			m.cache.Set(key, v)
		}
		m.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return res.(T), false, nil
}

// Purge invalidates every cached value.
func (m *Memo[T]) Purge() {
	m.mu.Lock()
	m.gen++
	m.cache.Purge()
	m.mu.Unlock()
}
