package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLRU(maxSize int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](maxSize, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_GetSet(t *testing.T) {
	c, _ := newTestLRU(2, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}

	// "b" is least recently used now.
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}

	c.Set("a", "updated")
	if v, _ := c.Get("a"); v != "updated" {
		t.Errorf("Get(a) = %q, want updated", v)
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be deleted")
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clock := newTestLRU(10, time.Minute)
	c.Set("a", "1")
	clock.advance(30 * time.Second)
	c.Set("b", "2")

	clock.advance(45 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b should still be cached")
	}

	clock.advance(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestLRUCache_Purge(t *testing.T) {
	c, _ := newTestLRU(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Purge()
	if c.Size() != 0 {
		t.Errorf("Size() = %d after purge", c.Size())
	}
	c.Set("c", "3")
	if _, ok := c.Get("c"); !ok {
		t.Error("cache unusable after purge")
	}
}

func TestManager_CleanAll(t *testing.T) {
	a, clockA := newTestLRU(10, time.Second)
	b, clockB := newTestLRU(10, time.Second)
	a.Set("x", "1")
	b.Set("y", "2")
	b.Set("z", "3")
	clockA.advance(2 * time.Second)
	clockB.advance(2 * time.Second)

	m := NewManager(a)
	m.Register(b)
	if n := m.CleanAll(); n != 3 {
		t.Errorf("CleanAll() = %d, want 3", n)
	}
}

func TestManager_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewManager().Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestMemo_HitAndMiss(t *testing.T) {
	m := NewMemo[string](NewLRUCache[string](10, time.Minute))
	calls := 0
	fn := func() (string, error) {
		calls++
		return "value", nil
	}

	v, hit, err := m.Get("k", fn)
	if err != nil || hit || v != "value" {
		t.Fatalf("first Get = %q, %v, %v", v, hit, err)
	}
	v, hit, err = m.Get("k", fn)
	if err != nil || !hit || v != "value" {
		t.Fatalf("second Get = %q, %v, %v", v, hit, err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	m.Purge()
	if _, hit, _ := m.Get("k", fn); hit {
		t.Error("Get after Purge should miss")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestMemo_ErrorsAreNotCached(t *testing.T) {
	m := NewMemo[int](NewLRUCache[int](10, time.Minute))
	boom := errors.New("boom")

	if _, _, err := m.Get("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	v, hit, err := m.Get("k", func() (int, error) { return 7, nil })
	if err != nil || hit || v != 7 {
		t.Errorf("Get = %d, %v, %v", v, hit, err)
	}
}

func TestMemo_ConcurrentMissesShareWork(t *testing.T) {
	m := NewMemo[int](NewLRUCache[int](10, time.Minute))
	var calls int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := m.Get("k", func() (int, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return 42, nil
			})
			if err != nil || v != 42 {
				t.Errorf("Get = %d, %v", v, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	// Late goroutines may miss the shared flight but never compute more
	// than once each.
	if n := atomic.LoadInt32(&calls); n < 1 || n > 10 {
		t.Errorf("calls = %d", n)
	}
	if _, hit, _ := m.Get("k", func() (int, error) { return 0, nil }); !hit {
		t.Error("value should be cached after the shared computation")
	}
}

func TestMemo_PurgeDuringComputation(t *testing.T) {
	m := NewMemo[int](NewLRUCache[int](10, time.Minute))
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		m.Get("k", func() (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()
	<-started
	m.Purge()
	close(release)
	<-done

	if _, hit, _ := m.Get("k", func() (int, error) { return 2, nil }); hit {
		t.Error("stale computation must not repopulate the cache")
	}
}
