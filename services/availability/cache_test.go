package availability

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type countingSource struct {
	mu    sync.Mutex
	reads int32
	fail  bool
	gate  chan struct{} // when set, ReadGrid blocks until closed
	grids map[string][]Row
}

func (s *countingSource) ReadGrid(ctx context.Context) (map[string][]Row, error) {
	atomic.AddInt32(&s.reads, 1)
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("source down")
	}
	return s.grids, nil
}

func (s *countingSource) ClaimSlot(ctx context.Context, specialist, date, slot string) error {
	return nil
}

func (s *countingSource) ReleaseSlot(ctx context.Context, specialist, date, slot string) error {
	return nil
}

func (s *countingSource) readCount() int32 {
	return atomic.LoadInt32(&s.reads)
}

func testGrids() map[string][]Row {
	return map[string][]Row{
		"Maria": {{"01/12/2025", "x"}},
	}
}

func TestCache_GetWithinTTLHitsSourceOnce(t *testing.T) {
	src := &countingSource{grids: testGrids()}
	cache := NewCache(src, testLabels, "x", time.Minute, zap.NewNop())

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		m, err := cache.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !m.Available("Maria", "01/12/2025", "8:00 - 9:00") {
			t.Fatalf("matrix missing expected cell")
		}
	}
	if got := src.readCount(); got != 1 {
		t.Fatalf("expected exactly 1 source read, got %d", got)
	}
}

func TestCache_ExpiredTTLRefreshes(t *testing.T) {
	src := &countingSource{grids: testGrids()}
	cache := NewCache(src, testLabels, "x", 10*time.Millisecond, zap.NewNop())

	ctx := context.Background()
	if _, err := cache.Get(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := cache.Get(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := src.readCount(); got != 2 {
		t.Fatalf("expected 2 source reads across TTL windows, got %d", got)
	}
}

func TestCache_SingleFlight(t *testing.T) {
	src := &countingSource{grids: testGrids(), gate: make(chan struct{})}
	cache := NewCache(src, testLabels, "x", time.Minute, zap.NewNop())

	const callers = 10
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)

	results := make([]Matrix, callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			started.Done()
			m, err := cache.Get(context.Background())
			if err != nil {
				t.Errorf("caller %d: unexpected error: %v", i, err)
			}
			results[i] = m
			done.Done()
		}(i)
	}

	started.Wait()
	// Give every caller time to join the in-progress flight, then let the
	// single read finish.
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	done.Wait()

	if got := src.readCount(); got != 1 {
		t.Fatalf("expected exactly 1 coalesced source read, got %d", got)
	}
	for i := 1; i < callers; i++ {
		if !results[i].Available("Maria", "01/12/2025", "8:00 - 9:00") {
			t.Fatalf("caller %d observed a different matrix", i)
		}
	}
}

func TestCache_ServesStaleOnRefreshFailure(t *testing.T) {
	src := &countingSource{grids: testGrids()}
	cache := NewCache(src, testLabels, "x", 10*time.Millisecond, zap.NewNop())

	ctx := context.Background()
	if _, err := cache.Get(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src.mu.Lock()
	src.fail = true
	src.mu.Unlock()
	time.Sleep(20 * time.Millisecond)

	m, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("stale matrix must be served, got error: %v", err)
	}
	if !m.Available("Maria", "01/12/2025", "8:00 - 9:00") {
		t.Fatalf("stale matrix content lost")
	}
}

func TestCache_FailsWhenNeverLoaded(t *testing.T) {
	src := &countingSource{fail: true}
	cache := NewCache(src, testLabels, "x", time.Minute, zap.NewNop())

	_, err := cache.Get(context.Background())
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestCache_InvalidateForcesRefresh(t *testing.T) {
	src := &countingSource{grids: testGrids()}
	cache := NewCache(src, testLabels, "x", time.Minute, zap.NewNop())

	ctx := context.Background()
	if _, err := cache.Get(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cache.Invalidate()
	if _, err := cache.Get(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := src.readCount(); got != 2 {
		t.Fatalf("expected refresh after Invalidate, got %d reads", got)
	}
}
