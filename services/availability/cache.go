package availability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache is a TTL pull-through cache over a Source. Reads are safe under
// concurrent access; refreshes are coalesced so that N callers observing
// staleness at once trigger exactly one source read and all receive its
// result. When a refresh fails but an older matrix exists, the stale matrix
// is served and the failure is only logged.
type Cache struct {
	source Source
	labels []string
	marker string
	ttl    time.Duration
	logger *zap.Logger

	group singleflight.Group

	mu        sync.RWMutex
	matrix    Matrix
	fetchedAt time.Time
}

// NewCache creates a cache with the given freshness window. labels and marker
// are passed through to BuildMatrix on every refresh.
func NewCache(source Source, labels []string, marker string, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{source: source, labels: labels, marker: marker, ttl: ttl, logger: logger}
}

// Get returns a matrix no older than the TTL when the source cooperates, and
// the last known matrix otherwise. It fails with ErrSourceUnavailable only if
// no matrix has ever been loaded.
func (c *Cache) Get(ctx context.Context) (Matrix, error) {
	if m, ok := c.fresh(); ok {
		return m, nil
	}

	v, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		// A previous flight may have refreshed while this caller was
		// waiting to join; don't hit the source twice for one window.
		if m, ok := c.fresh(); ok {
			return m, nil
		}
		return c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(Matrix), nil
}

// Invalidate discards the freshness timestamp so the next Get re-reads the
// source. The old matrix is kept as the degraded-mode fallback.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

func (c *Cache) fresh() (Matrix, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.matrix != nil && time.Since(c.fetchedAt) < c.ttl {
		return c.matrix, true
	}
	return nil, false
}

func (c *Cache) refresh(ctx context.Context) (Matrix, error) {
	grids, err := c.source.ReadGrid(ctx)
	if err != nil {
		c.mu.RLock()
		stale := c.matrix
		c.mu.RUnlock()
		if stale != nil {
			c.logger.Warn("availability refresh failed, serving stale matrix", zap.Error(err))
			return stale, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	m := BuildMatrix(grids, c.labels, c.marker)

	c.mu.Lock()
	c.matrix = m
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return m, nil
}
