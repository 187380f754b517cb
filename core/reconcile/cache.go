package reconcile

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// SourceIndex is a keyed snapshot of a source table.
type SourceIndex struct {
	// Records is the indexed source, unique on its key.
	Records []Record

	// Built is the timestamp when this index was built.
	Built time.Time

	// TTL is the time-to-live for this index.
	TTL time.Duration
}

// IsExpired returns true if this index has expired based on its TTL.
func (c *SourceIndex) IsExpired() bool {
	if c.TTL == 0 {
		return true // No caching
	}
	return time.Since(c.Built) > c.TTL
}

// SourceKey identifies a cached source index.
type SourceKey struct {
	Table    string
	KeyField string
	Fields   []string
	Where    string
}

// String returns the cache key.
func (k SourceKey) String() string {
	return k.Table + "|" + k.KeyField + "|" + strings.Join(k.Fields, ",") + "|" + k.Where
}

// SourceCache holds source indices shared across runs of the HTTP server.
// Sources are never mutated by a job, so an index stays valid until its TTL.
type SourceCache struct {
	mu      sync.RWMutex
	indices map[string]*SourceIndex
	sf      singleflight.Group
	ttl     time.Duration
}

// NewSourceCache creates a cache. A zero ttl disables caching.
func NewSourceCache(ttl time.Duration) *SourceCache {
	return &SourceCache{
		indices: make(map[string]*SourceIndex),
		ttl:     ttl,
	}
}

// GetOrBuild returns the cached index for key, or builds a new one if it
// doesn't exist or has expired. Uses singleflight to prevent stampedes.
func (c *SourceCache) GetOrBuild(ctx context.Context, key SourceKey, build func(ctx context.Context) ([]Record, error)) (*SourceIndex, error) {
	if c == nil || c.ttl == 0 {
		records, err := build(ctx)
		if err != nil {
			return nil, err
		}
		return &SourceIndex{Records: records, Built: time.Now()}, nil
	}

	k := key.String()

	// Fast path: check if index exists and is fresh
	c.mu.RLock()
	idx, exists := c.indices[k]
	c.mu.RUnlock()
	if exists && !idx.IsExpired() {
		return idx, nil
	}

	result, err, _ := c.sf.Do(k, func() (interface{}, error) {
		// Double-check after acquiring singleflight lock
		c.mu.RLock()
		idx, exists := c.indices[k]
		c.mu.RUnlock()
		if exists && !idx.IsExpired() {
			return idx, nil
		}

		records, err := build(ctx)
		if err != nil {
			return nil, err
		}
		fresh := &SourceIndex{Records: records, Built: time.Now(), TTL: c.ttl}

		c.mu.Lock()
		c.indices[k] = fresh
		c.mu.Unlock()

		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*SourceIndex), nil
}
