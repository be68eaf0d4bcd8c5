package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// GeneralCache is a local TTL cache. Every entry costs 1, so maxCost is the
// number of entries kept.
type GeneralCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewGeneralCache(maxCost int64, ttl time.Duration) (*GeneralCache, error) {
	if maxCost <= 0 {
		maxCost = 1
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxCost * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
		// without this ristretto adds its own per-item overhead to the cost
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}

	return &GeneralCache{
		cache: cache,
		ttl:   ttl,
	}, nil
}

func (c *GeneralCache) Set(key string, value any) bool {
	return c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value; a non-positive ttl disables caching.
func (c *GeneralCache) SetWithTTL(key string, value any, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return c.cache.SetWithTTL(key, value, 1, ttl)
}

func (c *GeneralCache) Get(key string) (any, bool) {
	return c.cache.Get(key)
}

// Fetch returns the cached value for key, or calls load and caches its result.
// Concurrent misses may each call load.
func (c *GeneralCache) Fetch(key string, load func() (any, error)) (any, error) {
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return nil, err
	}
	c.Set(key, v)
	return v, nil
}

func (c *GeneralCache) Delete(key string) {
	c.cache.Del(key)
}

// Wait blocks until buffered writes are applied.
func (c *GeneralCache) Wait() {
	c.cache.Wait()
}

func (c *GeneralCache) Close() {
	c.cache.Close()
}
