package cache

import (
	"github.com/dgraph-io/ristretto"
)

// MappingCache keeps recently resolved mappings in memory so hot redirects
// skip the store round trip. Mappings are immutable, so entries never need
// invalidation.
type MappingCache struct {
	cache *ristretto.Cache
}

// New creates a cache sized for roughly maxEntries mappings.
func New(maxEntries int64) (*MappingCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &MappingCache{cache: cache}, nil
}

// Get returns the cached original URL for a short code.
func (c *MappingCache) Get(code string) (string, bool) {
	val, found := c.cache.Get(code)
	if !found {
		return "", false
	}
	return val.(string), true
}

// Set caches a resolved mapping. Each entry costs 1 regardless of URL
// length; MaxCost is an entry count.
func (c *MappingCache) Set(code, originalURL string) {
	c.cache.Set(code, originalURL, 1)
}

// Wait blocks until buffered writes have been applied. Used by tests.
func (c *MappingCache) Wait() {
	c.cache.Wait()
}

// Close releases the cache resources.
func (c *MappingCache) Close() {
	c.cache.Close()
}
