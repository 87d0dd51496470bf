package categorize

import (
	"sync"

	"github.com/piggybook/smsledger/internal/model"
)

// Cache is a process-wide, concurrency-safe merchant→category cache.
// Merchant categories are assumed stable, so entries never expire; growth
// is bounded by the number of distinct merchants seen. Clear exists for
// test isolation and manual refresh.
type Cache struct {
	entries map[string]model.Category
	mu      sync.RWMutex
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]model.Category),
	}
}

// Get retrieves a cached category for a normalized merchant key.
func (c *Cache) Get(key string) (model.Category, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	category, ok := c.entries[key]
	return category, ok
}

// Set stores a category for a normalized merchant key.
func (c *Cache) Set(key string, category model.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = category
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]model.Category)
}

// Size returns the number of cached merchants.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
