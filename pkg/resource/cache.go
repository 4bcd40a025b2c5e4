package resource

import (
	"sync"
)

// Cache maps normalised paths to resolved resources for the lifetime of a
// resolver. It never evicts. While disabled Get always misses and Put is ignored.
type Cache struct {
	mu        sync.RWMutex
	resources map[string]*Resource
	enabled   bool
}

// NewCache creates an empty cache.
func NewCache(enabled bool) *Cache {
	return &Cache{
		resources: make(map[string]*Resource),
		enabled:   enabled,
	}
}

// Get returns the resource stored for path.
func (c *Cache) Get(path string) (*Resource, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.enabled {
		return nil, false
	}
	res, ok := c.resources[path]
	return res, ok
}

// Put stores res under path.
func (c *Cache) Put(path string, res *Resource) {
	if res == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	c.resources[path] = res
}

// Clear drops every stored resource.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = make(map[string]*Resource)
}

// SetEnabled turns the cache on or off. Disabling also clears it.
func (c *Cache) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
	if !enabled {
		c.resources = make(map[string]*Resource)
	}
}

// Enabled reports whether the cache is active.
func (c *Cache) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// Len returns the number of stored resources.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.resources)
}
