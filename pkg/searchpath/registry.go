// Package searchpath keeps the bounded, recency-ordered list of base paths
// that unresolved names are retried against.
package searchpath

import (
	"slices"
	"sync"

	"github.com/glorpus-work/osploader/internal/logger"
)

// DefaultMax is the number of search paths kept when no limit is configured.
const DefaultMax = 20

// Registry is a most-recent-first list of unique base paths.
// All methods are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	paths []string
	max   int
}

// New creates a registry holding at most limit paths. A negative limit is
// treated as zero, which turns Add into a no-op.
func New(limit int) *Registry {
	if limit < 0 {
		limit = 0
	}
	return &Registry{max: limit}
}

// Add moves path to the front of the list, inserting it if absent, and
// evicts the least recently added paths beyond the limit.
func (r *Registry) Add(path string) {
	if path == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.max == 0 {
		return
	}

	if i := slices.Index(r.paths, path); i >= 0 {
		r.paths = slices.Delete(r.paths, i, i+1)
	}
	r.paths = slices.Insert(r.paths, 0, path)

	for len(r.paths) > r.max {
		evicted := r.paths[len(r.paths)-1]
		r.paths = r.paths[:len(r.paths)-1]
		logger.Debug("Search path evicted", logger.Fields{"path": evicted})
	}
	logger.Debug("Search path added", logger.Fields{"path": path, "count": len(r.paths)})
}

// Remove drops path from the list. Unknown paths are ignored.
func (r *Registry) Remove(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := slices.Index(r.paths, path); i >= 0 {
		r.paths = slices.Delete(r.paths, i, i+1)
		logger.Debug("Search path removed", logger.Fields{"path": path})
	}
}

// List returns a copy of the paths, most recently added first.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.paths)
}

// Len returns the number of registered paths.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.paths)
}

// Max returns the configured limit.
func (r *Registry) Max() int {
	return r.max
}
