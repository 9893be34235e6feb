package crawl

import "sync"

// stateCache holds the engine's warm caches: the completed-URL set, the
// URL to local path map, and the in-flight reservation set. It is an
// eventually-consistent projection of the store, rebuilt at startup; once
// complete() returns for a URL, busy() reports true for it forever after.
type stateCache struct {
	mu        sync.RWMutex
	completed map[string]struct{}
	paths     map[string]string
	active    map[string]struct{}
}

func newStateCache() *stateCache {
	return &stateCache{
		completed: make(map[string]struct{}),
		paths:     make(map[string]string),
		active:    make(map[string]struct{}),
	}
}

// load replaces the completed set and path map with store snapshots.
func (c *stateCache) load(completed map[string]struct{}, paths map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for u := range completed {
		c.completed[u] = struct{}{}
	}
	for u, p := range paths {
		c.paths[u] = p
	}
}

// busy reports whether the URL is completed or currently in flight.
func (c *stateCache) busy(url string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.completed[url]; ok {
		return true
	}
	_, ok := c.active[url]
	return ok
}

// reserve marks a URL as in flight.
func (c *stateCache) reserve(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active[url] = struct{}{}
}

// release drops the in-flight reservation.
func (c *stateCache) release(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, url)
}

// complete publishes a finished URL and its local path. Called after the
// store transaction commits.
func (c *stateCache) complete(url, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed[url] = struct{}{}
	c.paths[url] = path
}

// path returns the local path for a completed URL.
func (c *stateCache) path(url string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.paths[url]
	return p, ok
}
