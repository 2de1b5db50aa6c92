// Package cache provides a thread-safe LRU cache for compiled formulas.
//
// The cache is used by the GoFormula facade when the WithCaching option is
// enabled. It avoids re-parsing the same formula text on every call, which is
// especially valuable when a fixed set of user formulas is applied to many
// different contexts.
//
// # Example
//
//	c := cache.New(1024)
//	expr, err := c.GetOrCompile(`price * quantity`, func() (*types.Expression, error) {
//	    return parser.Parse(`price * quantity`)
//	})
package cache

import (
	"container/list"
	"sync"

	"github.com/sandrolain/goformula/pkg/types"
)

// entry is a cache entry stored in the doubly-linked list.
type entry struct {
	source string
	expr   *types.Expression
}

// Cache is a thread-safe LRU (Least Recently Used) cache of compiled
// formulas keyed by their source text. Once the capacity is reached, the
// least recently accessed entry is evicted.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

// New creates a new LRU cache with the given capacity.
// capacity must be > 0; if <= 0, a default of 256 is used.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get retrieves a compiled formula from the cache.
// Returns (expr, true) if found and moves the entry to front (MRU).
func (c *Cache) Get(source string) (*types.Expression, bool) {
	c.mu.RLock()
	el, ok := c.items[source]
	// When the element is already at the front, the write lock is skipped.
	alreadyFront := ok && c.ll.Front() == el
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !alreadyFront {
		// Promote to front under write lock; re-check in case of concurrent
		// eviction.
		c.mu.Lock()
		el, ok = c.items[source]
		if ok {
			c.ll.MoveToFront(el)
		}
		c.mu.Unlock()

		if !ok {
			return nil, false
		}
	}
	return el.Value.(*entry).expr, true
}

// Set inserts or replaces a compiled formula in the cache.
// If at capacity, the least recently used entry is evicted first.
func (c *Cache) Set(source string, expr *types.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[source]; ok {
		el.Value.(*entry).expr = expr
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}

	el := c.ll.PushFront(&entry{source: source, expr: expr})
	c.items[source] = el
}

// GetOrCompile retrieves the formula for source from the cache, or calls
// compile() to create it, caches the result, and returns it.
// Compile errors are not cached (no negative caching).
func (c *Cache) GetOrCompile(source string, compile func() (*types.Expression, error)) (*types.Expression, error) {
	if expr, ok := c.Get(source); ok {
		return expr, nil
	}
	expr, err := compile()
	if err != nil {
		return nil, err
	}
	c.Set(source, expr)
	return expr, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Invalidate removes a single entry from the cache.
func (c *Cache) Invalidate(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[source]; ok {
		c.ll.Remove(el)
		delete(c.items, source)
	}
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}

// evictLocked removes the least recently used entry.
// Must be called with c.mu held for writing.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).source)
}
