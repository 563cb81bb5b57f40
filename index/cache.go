package index

import (
	"github.com/pkg/errors"
	"math"
	"sync"
)

// LruCache is a simple LRU (least recently used) cache, e.g. for ordered attribute indices of a collection. It has an
// internal locking mechanism and can be used in concurrent goroutines. The recency of an entry only gets updated when
// it is read or inserted.
type LruCache[K comparable, V any] struct {
	entries     map[K]V
	lastAccess  map[K]uint64
	accessClock uint64
	mutex       *sync.Mutex
	maxSize     int // Maximum number of entries this cache should hold
}

func NewLruCache[K comparable, V any](maxSize int) *LruCache[K, V] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LruCache[K, V]{
		entries:    map[K]V{},
		lastAccess: map[K]uint64{},
		mutex:      &sync.Mutex{},
		maxSize:    maxSize,
	}
}

func (c *LruCache[K, V]) Get(key K) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	value, ok := c.entries[key]
	if ok {
		c.touch(key)
	}
	return value, ok
}

// Insert adds the value to the cache. If the cache is full, the entry that hasn't been used longest will be evicted. It
// returns an error when the key is already cached.
func (c *LruCache[K, V]) Insert(key K, value V) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.entries[key]; ok {
		return errors.Errorf("Given key %v is already in the cache", key)
	}

	c.insertUnsafe(key, value)
	return nil
}

// Put adds or replaces the value of the given key.
func (c *LruCache[K, V]) Put(key K, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = value
		c.touch(key)
		return
	}

	c.insertUnsafe(key, value)
}

func (c *LruCache[K, V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return len(c.entries)
}

// insertUnsafe is the core functionality of the insertion of elements. This function does NOT use locking and is meant
// for internal use only!
func (c *LruCache[K, V]) insertUnsafe(key K, value V) {
	if len(c.entries) >= c.maxSize {
		leastRecentlyUsed := c.getMinEntry()
		delete(c.entries, leastRecentlyUsed)
		delete(c.lastAccess, leastRecentlyUsed)
	}

	c.entries[key] = value
	c.touch(key)
}

func (c *LruCache[K, V]) touch(key K) {
	c.accessClock++
	c.lastAccess[key] = c.accessClock
}

// getMinEntry returns the key that hasn't been used longest. This function does NOT use locking and is meant for
// internal use only!
func (c *LruCache[K, V]) getMinEntry() K {
	minAccess := uint64(math.MaxUint64)
	var minKey K

	for key, access := range c.lastAccess {
		if access < minAccess {
			minAccess = access
			minKey = key
		}
	}

	return minKey
}
