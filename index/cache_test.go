package index

import (
	"geoq/util"
	"testing"
)

// isCached checks for the key without updating its recency.
func isCached[K comparable, V any](cache *LruCache[K, V], key K) bool {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()

	_, ok := cache.entries[key]
	return ok
}

func TestLruCache_insertAndEviction(t *testing.T) {
	cache := NewLruCache[string, int](3)

	util.AssertFalse(t, isCached(cache, "A"))
	util.AssertFalse(t, isCached(cache, "B"))
	util.AssertFalse(t, isCached(cache, "C"))
	util.AssertFalse(t, isCached(cache, "D"))

	// Insert A
	err := cache.Insert("A", 1)
	util.AssertNil(t, err)
	util.AssertTrue(t, isCached(cache, "A"))
	util.AssertFalse(t, isCached(cache, "B"))

	// Insert B
	err = cache.Insert("B", 2)
	util.AssertNil(t, err)
	util.AssertTrue(t, isCached(cache, "A"))
	util.AssertTrue(t, isCached(cache, "B"))
	util.AssertFalse(t, isCached(cache, "C"))

	// Insert C
	err = cache.Insert("C", 3)
	util.AssertNil(t, err)
	util.AssertTrue(t, isCached(cache, "A"))
	util.AssertTrue(t, isCached(cache, "B"))
	util.AssertTrue(t, isCached(cache, "C"))
	util.AssertFalse(t, isCached(cache, "D"))

	// Insert D
	err = cache.Insert("D", 4)
	util.AssertNil(t, err)
	util.AssertFalse(t, isCached(cache, "A"))
	util.AssertTrue(t, isCached(cache, "B"))
	util.AssertTrue(t, isCached(cache, "C"))
	util.AssertTrue(t, isCached(cache, "D"))
	util.AssertEqual(t, 3, cache.Len())
}

func TestLruCache_readUpdatesRecency(t *testing.T) {
	// Arrange
	cache := NewLruCache[string, int](2)
	util.AssertNil(t, cache.Insert("A", 1))
	util.AssertNil(t, cache.Insert("B", 2))

	// Act
	value, ok := cache.Get("A")
	err := cache.Insert("C", 3)

	// Assert
	util.AssertNil(t, err)
	util.AssertTrue(t, ok)
	util.AssertEqual(t, 1, value)
	util.AssertTrue(t, isCached(cache, "A"))
	util.AssertFalse(t, isCached(cache, "B"))
	util.AssertTrue(t, isCached(cache, "C"))
}

func TestLruCache_insertTwice(t *testing.T) {
	// Arrange
	cache := NewLruCache[string, int](3)
	err := cache.Insert("A", 1)
	util.AssertNil(t, err)

	// Act
	err = cache.Insert("A", 2)

	// Assert
	util.AssertErrorContains(t, "already in the cache", err)
	value, _ := cache.Get("A")
	util.AssertEqual(t, 1, value)
	util.AssertEqual(t, 1, cache.Len())

	cache.Put("A", 5)
	value, _ = cache.Get("A")
	util.AssertEqual(t, 5, value)
	util.AssertEqual(t, 1, cache.Len())
}
