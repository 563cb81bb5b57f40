package query

import (
	"fmt"
	"geoq/common"
	"geoq/feature"
	"sort"
)

// Groups is a partition of a collection. Every item of the collection is in exactly one group and keeps its relative
// order within that group.
type Groups[K comparable, T feature.Feature] struct {
	keys   []K
	groups map[K]*Collection[T]
}

func (g *Groups[K, T]) Len() int {
	return len(g.keys)
}

// Keys returns the group keys in the order of their first appearance in the collection.
func (g *Groups[K, T]) Keys() []K {
	result := make([]K, len(g.keys))
	copy(result, g.keys)
	return result
}

// SortedKeys returns the keys in natural order of their textual representation.
func (g *Groups[K, T]) SortedKeys() []K {
	result := g.Keys()
	sort.SliceStable(result, func(i, j int) bool {
		return common.CompareNatural(fmt.Sprint(result[i]), fmt.Sprint(result[j])) < 0
	})
	return result
}

func (g *Groups[K, T]) Get(key K) (*Collection[T], bool) {
	group, ok := g.groups[key]
	return group, ok
}

// GroupBy partitions the collection by the given key. Keys that are not equal to themselves (e.g. NaN) can't identify a
// group and result in a QueryError.
func GroupBy[T feature.Feature, K comparable](c *Collection[T], keyFunc func(T) K) (*Groups[K, T], error) {
	keys := make([]K, c.Len())
	for i, item := range c.items {
		key := keyFunc(item)
		if key != key {
			return nil, common.NewQueryError("group", "key %v of entity %d is not comparable", key, item.GetID())
		}
		keys[i] = key
	}

	return groupByKeys(c, keys), nil
}

// groupByKeys partitions the collection by the precomputed keys, one key per item.
func groupByKeys[T feature.Feature, K comparable](c *Collection[T], itemKeys []K) *Groups[K, T] {
	var keys []K
	itemsPerKey := map[K][]T{}

	for i, item := range c.items {
		key := itemKeys[i]
		if _, ok := itemsPerKey[key]; !ok {
			keys = append(keys, key)
		}
		itemsPerKey[key] = append(itemsPerKey[key], item)
	}

	groups := make(map[K]*Collection[T], len(keys))
	for _, key := range keys {
		groups[key] = c.derive(itemsPerKey[key])
	}

	return &Groups[K, T]{
		keys:   keys,
		groups: groups,
	}
}

// GroupByAttribute partitions the collection by the textual value of an attribute. Items without the attribute end up
// in the group with the empty key.
func (c *Collection[T]) GroupByAttribute(name string) *Groups[string, T] {
	keys := MapValues(c, func(item T) string {
		value, ok := item.GetAttribute(name)
		if !ok {
			return ""
		}
		return value.String()
	})
	return groupByKeys(c, keys)
}
