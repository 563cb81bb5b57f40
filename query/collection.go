package query

import (
	"fmt"
	"geoq/common"
	"geoq/feature"
	"geoq/geometry"
	"geoq/index"
	"github.com/hauke96/sigolo/v2"
	"golang.org/x/exp/constraints"
	"golang.org/x/sync/singleflight"
	"math"
	"sort"
	"sync"
	"time"
)

// Config determines how the spatial indices of a collection are built and which distance strategy is used when a query
// doesn't specify one.
type Config struct {
	Distance                geometry.DistanceStrategy
	Elevation               geometry.ElevationStrategy
	Dimensions              int
	FanOut                  int
	AttributeIndexCacheSize int
}

func DefaultConfig() Config {
	return Config{
		Distance:                geometry.GreatCircle{},
		Elevation:               geometry.FlatElevation{},
		Dimensions:              2,
		FanOut:                  8,
		AttributeIndexCacheSize: 16,
	}
}

// Collection is an immutable, ordered set of features. Spatial and attribute indices are built on first use and are
// safe for concurrent reads. Every query returns a new collection with its own, not yet built indices.
type Collection[T feature.Feature] struct {
	items  []T
	config Config

	// The indices store positions within items, which keeps results in the original order when merging them.
	kdOnce     sync.Once
	kdTree     *index.KDTree[int]
	kdErr      error
	boundsOnce sync.Once
	boundsTree *index.BoundsTree[int]
	boundsErr  error

	attributeIndices *index.LruCache[string, *index.OrderedTree[float64, int]]
	attributeBuilds  singleflight.Group
}

func NewCollection[T feature.Feature](items []T, config Config) *Collection[T] {
	ownItems := make([]T, len(items))
	copy(ownItems, items)
	return newCollection(ownItems, config)
}

// newCollection creates a collection taking ownership of the given slice.
func newCollection[T feature.Feature](items []T, config Config) *Collection[T] {
	if config.Distance == nil {
		config.Distance = geometry.DefaultDistanceStrategy
	}
	if config.Dimensions == 0 {
		config.Dimensions = 2
	}
	if config.FanOut == 0 {
		config.FanOut = DefaultConfig().FanOut
	}
	if config.AttributeIndexCacheSize == 0 {
		config.AttributeIndexCacheSize = DefaultConfig().AttributeIndexCacheSize
	}

	return &Collection[T]{
		items:            items,
		config:           config,
		attributeIndices: index.NewLruCache[string, *index.OrderedTree[float64, int]](config.AttributeIndexCacheSize),
	}
}

func (c *Collection[T]) derive(items []T) *Collection[T] {
	return newCollection(items, c.config)
}

func (c *Collection[T]) atPositions(positions []int) *Collection[T] {
	items := make([]T, len(positions))
	for i, position := range positions {
		items[i] = c.items[position]
	}
	return c.derive(items)
}

func (c *Collection[T]) Config() Config {
	return c.config
}

func (c *Collection[T]) Len() int {
	return len(c.items)
}

func (c *Collection[T]) IsEmpty() bool {
	return len(c.items) == 0
}

// At returns the item at the given position, which must be within [0, Len()).
func (c *Collection[T]) At(i int) T {
	return c.items[i]
}

// Items returns a copy of all items in their order.
func (c *Collection[T]) Items() []T {
	result := make([]T, len(c.items))
	copy(result, c.items)
	return result
}

// Each calls the visitor for every item in order until it returns false.
func (c *Collection[T]) Each(visitor func(i int, item T) bool) {
	for i, item := range c.items {
		if !visitor(i, item) {
			return
		}
	}
}

func (c *Collection[T]) Filter(predicate func(T) bool) *Collection[T] {
	var result []T
	for _, item := range c.items {
		if predicate(item) {
			result = append(result, item)
		}
	}
	return c.derive(result)
}

// FilterWithError is like Filter but stops at and returns the first error of the predicate.
func (c *Collection[T]) FilterWithError(predicate func(T) (bool, error)) (*Collection[T], error) {
	var result []T
	for _, item := range c.items {
		applies, err := predicate(item)
		if err != nil {
			return nil, err
		}
		if applies {
			result = append(result, item)
		}
	}
	return c.derive(result), nil
}

func (c *Collection[T]) FilterExpression(expression FilterExpression) (*Collection[T], error) {
	if sigolo.ShouldLogTrace() {
		expression.Print(0)
	}
	return c.FilterWithError(func(item T) (bool, error) {
		return expression.Applies(item)
	})
}

// Map transforms every item into a new feature. The result is a new collection with the configuration of c.
func Map[T feature.Feature, U feature.Feature](c *Collection[T], transform func(T) U) *Collection[U] {
	result := make([]U, len(c.items))
	for i, item := range c.items {
		result[i] = transform(item)
	}
	return newCollection(result, c.config)
}

// MapValues derives one value from every item, e.g. a name or a distance.
func MapValues[T feature.Feature, V any](c *Collection[T], transform func(T) V) []V {
	result := make([]V, len(c.items))
	for i, item := range c.items {
		result[i] = transform(item)
	}
	return result
}

// SortBy orders the items by the given key. Items with equal keys keep their relative order in both directions. NaN
// keys result in a QueryError.
func SortBy[T feature.Feature, K constraints.Ordered](c *Collection[T], keyFunc func(T) K, order Order) (*Collection[T], error) {
	positions := make([]int, len(c.items))
	for i := range positions {
		positions[i] = i
	}

	tree, err := index.BuildOrderedTree(positions, func(position int) K {
		return keyFunc(c.items[position])
	})
	if err != nil {
		return nil, err
	}

	if order == Ascending {
		return c.atPositions(tree.Items()), nil
	}

	// Collect runs of equal keys and emit the runs in reverse order.
	var runs [][]int
	var lastKey K
	tree.Walk(func(key K, position int) bool {
		if len(runs) == 0 || key != lastKey {
			runs = append(runs, []int{})
		}
		runs[len(runs)-1] = append(runs[len(runs)-1], position)
		lastKey = key
		return true
	})

	sorted := make([]int, 0, len(positions))
	for i := len(runs) - 1; i >= 0; i-- {
		sorted = append(sorted, runs[i]...)
	}
	return c.atPositions(sorted), nil
}

// SortByAttribute sorts by a numeric or textual attribute. All items must have the attribute and it must be of the same
// kind for all of them, categories count as text.
func (c *Collection[T]) SortByAttribute(name string, order Order) (*Collection[T], error) {
	numeric, err := c.attributeIsNumeric(name, "sort")
	if err != nil {
		return nil, err
	}

	if numeric {
		return SortBy(c, func(item T) float64 {
			value, _ := item.GetAttribute(name)
			n, _ := value.Number()
			return n
		}, order)
	}

	return SortBy(c, func(item T) string {
		value, _ := item.GetAttribute(name)
		return value.String()
	}, order)
}

// attributeIsNumeric checks that every item has the attribute and that all values are either numbers or texts.
func (c *Collection[T]) attributeIsNumeric(name string, operation string) (bool, error) {
	numberCount := 0
	for _, item := range c.items {
		value, ok := item.GetAttribute(name)
		if !ok {
			return false, common.NewQueryError(operation, "entity %d has no attribute '%s'", item.GetID(), name)
		}
		if value.IsNumber() {
			numberCount++
		}
	}

	if numberCount != 0 && numberCount != len(c.items) {
		return false, common.NewQueryError(operation, "attribute '%s' has mixed kinds: %d of %d values are numbers", name, numberCount, len(c.items))
	}

	return numberCount != 0, nil
}

// SearchRegex returns all items whose attribute matches the regular expression in their original order. Items without
// the attribute never match.
func (c *Collection[T]) SearchRegex(field string, pattern string) (*Collection[T], error) {
	expression, err := NewRegexFilterExpression(field, pattern)
	if err != nil {
		return nil, err
	}
	return c.FilterExpression(expression)
}

func (c *Collection[T]) strategyOrDefault(strategy geometry.DistanceStrategy) geometry.DistanceStrategy {
	if strategy == nil {
		return c.config.Distance
	}
	return strategy
}

func (c *Collection[T]) getKDTree() (*index.KDTree[int], error) {
	c.kdOnce.Do(func() {
		positions := make([]int, len(c.items))
		for i := range positions {
			positions[i] = i
		}
		c.kdTree, c.kdErr = index.NewKDTree(positions, func(position int) geometry.Point {
			return c.items[position].GetPoint()
		}, c.config.Dimensions, c.config.Elevation)
	})
	return c.kdTree, c.kdErr
}

func (c *Collection[T]) getBoundsTree() (*index.BoundsTree[int], error) {
	c.boundsOnce.Do(func() {
		positions := make([]int, len(c.items))
		for i := range positions {
			positions[i] = i
		}
		c.boundsTree, c.boundsErr = index.NewBoundsTree(positions, func(position int) (*geometry.Polygon, bool) {
			return c.items[position].GetShape()
		}, c.config.FanOut)
	})
	return c.boundsTree, c.boundsErr
}

func (c *Collection[T]) toNeighbors(found []index.Neighbor[int]) []index.Neighbor[T] {
	result := make([]index.Neighbor[T], len(found))
	for i, n := range found {
		result[i] = index.Neighbor[T]{Item: c.items[n.Item], Distance: n.Distance}
	}
	return result
}

// NearestNeighbors returns the k items closest to the point together with their distance in kilometres. Shapes are
// represented by their centroid. A nil strategy means the strategy of the configuration.
func (c *Collection[T]) NearestNeighbors(point geometry.Point, k int, strategy geometry.DistanceStrategy) ([]index.Neighbor[T], error) {
	start := time.Now()

	tree, err := c.getKDTree()
	if err != nil {
		return nil, err
	}

	found, err := tree.Nearest(point, k, c.strategyOrDefault(strategy))
	if err != nil {
		return nil, err
	}

	sigolo.Debugf("Found %d nearest neighbors of %s in %s", len(found), point.String(), time.Since(start))
	return c.toNeighbors(found), nil
}

// NearestTo is like NearestNeighbors but returns the items as collection in ascending distance.
func (c *Collection[T]) NearestTo(point geometry.Point, k int, strategy geometry.DistanceStrategy) (*Collection[T], error) {
	found, err := c.NearestNeighbors(point, k, strategy)
	if err != nil {
		return nil, err
	}
	return c.derive(neighborItems(found)), nil
}

// NeighborsWithin returns all items within the radius in kilometres together with their distance.
func (c *Collection[T]) NeighborsWithin(point geometry.Point, radius float64, strategy geometry.DistanceStrategy) ([]index.Neighbor[T], error) {
	start := time.Now()

	tree, err := c.getKDTree()
	if err != nil {
		return nil, err
	}

	found, err := tree.WithinRadius(point, radius, c.strategyOrDefault(strategy))
	if err != nil {
		return nil, err
	}

	sigolo.Debugf("Found %d items within %fkm around %s in %s", len(found), radius, point.String(), time.Since(start))
	return c.toNeighbors(found), nil
}

// Within is like NeighborsWithin but returns the items as collection in ascending distance.
func (c *Collection[T]) Within(point geometry.Point, radius float64, strategy geometry.DistanceStrategy) (*Collection[T], error) {
	found, err := c.NeighborsWithin(point, radius, strategy)
	if err != nil {
		return nil, err
	}
	return c.derive(neighborItems(found)), nil
}

func neighborItems[T any](neighbors []index.Neighbor[T]) []T {
	items := make([]T, len(neighbors))
	for i, n := range neighbors {
		items[i] = n.Item
	}
	return items
}

// InBound returns all items whose point (or centroid for shapes) lies within the box in their original order.
func (c *Collection[T]) InBound(box geometry.BoundingBox) (*Collection[T], error) {
	tree, err := c.getKDTree()
	if err != nil {
		return nil, err
	}
	return c.atPositions(tree.InBound(box)), nil
}

// ShapesContaining returns all shapes containing the point, boundary included, in their original order.
func (c *Collection[T]) ShapesContaining(point geometry.Point) (*Collection[T], error) {
	start := time.Now()

	tree, err := c.getBoundsTree()
	if err != nil {
		return nil, err
	}
	positions := tree.Containing(point)

	sigolo.Debugf("Found %d shapes containing %s in %s", len(positions), point.String(), time.Since(start))
	return c.atPositions(positions), nil
}

// ShapesOverlapping returns all shapes sharing at least one point with the box in their original order.
func (c *Collection[T]) ShapesOverlapping(box geometry.BoundingBox) (*Collection[T], error) {
	start := time.Now()

	tree, err := c.getBoundsTree()
	if err != nil {
		return nil, err
	}
	positions := tree.Overlapping(box)

	sigolo.Debugf("Found %d shapes overlapping %s in %s", len(positions), box.String(), time.Since(start))
	return c.atPositions(positions), nil
}

// Intersecting returns point items within the box and shape items overlapping it in their original order.
func (c *Collection[T]) Intersecting(box geometry.BoundingBox) (*Collection[T], error) {
	kdTree, err := c.getKDTree()
	if err != nil {
		return nil, err
	}
	boundsTree, err := c.getBoundsTree()
	if err != nil {
		return nil, err
	}

	var positions []int
	for _, position := range kdTree.InBound(box) {
		if _, isShape := c.items[position].GetShape(); !isShape {
			positions = append(positions, position)
		}
	}
	positions = append(positions, boundsTree.Overlapping(box)...)
	sort.Ints(positions)

	return c.atPositions(positions), nil
}

// getAttributeIndex returns the ordered index over the numeric values of the attribute. Items without the attribute or
// with a non-numeric value are not part of the index. Concurrent requests for the same attribute share one build.
func (c *Collection[T]) getAttributeIndex(name string) (*index.OrderedTree[float64, int], error) {
	if tree, ok := c.attributeIndices.Get(name); ok {
		return tree, nil
	}

	result, err, _ := c.attributeBuilds.Do(name, func() (interface{}, error) {
		if tree, ok := c.attributeIndices.Get(name); ok {
			return tree, nil
		}

		tree := index.NewOrderedTree[float64, int]()
		for position, item := range c.items {
			value, ok := item.GetAttribute(name)
			if !ok {
				continue
			}
			n, isNumber := value.Number()
			if !isNumber {
				continue
			}
			err := tree.Insert(n, position)
			if err != nil {
				return nil, err
			}
		}

		err := c.attributeIndices.Insert(name, tree)
		if err != nil {
			return nil, err
		}
		sigolo.Debugf("Built index for attribute '%s' with %d values", name, tree.Len())
		return tree, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*index.OrderedTree[float64, int]), nil
}

// RangeByAttribute returns all items with a numeric attribute value within [lo, hi] ordered by that value.
func (c *Collection[T]) RangeByAttribute(name string, lo float64, hi float64) (*Collection[T], error) {
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return nil, common.NewQueryError("range", "bounds must not be NaN")
	}

	tree, err := c.getAttributeIndex(name)
	if err != nil {
		return nil, err
	}

	return c.atPositions(tree.Range(lo, hi)), nil
}

// MedianOf returns the median of the given values. For an even number of items it's the average of both middle values.
func (c *Collection[T]) MedianOf(valueFunc func(T) float64) (float64, error) {
	if len(c.items) == 0 {
		return 0, common.NewQueryError("median", "collection is empty")
	}

	finder := index.NewMedianFinder[float64]()
	for _, item := range c.items {
		value := valueFunc(item)
		if math.IsNaN(value) {
			return 0, common.NewQueryError("median", "value of entity %d is NaN", item.GetID())
		}
		finder.Add(value)
	}

	median, _ := finder.MedianValue()
	return median, nil
}

// MedianOfAttribute returns the median of a numeric attribute. Items without the attribute are ignored.
func (c *Collection[T]) MedianOfAttribute(name string) (float64, error) {
	finder := index.NewMedianFinder[float64]()
	for _, item := range c.items {
		value, ok := item.GetAttribute(name)
		if !ok {
			continue
		}
		n, isNumber := value.Number()
		if !isNumber {
			return 0, common.NewQueryError("median", "attribute '%s' of entity %d is not a number but '%s'", name, item.GetID(), value.String())
		}
		finder.Add(n)
	}

	median, ok := finder.MedianValue()
	if !ok {
		return 0, common.NewQueryError("median", "no entity has the attribute '%s'", name)
	}
	return median, nil
}

func (c *Collection[T]) Print() {
	if !sigolo.ShouldLogTrace() {
		return
	}
	sigolo.Tracef("Collection with %d items:", len(c.items))
	for _, item := range c.items {
		item.Print()
	}
}

func (c *Collection[T]) String() string {
	return fmt.Sprintf("Collection{items=%d, distance=%s, dimensions=%d}", len(c.items), c.config.Distance.Name(), c.config.Dimensions)
}

