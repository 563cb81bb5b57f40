package index

import (
	"geoq/common"
	"geoq/geometry"
	"github.com/hauke96/sigolo/v2"
	"math"
	"sort"
	"time"
)

// pruneTolerance in kilometres keeps rounding differences between the distance and the axis lower bound from pruning
// subtrees holding equally distant items.
const pruneTolerance = 1e-9

// Neighbor is an item found by a distance query together with its distance in kilometres.
type Neighbor[T any] struct {
	Item     T
	Distance float64
}

// KDTree is a static k-d tree over the points of the given items. It is built once and never updated.
type KDTree[T any] struct {
	root       *kdNode[T]
	dimensions int
	elevation  geometry.ElevationStrategy
	size       int
}

type kdEntry[T any] struct {
	item      T
	point     geometry.Point
	elevation float64
	seq       int
}

func (e kdEntry[T]) coordinate(axis geometry.Axis) float64 {
	if axis == geometry.AxisElevation {
		return e.elevation
	}
	return e.point.Coordinate(axis)
}

type kdNode[T any] struct {
	entry kdEntry[T]
	axis  geometry.Axis
	left  *kdNode[T]
	right *kdNode[T]
}

func (n *kdNode[T]) split() float64 {
	return n.entry.coordinate(n.axis)
}

// NewKDTree builds a tree with 2 (lat, lon) or 3 (lat, lon, elevation) dimensions. The elevation strategy is only used
// for 3 dimensions and defaults to a flat elevation.
func NewKDTree[T any](items []T, pointFunc func(T) geometry.Point, dimensions int, elevation geometry.ElevationStrategy) (*KDTree[T], error) {
	if dimensions != 2 && dimensions != 3 {
		return nil, common.NewValidationError("dimensions", dimensions, "k-d tree supports 2 or 3 dimensions but got %d", dimensions)
	}
	if elevation == nil {
		elevation = geometry.FlatElevation{}
	}

	start := time.Now()

	entries := make([]kdEntry[T], len(items))
	for i, item := range items {
		entries[i] = kdEntry[T]{
			item:  item,
			point: pointFunc(item),
			seq:   i,
		}
		if dimensions == 3 {
			e, err := elevation.ElevationOf(entries[i].point)
			if err != nil {
				return nil, err
			}
			entries[i].elevation = e
		}
	}

	tree := &KDTree[T]{
		root:       buildKDNode(entries, 0, dimensions),
		dimensions: dimensions,
		elevation:  elevation,
		size:       len(items),
	}

	sigolo.Debugf("Built %d-d tree with %d items and height %d in %s", dimensions, tree.size, tree.Height(), time.Since(start))
	return tree, nil
}

// buildKDNode splits the entries at the median of the axis of this depth. The entries must be in insertion order,
// which the partitioning below keeps for both sides.
func buildKDNode[T any](entries []kdEntry[T], depth int, dimensions int) *kdNode[T] {
	if len(entries) == 0 {
		return nil
	}

	axis := geometry.Axis(depth % dimensions)

	medianFinder := NewMedianFinder[float64]()
	for _, e := range entries {
		medianFinder.Add(e.coordinate(axis))
	}
	median, _ := medianFinder.Median()

	var less, equal, greater []kdEntry[T]
	for _, e := range entries {
		c := e.coordinate(axis)
		if c < median {
			less = append(less, e)
		} else if c > median {
			greater = append(greater, e)
		} else {
			equal = append(equal, e)
		}
	}

	// The first entry on the median becomes the node. The remaining ones are valid on both sides and are used to
	// balance them, which matters for data with many identical coordinates.
	node := &kdNode[T]{
		entry: equal[0],
		axis:  axis,
	}
	equal = equal[1:]

	leftFromEqual := (len(entries)-1)/2 - len(less)
	leftFromEqual = max(0, min(leftFromEqual, len(equal)))

	left := mergeBySeq(less, equal[:leftFromEqual])
	right := mergeBySeq(equal[leftFromEqual:], greater)

	node.left = buildKDNode(left, depth+1, dimensions)
	node.right = buildKDNode(right, depth+1, dimensions)
	return node
}

// mergeBySeq merges two slices that are each in insertion order into one slice in insertion order.
func mergeBySeq[T any](a []kdEntry[T], b []kdEntry[T]) []kdEntry[T] {
	result := make([]kdEntry[T], 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].seq < b[j].seq {
			result = append(result, a[i])
			i++
		} else {
			result = append(result, b[j])
			j++
		}
	}
	result = append(result, a[i:]...)
	return append(result, b[j:]...)
}

func (t *KDTree[T]) Len() int {
	return t.size
}

func (t *KDTree[T]) Dimensions() int {
	return t.dimensions
}

func (t *KDTree[T]) Height() int {
	return t.root.height()
}

func (n *kdNode[T]) height() int {
	if n == nil {
		return 0
	}
	return 1 + max(n.left.height(), n.right.height())
}

type kdQuery struct {
	point     geometry.Point
	elevation float64
	strategy  geometry.DistanceStrategy
}

func (t *KDTree[T]) newQuery(q geometry.Point, strategy geometry.DistanceStrategy) (kdQuery, error) {
	if strategy == nil {
		strategy = geometry.DefaultDistanceStrategy
	}

	query := kdQuery{
		point:    q,
		strategy: strategy,
	}

	if t.dimensions == 3 {
		e, err := t.elevation.ElevationOf(q)
		if err != nil {
			return kdQuery{}, err
		}
		query.elevation = e
	}

	return query, nil
}

func (t *KDTree[T]) distance(query kdQuery, e kdEntry[T]) float64 {
	surface := query.strategy.Distance(query.point, e.point)
	if t.dimensions == 3 {
		return geometry.Distance3D(surface, query.elevation, e.elevation)
	}
	return surface
}

// lowerBound returns the minimum distance from the query to anything on the other side of the node's split plane.
func (t *KDTree[T]) lowerBound(query kdQuery, n *kdNode[T]) float64 {
	if n.axis == geometry.AxisElevation {
		return math.Abs(query.elevation-n.split()) / 1000
	}
	return query.strategy.AxisDistance(query.point, n.axis, n.split())
}

func (t *KDTree[T]) queryCoordinate(query kdQuery, axis geometry.Axis) float64 {
	if axis == geometry.AxisElevation {
		return query.elevation
	}
	return query.point.Coordinate(axis)
}

type kdCandidate[T any] struct {
	entry    kdEntry[T]
	distance float64
}

func candidateBefore[T any](a kdCandidate[T], b kdCandidate[T]) bool {
	return a.distance < b.distance || (a.distance == b.distance && a.entry.seq < b.entry.seq)
}

// Nearest returns the k items closest to q in ascending distance. Equally distant items are ordered by their position
// in the original item list.
func (t *KDTree[T]) Nearest(q geometry.Point, k int, strategy geometry.DistanceStrategy) ([]Neighbor[T], error) {
	if k < 0 {
		return nil, common.NewQueryError("nearest", "k must not be negative but was %d", k)
	}

	query, err := t.newQuery(q, strategy)
	if err != nil {
		return nil, err
	}

	result := []Neighbor[T]{}
	if k == 0 || t.root == nil {
		return result, nil
	}

	// Max-heap: the worst of the current candidates is on top.
	candidates := newPriorityQueue[kdCandidate[T]](func(a kdCandidate[T], b kdCandidate[T]) bool {
		return candidateBefore(b, a)
	})

	t.nearest(t.root, query, k, candidates)

	sorted := make([]kdCandidate[T], candidates.Len())
	for i := len(sorted) - 1; i >= 0; i-- {
		sorted[i] = candidates.Pop()
	}
	for _, c := range sorted {
		result = append(result, Neighbor[T]{Item: c.entry.item, Distance: c.distance})
	}
	return result, nil
}

func (t *KDTree[T]) nearest(n *kdNode[T], query kdQuery, k int, candidates *priorityQueue[kdCandidate[T]]) {
	if n == nil {
		return
	}

	candidate := kdCandidate[T]{entry: n.entry, distance: t.distance(query, n.entry)}
	if candidates.Len() < k {
		candidates.Push(candidate)
	} else if candidateBefore(candidate, candidates.Peek()) {
		candidates.Pop()
		candidates.Push(candidate)
	}

	near, far := n.left, n.right
	if t.queryCoordinate(query, n.axis) >= n.split() {
		near, far = n.right, n.left
	}

	t.nearest(near, query, k, candidates)

	if far == nil {
		return
	}
	if candidates.Len() < k || t.lowerBound(query, n) <= candidates.Peek().distance+pruneTolerance {
		t.nearest(far, query, k, candidates)
	}
}

// WithinRadius returns all items with a distance of at most radius kilometres to q in ascending distance. Equally
// distant items are ordered by their position in the original item list.
func (t *KDTree[T]) WithinRadius(q geometry.Point, radius float64, strategy geometry.DistanceStrategy) ([]Neighbor[T], error) {
	if radius < 0 || math.IsNaN(radius) {
		return nil, common.NewQueryError("within", "radius must be a non-negative number but was %v", radius)
	}

	query, err := t.newQuery(q, strategy)
	if err != nil {
		return nil, err
	}

	var found []kdCandidate[T]
	t.withinRadius(t.root, query, radius, &found)

	sort.Slice(found, func(i, j int) bool {
		return candidateBefore(found[i], found[j])
	})

	result := make([]Neighbor[T], len(found))
	for i, c := range found {
		result[i] = Neighbor[T]{Item: c.entry.item, Distance: c.distance}
	}
	return result, nil
}

func (t *KDTree[T]) withinRadius(n *kdNode[T], query kdQuery, radius float64, found *[]kdCandidate[T]) {
	if n == nil {
		return
	}

	d := t.distance(query, n.entry)
	if d <= radius {
		*found = append(*found, kdCandidate[T]{entry: n.entry, distance: d})
	}

	near, far := n.left, n.right
	if t.queryCoordinate(query, n.axis) >= n.split() {
		near, far = n.right, n.left
	}

	t.withinRadius(near, query, radius, found)
	if far != nil && t.lowerBound(query, n) <= radius+pruneTolerance {
		t.withinRadius(far, query, radius, found)
	}
}

// InBound returns all items whose point lies within the box in their original order. Elevations are ignored.
func (t *KDTree[T]) InBound(box geometry.BoundingBox) []T {
	var found []kdEntry[T]
	t.inBound(t.root, box, &found)

	sort.Slice(found, func(i, j int) bool {
		return found[i].seq < found[j].seq
	})

	result := make([]T, len(found))
	for i, e := range found {
		result[i] = e.item
	}
	return result
}

func (t *KDTree[T]) inBound(n *kdNode[T], box geometry.BoundingBox, found *[]kdEntry[T]) {
	if n == nil {
		return
	}

	if box.Contains(n.entry.point) {
		*found = append(*found, n.entry)
	}

	if n.axis == geometry.AxisElevation {
		t.inBound(n.left, box, found)
		t.inBound(n.right, box, found)
		return
	}

	if box.Min(n.axis) <= n.split() {
		t.inBound(n.left, box, found)
	}
	if box.Max(n.axis) >= n.split() {
		t.inBound(n.right, box, found)
	}
}
