package index

import (
	"geoq/common"
	"geoq/geometry"
	"github.com/hauke96/sigolo/v2"
	"sort"
	"strings"
	"time"
)

// BoundsTree answers containment and overlap queries over polygons. Every node knows the bounding box of all shapes
// below it, the shapes themselves are stored in the leaves with at most fanOut entries each.
type BoundsTree[T any] struct {
	root   *boundsNode[T]
	fanOut int
	size   int
}

type boundsEntry[T any] struct {
	item  T
	shape *geometry.Polygon
	bound geometry.BoundingBox
	seq   int
}

type boundsNode[T any] struct {
	bound    geometry.BoundingBox
	entries  []boundsEntry[T]
	children []*boundsNode[T]
}

// boundsSplitKeys are the values entries are ordered by before being split into children. The key depends on the depth
// and cycles through min lon, min lat, max lon and max lat.
var boundsSplitKeys = []func(b geometry.BoundingBox) float64{
	geometry.BoundingBox.MinLon,
	geometry.BoundingBox.MinLat,
	geometry.BoundingBox.MaxLon,
	geometry.BoundingBox.MaxLat,
}

// NewBoundsTree builds a tree over all items having a shape. Items for which shapeFunc returns false are ignored.
func NewBoundsTree[T any](items []T, shapeFunc func(T) (*geometry.Polygon, bool), fanOut int) (*BoundsTree[T], error) {
	if fanOut < 2 {
		return nil, common.NewValidationError("fanOut", fanOut, "fan-out of bounds tree must be at least 2 but was %d", fanOut)
	}

	start := time.Now()

	var entries []boundsEntry[T]
	for i, item := range items {
		shape, ok := shapeFunc(item)
		if !ok || shape == nil {
			continue
		}
		entries = append(entries, boundsEntry[T]{
			item:  item,
			shape: shape,
			bound: shape.BoundingBox(),
			seq:   i,
		})
	}

	tree := &BoundsTree[T]{
		fanOut: fanOut,
		size:   len(entries),
	}
	if len(entries) > 0 {
		tree.root = buildBoundsNode(entries, 0, fanOut)
	}

	sigolo.Debugf("Built bounds tree with %d shapes, fan-out %d and height %d in %s", tree.size, fanOut, tree.Height(), time.Since(start))
	return tree, nil
}

func buildBoundsNode[T any](entries []boundsEntry[T], depth int, fanOut int) *boundsNode[T] {
	node := &boundsNode[T]{
		bound: entries[0].bound,
	}
	for _, e := range entries[1:] {
		node.bound = node.bound.Union(e.bound)
	}

	if len(entries) <= fanOut {
		node.entries = entries
		return node
	}

	splitKey := boundsSplitKeys[depth%len(boundsSplitKeys)]
	sorted := make([]boundsEntry[T], len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return splitKey(sorted[i].bound) < splitKey(sorted[j].bound)
	})

	chunkSize := (len(sorted) + fanOut - 1) / fanOut
	for i := 0; i < len(sorted); i += chunkSize {
		end := min(i+chunkSize, len(sorted))
		node.children = append(node.children, buildBoundsNode(sorted[i:end], depth+1, fanOut))
	}

	return node
}

func (t *BoundsTree[T]) Len() int {
	return t.size
}

func (t *BoundsTree[T]) FanOut() int {
	return t.fanOut
}

func (t *BoundsTree[T]) Height() int {
	return t.root.height()
}

func (n *boundsNode[T]) height() int {
	if n == nil {
		return 0
	}
	h := 0
	for _, child := range n.children {
		h = max(h, child.height())
	}
	return h + 1
}

// Containing returns all items whose shape contains the point, boundary included, in their original order.
func (t *BoundsTree[T]) Containing(point geometry.Point) []T {
	var found []boundsEntry[T]
	t.root.containing(point, &found)
	return sortedBoundsItems(found)
}

func (n *boundsNode[T]) containing(point geometry.Point, found *[]boundsEntry[T]) {
	if n == nil || !n.bound.Contains(point) {
		return
	}

	for _, e := range n.entries {
		if e.bound.Contains(point) && e.shape.Contains(point) {
			*found = append(*found, e)
		}
	}

	for _, child := range n.children {
		child.containing(point, found)
	}
}

// Overlapping returns all items whose shape shares at least one point with the box in their original order.
func (t *BoundsTree[T]) Overlapping(box geometry.BoundingBox) []T {
	var found []boundsEntry[T]
	t.root.overlapping(box, &found)
	return sortedBoundsItems(found)
}

func (n *boundsNode[T]) overlapping(box geometry.BoundingBox, found *[]boundsEntry[T]) {
	if n == nil || !n.bound.Intersects(box) {
		return
	}

	for _, e := range n.entries {
		if e.bound.Intersects(box) && e.shape.IntersectsBound(box) {
			*found = append(*found, e)
		}
	}

	for _, child := range n.children {
		child.overlapping(box, found)
	}
}

func sortedBoundsItems[T any](entries []boundsEntry[T]) []T {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	result := make([]T, len(entries))
	for i, e := range entries {
		result[i] = e.item
	}
	return result
}

func (t *BoundsTree[T]) Print() {
	if !sigolo.ShouldLogTrace() {
		return
	}
	sigolo.Tracef("BoundsTree (fan-out %d, %d shapes):", t.fanOut, t.size)
	t.root.print(1)
}

func (n *boundsNode[T]) print(indent int) {
	if n == nil {
		return
	}
	sigolo.Tracef("%s%s: %d entries, %d children", strings.Repeat("  ", indent), n.bound.String(), len(n.entries), len(n.children))
	for _, child := range n.children {
		child.print(indent + 1)
	}
}
