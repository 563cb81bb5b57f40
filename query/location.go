package query

import (
	"fmt"
	"geoq/feature"
	"geoq/geometry"
	"github.com/hauke96/sigolo/v2"
)

// LocationExpression selects the entities of a statement before its filter is applied.
type LocationExpression interface {
	Select(collection *Collection[feature.Feature]) (*Collection[feature.Feature], error)
	Print(indent int)
}

// BboxLocationExpression selects points within the box and shapes overlapping it.
type BboxLocationExpression struct {
	bbox geometry.BoundingBox
}

func NewBboxLocationExpression(bbox geometry.BoundingBox) *BboxLocationExpression {
	return &BboxLocationExpression{bbox: bbox}
}

func (b *BboxLocationExpression) Select(collection *Collection[feature.Feature]) (*Collection[feature.Feature], error) {
	return collection.Intersecting(b.bbox)
}

func (b *BboxLocationExpression) Print(indent int) {
	sigolo.Debugf("%slocation: %s(%s)", spacing(indent), "bbox", b.bbox.String())
}

func (b *BboxLocationExpression) GetBbox() geometry.BoundingBox {
	return b.bbox
}

// RadiusLocationExpression selects everything within the radius in kilometres, closest first.
type RadiusLocationExpression struct {
	center geometry.Point
	radius float64
}

func NewRadiusLocationExpression(center geometry.Point, radius float64) *RadiusLocationExpression {
	return &RadiusLocationExpression{center: center, radius: radius}
}

func (r *RadiusLocationExpression) Select(collection *Collection[feature.Feature]) (*Collection[feature.Feature], error) {
	return collection.Within(r.center, r.radius, nil)
}

func (r *RadiusLocationExpression) Print(indent int) {
	sigolo.Debugf("%slocation: %s(%s, %fkm)", spacing(indent), "radius", r.center.String(), r.radius)
}

func (r *RadiusLocationExpression) GetParameter() (geometry.Point, float64) {
	return r.center, r.radius
}

// ContainingLocationExpression selects all shapes containing the point.
type ContainingLocationExpression struct {
	point geometry.Point
}

func NewContainingLocationExpression(point geometry.Point) *ContainingLocationExpression {
	return &ContainingLocationExpression{point: point}
}

func (c *ContainingLocationExpression) Select(collection *Collection[feature.Feature]) (*Collection[feature.Feature], error) {
	return collection.ShapesContaining(c.point)
}

func (c *ContainingLocationExpression) Print(indent int) {
	sigolo.Debugf("%slocation: %s(%s)", spacing(indent), "containing", c.point.String())
}

func (c *ContainingLocationExpression) GetPoint() geometry.Point {
	return c.point
}

// NearestLocationExpression selects the k entities closest to the point. The filter of the statement is applied
// afterwards, so less than k entities might remain.
type NearestLocationExpression struct {
	point geometry.Point
	k     int
}

func NewNearestLocationExpression(point geometry.Point, k int) *NearestLocationExpression {
	return &NearestLocationExpression{point: point, k: k}
}

func (n *NearestLocationExpression) Select(collection *Collection[feature.Feature]) (*Collection[feature.Feature], error) {
	return collection.NearestTo(n.point, n.k, nil)
}

func (n *NearestLocationExpression) Print(indent int) {
	sigolo.Debugf("%slocation: %s", spacing(indent), n.String())
}

func (n *NearestLocationExpression) String() string {
	return fmt.Sprintf("nearest(%s, %d)", n.point.String(), n.k)
}

func (n *NearestLocationExpression) GetParameter() (geometry.Point, int) {
	return n.point, n.k
}

type AllLocationExpression struct {
}

func NewAllLocationExpression() *AllLocationExpression {
	return &AllLocationExpression{}
}

func (a *AllLocationExpression) Select(collection *Collection[feature.Feature]) (*Collection[feature.Feature], error) {
	return collection, nil
}

func (a *AllLocationExpression) Print(indent int) {
	sigolo.Debugf("%slocation: all", spacing(indent))
}
