package geometry

import (
	"geoq/common"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	"math"
)

// Polygon is an immutable simple polygon. The ring is stored open, which means the first point is not repeated at the
// end. Its boundary belongs to the polygon.
type Polygon struct {
	points []Point
	bound  BoundingBox
}

func NewPolygon(points ...Point) (*Polygon, error) {
	if len(points) > 1 && points[0].SameLocation(points[len(points)-1]) {
		points = points[:len(points)-1]
	}

	if len(points) < 3 {
		return nil, common.NewValidationError("points", len(points), "a polygon needs at least 3 points but got %d", len(points))
	}

	for i := range points {
		next := points[(i+1)%len(points)]
		if points[i].SameLocation(next) {
			return nil, common.NewValidationError("points", i, "polygon has repeated vertex %s at position %d", points[i].String(), i)
		}
	}

	allCollinear := true
	for i := 2; i < len(points); i++ {
		if orientation(points[0], points[1], points[i]) != 0 {
			allCollinear = false
			break
		}
	}
	if allCollinear {
		return nil, common.NewValidationError("points", len(points), "all %d polygon points are collinear", len(points))
	}

	ownPoints := make([]Point, len(points))
	copy(ownPoints, points)

	polygon := &Polygon{
		points: ownPoints,
		bound:  BoundOf(ownPoints...),
	}

	if i, j, ok := polygon.findSelfIntersection(); ok {
		return nil, common.NewValidationError("points", i, "polygon edges %d and %d intersect each other", i, j)
	}

	return polygon, nil
}

func (p *Polygon) edge(i int) (Point, Point) {
	return p.points[i], p.points[(i+1)%len(p.points)]
}

// findSelfIntersection returns the indices of two intersecting edges. Adjacent edges are allowed to share their common
// vertex but must not fold back onto each other.
func (p *Polygon) findSelfIntersection() (int, int, bool) {
	n := len(p.points)
	for i := 0; i < n; i++ {
		a1, a2 := p.edge(i)
		for j := i + 1; j < n; j++ {
			b1, b2 := p.edge(j)

			if j == i+1 {
				// a2 == b1 is the shared vertex
				if onSegment(b2, a1, a2) || onSegment(a1, b1, b2) {
					return i, j, true
				}
				continue
			}
			if i == 0 && j == n-1 {
				// b2 == a1 is the shared vertex
				if onSegment(b1, a1, a2) || onSegment(a2, b1, b2) {
					return i, j, true
				}
				continue
			}

			if segmentsIntersect(a1, a2, b1, b2) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func (p *Polygon) Points() []Point {
	result := make([]Point, len(p.points))
	copy(result, p.points)
	return result
}

func (p *Polygon) Len() int {
	return len(p.points)
}

func (p *Polygon) BoundingBox() BoundingBox {
	return p.bound
}

// Contains returns true for points inside the polygon or on its boundary.
func (p *Polygon) Contains(point Point) bool {
	if !p.bound.Contains(point) {
		return false
	}

	for i := range p.points {
		a, b := p.edge(i)
		if onSegment(point, a, b) {
			return true
		}
	}

	// Ray casting towards positive longitudes, points on the boundary are already handled above.
	inside := false
	for i := range p.points {
		a, b := p.edge(i)
		if (a.lat > point.lat) != (b.lat > point.lat) {
			crossingLon := a.lon + (point.lat-a.lat)*(b.lon-a.lon)/(b.lat-a.lat)
			if point.lon < crossingLon {
				inside = !inside
			}
		}
	}
	return inside
}

// IntersectsBound returns true when the polygon and the box share at least one point.
func (p *Polygon) IntersectsBound(box BoundingBox) bool {
	if !p.bound.Intersects(box) {
		return false
	}

	for _, point := range p.points {
		if box.Contains(point) {
			return true
		}
	}

	corners := box.Corners()
	for _, corner := range corners {
		if p.Contains(corner) {
			return true
		}
	}

	for i := range p.points {
		a, b := p.edge(i)
		for c := range corners {
			if segmentsIntersect(a, b, corners[c], corners[(c+1)%len(corners)]) {
				return true
			}
		}
	}

	return false
}

// Centroid returns the area centroid of the polygon.
func (p *Polygon) Centroid() Point {
	centroid, _ := planar.CentroidArea(p.Orb())
	return Point{lat: centroid.Lat(), lon: centroid.Lon()}
}

// AreaKm2 returns the area on the earth surface in square kilometres.
func (p *Polygon) AreaKm2() float64 {
	return math.Abs(geo.Area(p.Orb())) / 1_000_000
}

// DistanceTo returns 0 for contained points and the distance to the nearest vertex otherwise.
func (p *Polygon) DistanceTo(point Point, strategy DistanceStrategy) float64 {
	if p.Contains(point) {
		return 0
	}

	_, distance := nearestVertex(p.points, point, strategy)
	return distance
}

func (p *Polygon) Equal(other *Polygon) bool {
	if other == nil || len(p.points) != len(other.points) {
		return false
	}
	for i := range p.points {
		if !p.points[i].Equal(other.points[i]) {
			return false
		}
	}
	return true
}

// Orb returns the polygon as orb polygon with a closed outer ring.
func (p *Polygon) Orb() orb.Polygon {
	ring := make(orb.Ring, len(p.points)+1)
	for i, point := range p.points {
		ring[i] = point.Orb()
	}
	ring[len(p.points)] = p.points[0].Orb()
	return orb.Polygon{ring}
}

// PolygonFromOrb creates a polygon from the outer ring of the given orb polygon. Holes are not supported and ignored.
func PolygonFromOrb(polygon orb.Polygon) (*Polygon, error) {
	if len(polygon) == 0 {
		return nil, common.NewValidationError("points", 0, "orb polygon has no outer ring")
	}

	var points []Point
	for _, orbPoint := range polygon[0] {
		point, err := PointFromOrb(orbPoint)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}

	return NewPolygon(points...)
}
