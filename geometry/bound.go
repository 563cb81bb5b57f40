package geometry

import (
	"fmt"
	"geoq/common"
	"github.com/paulmach/orb"
)

// BoundingBox is an axis-aligned rectangle. All checks on it are inclusive, so touching boxes intersect and points on
// the edge are contained.
type BoundingBox struct {
	minLat float64
	minLon float64
	maxLat float64
	maxLon float64
}

func NewBoundingBox(minLat float64, minLon float64, maxLat float64, maxLon float64) (BoundingBox, error) {
	err := validateCoordinate(minLat, minLon)
	if err != nil {
		return BoundingBox{}, err
	}
	err = validateCoordinate(maxLat, maxLon)
	if err != nil {
		return BoundingBox{}, err
	}
	if minLat > maxLat {
		return BoundingBox{}, common.NewValidationError("minLat", minLat, "minimum latitude %f is larger than maximum latitude %f", minLat, maxLat)
	}
	if minLon > maxLon {
		return BoundingBox{}, common.NewValidationError("minLon", minLon, "minimum longitude %f is larger than maximum longitude %f", minLon, maxLon)
	}

	return BoundingBox{minLat: minLat, minLon: minLon, maxLat: maxLat, maxLon: maxLon}, nil
}

// BoundOf returns the smallest box containing all given points. The list must not be empty.
func BoundOf(points ...Point) BoundingBox {
	b := BoundingBox{
		minLat: points[0].lat,
		minLon: points[0].lon,
		maxLat: points[0].lat,
		maxLon: points[0].lon,
	}
	for _, p := range points[1:] {
		b = b.Extend(p)
	}
	return b
}

func boundFromOrb(b orb.Bound) BoundingBox {
	return BoundingBox{
		minLat: b.Min.Lat(),
		minLon: b.Min.Lon(),
		maxLat: b.Max.Lat(),
		maxLon: b.Max.Lon(),
	}
}

func (b BoundingBox) MinLat() float64 { return b.minLat }

func (b BoundingBox) MinLon() float64 { return b.minLon }

func (b BoundingBox) MaxLat() float64 { return b.maxLat }

func (b BoundingBox) MaxLon() float64 { return b.maxLon }

// Min returns the coordinate of the given axis of the lower left corner.
func (b BoundingBox) Min(axis Axis) float64 {
	if axis == AxisLon {
		return b.minLon
	}
	return b.minLat
}

// Max returns the coordinate of the given axis of the upper right corner.
func (b BoundingBox) Max(axis Axis) float64 {
	if axis == AxisLon {
		return b.maxLon
	}
	return b.maxLat
}

func (b BoundingBox) Contains(p Point) bool {
	return b.Orb().Contains(p.Orb())
}

func (b BoundingBox) ContainsBound(other BoundingBox) bool {
	return b.minLat <= other.minLat && b.minLon <= other.minLon && b.maxLat >= other.maxLat && b.maxLon >= other.maxLon
}

func (b BoundingBox) Intersects(other BoundingBox) bool {
	return b.Orb().Intersects(other.Orb())
}

func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	return boundFromOrb(b.Orb().Union(other.Orb()))
}

func (b BoundingBox) Extend(p Point) BoundingBox {
	return boundFromOrb(b.Orb().Extend(p.Orb()))
}

func (b BoundingBox) Center() Point {
	return Point{
		lat: (b.minLat + b.maxLat) / 2,
		lon: (b.minLon + b.maxLon) / 2,
	}
}

// Corners returns the four corners counter-clockwise starting at the lower left one.
func (b BoundingBox) Corners() [4]Point {
	return [4]Point{
		{lat: b.minLat, lon: b.minLon},
		{lat: b.minLat, lon: b.maxLon},
		{lat: b.maxLat, lon: b.maxLon},
		{lat: b.maxLat, lon: b.minLon},
	}
}

func (b BoundingBox) Orb() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.minLon, b.minLat},
		Max: orb.Point{b.maxLon, b.maxLat},
	}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[(%f, %f), (%f, %f)]", b.minLat, b.minLon, b.maxLat, b.maxLon)
}
