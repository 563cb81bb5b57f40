package geometry

import (
	"fmt"
	"geoq/common"
	"github.com/paulmach/orb"
	"math"
)

const (
	MinLat = -90.0
	MaxLat = 90.0
	MinLon = -180.0
	MaxLon = 180.0
)

// Point is an immutable WGS84 coordinate with an optional elevation in metres.
type Point struct {
	lat          float64
	lon          float64
	elevation    float64
	hasElevation bool
}

func NewPoint(lat float64, lon float64) (Point, error) {
	err := validateCoordinate(lat, lon)
	if err != nil {
		return Point{}, err
	}
	return Point{lat: lat, lon: lon}, nil
}

func NewPointWithElevation(lat float64, lon float64, elevation float64) (Point, error) {
	err := validateCoordinate(lat, lon)
	if err != nil {
		return Point{}, err
	}
	if !isFinite(elevation) {
		return Point{}, common.NewValidationError("elevation", elevation, "elevation must be a finite number but was %v", elevation)
	}
	return Point{lat: lat, lon: lon, elevation: elevation, hasElevation: true}, nil
}

// MustNewPoint is like NewPoint but panics on invalid coordinates. Only meant for constant fixtures.
func MustNewPoint(lat float64, lon float64) Point {
	p, err := NewPoint(lat, lon)
	if err != nil {
		panic(err)
	}
	return p
}

// PointFromOrb converts the given orb point (lon, lat order) into a validated point.
func PointFromOrb(p orb.Point) (Point, error) {
	return NewPoint(p.Lat(), p.Lon())
}

func validateCoordinate(lat float64, lon float64) error {
	if !isFinite(lat) {
		return common.NewValidationError("latitude", lat, "latitude must be a finite number but was %v", lat)
	}
	if !isFinite(lon) {
		return common.NewValidationError("longitude", lon, "longitude must be a finite number but was %v", lon)
	}
	if lat < MinLat || lat > MaxLat {
		return common.OutOfBoundsError("latitude", lat, MinLat, MaxLat)
	}
	if lon < MinLon || lon > MaxLon {
		return common.OutOfBoundsError("longitude", lon, MinLon, MaxLon)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (p Point) Lat() float64 { return p.lat }

func (p Point) Lon() float64 { return p.lon }

// Elevation returns the elevation in metres and whether the point has one at all.
func (p Point) Elevation() (float64, bool) {
	return p.elevation, p.hasElevation
}

// Coordinate returns the latitude or longitude. Elevations depend on an ElevationStrategy and are not handled here.
func (p Point) Coordinate(axis Axis) float64 {
	if axis == AxisLon {
		return p.lon
	}
	return p.lat
}

// DistanceTo returns the distance in kilometres using the given strategy. A nil strategy means great-circle distance.
func (p Point) DistanceTo(other Point, strategy DistanceStrategy) float64 {
	if strategy == nil {
		strategy = DefaultDistanceStrategy
	}
	return strategy.Distance(p, other)
}

func (p Point) Orb() orb.Point {
	return orb.Point{p.lon, p.lat}
}

func (p Point) Equal(other Point) bool {
	return p == other
}

// SameLocation returns true when both points have the same latitude and longitude, the elevation is ignored.
func (p Point) SameLocation(other Point) bool {
	return p.lat == other.lat && p.lon == other.lon
}

func (p Point) String() string {
	if p.hasElevation {
		return fmt.Sprintf("(%f, %f, %.1fm)", p.lat, p.lon, p.elevation)
	}
	return fmt.Sprintf("(%f, %f)", p.lat, p.lon)
}
