package geometry

import (
	"geoq/common"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb/planar"
	"math"
)

const (
	EarthRadiusKm = 6371.0

	// KmPerDegree is the length of one degree on the equator, used by the planar approximation.
	KmPerDegree = 111.33
)

type Axis int

const (
	AxisLat Axis = iota
	AxisLon
	AxisElevation
)

func (a Axis) String() string {
	switch a {
	case AxisLat:
		return "lat"
	case AxisLon:
		return "lon"
	case AxisElevation:
		return "elevation"
	}
	return "unknown"
}

// DistanceStrategy computes surface distances in kilometres. Implementations must be symmetric and return 0 for
// identical points.
type DistanceStrategy interface {
	Name() string
	Distance(a Point, b Point) float64
	// AxisDistance returns a lower bound of the distance from q to any point lying on the other side of the given
	// latitude or longitude value. Spatial indices use this to skip whole subtrees.
	AxisDistance(q Point, axis Axis, value float64) float64
}

var DefaultDistanceStrategy DistanceStrategy = GreatCircle{}

func DistanceStrategyByName(name string) (DistanceStrategy, error) {
	switch name {
	case GreatCircle{}.Name(), "":
		return GreatCircle{}, nil
	case Planar{}.Name():
		return Planar{}, nil
	}
	return nil, common.NewValidationError("distance", name, "unknown distance strategy '%s', expected 'great-circle' or 'planar'", name)
}

// GreatCircle measures distances on a sphere with the mean earth radius.
type GreatCircle struct{}

func (g GreatCircle) Name() string {
	return "great-circle"
}

func (g GreatCircle) Distance(a Point, b Point) float64 {
	from := s2.LatLngFromDegrees(a.lat, a.lon)
	to := s2.LatLngFromDegrees(b.lat, b.lon)
	return from.Distance(to).Radians() * EarthRadiusKm
}

func (g GreatCircle) AxisDistance(q Point, axis Axis, value float64) float64 {
	if axis == AxisLat {
		// Following the meridian is the shortest way to reach another parallel.
		return EarthRadiusKm * math.Abs(degreesToRadians(value-q.lat))
	}

	// The region on the other side of a meridian is bounded by that meridian and the antimeridian. The distance to the
	// great circle of each of them is a lower bound for reaching it.
	cosLat := math.Cos(degreesToRadians(q.lat))
	toMeridian := crossTrackDistance(cosLat, math.Sin(degreesToRadians(value-q.lon)))
	toAntimeridian := crossTrackDistance(cosLat, math.Sin(degreesToRadians(q.lon)))
	return math.Min(toMeridian, toAntimeridian)
}

func crossTrackDistance(cosLat float64, sinDeltaLon float64) float64 {
	x := math.Min(1, math.Abs(cosLat*sinDeltaLon))
	return EarthRadiusKm * math.Asin(x)
}

// Planar treats latitude and longitude as cartesian coordinates and scales degrees to kilometres. This is only
// accurate for small areas near the equator but fast and well suited for city sized data.
type Planar struct{}

func (p Planar) Name() string {
	return "planar"
}

func (p Planar) Distance(a Point, b Point) float64 {
	return planar.Distance(a.Orb(), b.Orb()) * KmPerDegree
}

func (p Planar) AxisDistance(q Point, axis Axis, value float64) float64 {
	return math.Abs(q.Coordinate(axis)-value) * KmPerDegree
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}
