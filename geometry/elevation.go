package geometry

import (
	"geoq/common"
	"github.com/pkg/errors"
	"math"
)

// ElevationStrategy determines the elevation in metres of a point. It is used when entities are indexed with three
// dimensions.
type ElevationStrategy interface {
	Name() string
	ElevationOf(p Point) (float64, error)
}

func ElevationStrategyByName(name string) (ElevationStrategy, error) {
	switch name {
	case FlatElevation{}.Name(), "":
		return FlatElevation{}, nil
	case PointElevation{}.Name():
		return PointElevation{}, nil
	}
	return nil, common.NewValidationError("elevation", name, "unknown elevation strategy '%s', expected 'flat' or 'point'", name)
}

// FlatElevation puts every point on sea level.
type FlatElevation struct{}

func (f FlatElevation) Name() string {
	return "flat"
}

func (f FlatElevation) ElevationOf(Point) (float64, error) {
	return 0, nil
}

// PointElevation uses the elevation stored in the point and sea level for points without one.
type PointElevation struct{}

func (e PointElevation) Name() string {
	return "point"
}

func (e PointElevation) ElevationOf(p Point) (float64, error) {
	if p.hasElevation {
		return p.elevation, nil
	}
	return 0, nil
}

// LookupElevation asks an external source, e.g. a terrain model, for the elevation.
type LookupElevation struct {
	Lookup func(lat float64, lon float64) (float64, error)
}

func (l LookupElevation) Name() string {
	return "lookup"
}

func (l LookupElevation) ElevationOf(p Point) (float64, error) {
	elevation, err := l.Lookup(p.lat, p.lon)
	if err != nil {
		return 0, errors.Wrapf(err, "Unable to look up elevation of point %s", p.String())
	}
	if !isFinite(elevation) {
		return 0, common.NewValidationError("elevation", elevation, "elevation lookup for %s returned %v", p.String(), elevation)
	}
	return elevation, nil
}

// Distance3D combines the surface distance in kilometres with the elevation difference given in metres.
func Distance3D(surfaceKm float64, elevationA float64, elevationB float64) float64 {
	deltaKm := (elevationA - elevationB) / 1000
	return math.Sqrt(surfaceKm*surfaceKm + deltaKm*deltaKm)
}
