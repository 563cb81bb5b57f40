package geometry

import (
	"geoq/common"
)

// Region restricts the coordinates accepted by an import to a certain area, e.g. a city or country.
type Region struct {
	Name  string
	Bound BoundingBox
}

var World = Region{
	Name:  "world",
	Bound: BoundingBox{minLat: MinLat, minLon: MinLon, maxLat: MaxLat, maxLon: MaxLon},
}

func NewRegion(name string, bound BoundingBox) Region {
	return Region{Name: name, Bound: bound}
}

// Validate returns a validation error when the point lies outside the region.
func (r Region) Validate(p Point) error {
	if p.lat < r.Bound.minLat || p.lat > r.Bound.maxLat {
		return common.OutOfBoundsError(r.Name+" latitude", p.lat, r.Bound.minLat, r.Bound.maxLat)
	}
	if p.lon < r.Bound.minLon || p.lon > r.Bound.maxLon {
		return common.OutOfBoundsError(r.Name+" longitude", p.lon, r.Bound.minLon, r.Bound.maxLon)
	}
	return nil
}

func (r Region) ValidateAll(points ...Point) error {
	for _, p := range points {
		err := r.Validate(p)
		if err != nil {
			return err
		}
	}
	return nil
}
