package geometry

import (
	"geoq/common"
	"geoq/util"
	"math"
	"math/rand"
	"testing"
)

func TestPoint_NewPoint(t *testing.T) {
	// Act
	p, err := NewPoint(1.5, -103.25)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 1.5, p.Lat())
	util.AssertEqual(t, -103.25, p.Lon())
	_, hasElevation := p.Elevation()
	util.AssertFalse(t, hasElevation)
}

func TestPoint_NewPoint_extremeValues(t *testing.T) {
	for _, coordinate := range [][2]float64{{-90, -180}, {90, 180}, {0, 0}} {
		_, err := NewPoint(coordinate[0], coordinate[1])
		util.AssertNil(t, err)
	}
}

func TestPoint_NewPoint_invalid(t *testing.T) {
	invalidCoordinates := [][2]float64{
		{90.0001, 0},
		{-91, 0},
		{0, 180.5},
		{0, -181},
		{math.NaN(), 0},
		{0, math.Inf(1)},
	}

	for _, coordinate := range invalidCoordinates {
		// Act
		_, err := NewPoint(coordinate[0], coordinate[1])

		// Assert
		util.AssertNotNil(t, err)
		util.AssertTrue(t, common.IsValidationError(err))
	}
}

func TestPoint_NewPointWithElevation(t *testing.T) {
	// Act
	p, err := NewPointWithElevation(1, 2, 345)

	// Assert
	util.AssertNil(t, err)
	elevation, hasElevation := p.Elevation()
	util.AssertTrue(t, hasElevation)
	util.AssertEqual(t, 345.0, elevation)

	_, err = NewPointWithElevation(1, 2, math.NaN())
	util.AssertTrue(t, common.IsValidationError(err))
}

func TestPoint_DistanceTo(t *testing.T) {
	// Arrange
	a := MustNewPoint(0, 0)
	b := MustNewPoint(0, 1)

	// Act & Assert
	util.AssertApprox(t, 111.195, a.DistanceTo(b, GreatCircle{}), 0.001)
	util.AssertApprox(t, 111.195, a.DistanceTo(b, nil), 0.001)
	util.AssertApprox(t, 111.33, a.DistanceTo(b, Planar{}), 0.0000001)
}

func TestPoint_DistanceTo_symmetricAndZero(t *testing.T) {
	random := rand.New(rand.NewSource(42))

	for _, strategy := range []DistanceStrategy{GreatCircle{}, Planar{}} {
		for i := 0; i < 200; i++ {
			a := MustNewPoint(random.Float64()*180-90, random.Float64()*360-180)
			b := MustNewPoint(random.Float64()*180-90, random.Float64()*360-180)

			util.AssertEqual(t, strategy.Distance(a, b), strategy.Distance(b, a))
			util.AssertEqual(t, 0.0, strategy.Distance(a, a))
			util.AssertTrue(t, strategy.Distance(a, b) >= 0)
		}
	}
}

func TestPoint_DistanceTo_antimeridian(t *testing.T) {
	// Arrange
	a := MustNewPoint(0, 179.5)
	b := MustNewPoint(0, -179.5)

	// Act & Assert
	util.AssertApprox(t, 111.195, GreatCircle{}.Distance(a, b), 0.001)
}

func TestPoint_Orb(t *testing.T) {
	p := MustNewPoint(1, 2)

	util.AssertEqual(t, 2.0, p.Orb().Lon())
	util.AssertEqual(t, 1.0, p.Orb().Lat())

	converted, err := PointFromOrb(p.Orb())
	util.AssertNil(t, err)
	util.AssertTrue(t, p.Equal(converted))
}

func TestDistanceStrategyByName(t *testing.T) {
	strategy, err := DistanceStrategyByName("planar")
	util.AssertNil(t, err)
	util.AssertEqual(t, "planar", strategy.Name())

	strategy, err = DistanceStrategyByName("great-circle")
	util.AssertNil(t, err)
	util.AssertEqual(t, "great-circle", strategy.Name())

	_, err = DistanceStrategyByName("manhattan")
	util.AssertTrue(t, common.IsValidationError(err))
}

func TestDistanceStrategy_AxisDistanceIsLowerBound(t *testing.T) {
	random := rand.New(rand.NewSource(7))

	for _, strategy := range []DistanceStrategy{GreatCircle{}, Planar{}} {
		for i := 0; i < 2000; i++ {
			q := MustNewPoint(random.Float64()*170-85, random.Float64()*360-180)
			r := MustNewPoint(random.Float64()*170-85, random.Float64()*360-180)
			axis := AxisLat
			if i%2 == 1 {
				axis = AxisLon
			}

			// Any value between both coordinates separates them on that axis.
			value := q.Coordinate(axis) + random.Float64()*(r.Coordinate(axis)-q.Coordinate(axis))

			bound := strategy.AxisDistance(q, axis, value)
			distance := strategy.Distance(q, r)
			if bound > distance+1e-6 {
				t.Errorf("%s: lower bound %f on axis %s at %f is larger than distance %f between %s and %s", strategy.Name(), bound, axis.String(), value, distance, q.String(), r.String())
			}
		}
	}
}

func TestElevation_Distance3D(t *testing.T) {
	util.AssertApprox(t, 5.0, Distance3D(3, 0, 4000), 0.0000001)
	util.AssertEqual(t, Distance3D(3, 100, 4000), Distance3D(3, 4000, 100))
	util.AssertEqual(t, 0.0, Distance3D(0, 12, 12))
}

func TestElevation_strategies(t *testing.T) {
	// Arrange
	withElevation, _ := NewPointWithElevation(1, 1, 120)
	withoutElevation := MustNewPoint(1, 1)
	lookup := LookupElevation{Lookup: func(lat float64, lon float64) (float64, error) {
		return lat * 10, nil
	}}

	// Act & Assert
	e, err := FlatElevation{}.ElevationOf(withElevation)
	util.AssertNil(t, err)
	util.AssertEqual(t, 0.0, e)

	e, _ = PointElevation{}.ElevationOf(withElevation)
	util.AssertEqual(t, 120.0, e)
	e, _ = PointElevation{}.ElevationOf(withoutElevation)
	util.AssertEqual(t, 0.0, e)

	e, err = lookup.ElevationOf(MustNewPoint(3, 0))
	util.AssertNil(t, err)
	util.AssertEqual(t, 30.0, e)

	_, err = ElevationStrategyByName("terrain")
	util.AssertTrue(t, common.IsValidationError(err))
}

func TestRegion_Validate(t *testing.T) {
	// Arrange
	bound, err := NewBoundingBox(1.1, 103.5, 1.5, 104.1)
	util.AssertNil(t, err)
	region := NewRegion("singapore", bound)

	// Act & Assert
	util.AssertNil(t, region.Validate(MustNewPoint(1.3, 103.8)))

	err = region.Validate(MustNewPoint(2.3, 103.8))
	util.AssertTrue(t, common.IsValidationError(err))
	util.AssertErrorContains(t, "singapore latitude", err)

	err = region.ValidateAll(MustNewPoint(1.3, 103.8), MustNewPoint(1.3, 105))
	util.AssertErrorContains(t, "singapore longitude", err)

	util.AssertNil(t, World.Validate(MustNewPoint(-90, 180)))
}
