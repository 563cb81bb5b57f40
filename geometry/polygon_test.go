package geometry

import (
	"geoq/common"
	"geoq/util"
	"testing"
)

func square(t *testing.T) *Polygon {
	polygon, err := NewPolygon(
		MustNewPoint(0, 0),
		MustNewPoint(0, 2),
		MustNewPoint(2, 2),
		MustNewPoint(2, 0),
	)
	util.AssertNil(t, err)
	return polygon
}

func TestBoundingBox_NewBoundingBox(t *testing.T) {
	_, err := NewBoundingBox(1, 1, 2, 2)
	util.AssertNil(t, err)

	_, err = NewBoundingBox(1, 1, 1, 1)
	util.AssertNil(t, err)

	_, err = NewBoundingBox(3, 1, 2, 2)
	util.AssertTrue(t, common.IsValidationError(err))

	_, err = NewBoundingBox(1, 3, 2, 2)
	util.AssertTrue(t, common.IsValidationError(err))

	_, err = NewBoundingBox(1, 1, 95, 2)
	util.AssertTrue(t, common.IsValidationError(err))
}

func TestBoundingBox_ContainsAndIntersects(t *testing.T) {
	// Arrange
	box, _ := NewBoundingBox(0, 0, 1, 1)
	touching, _ := NewBoundingBox(1, 1, 2, 2)
	disjoint, _ := NewBoundingBox(1.5, 1.5, 2, 2)

	// Act & Assert
	util.AssertTrue(t, box.Contains(MustNewPoint(0.5, 0.5)))
	util.AssertTrue(t, box.Contains(MustNewPoint(1, 0)))
	util.AssertFalse(t, box.Contains(MustNewPoint(1.0001, 0)))

	util.AssertTrue(t, box.Intersects(touching))
	util.AssertTrue(t, touching.Intersects(box))
	util.AssertFalse(t, box.Intersects(disjoint))

	union := box.Union(disjoint)
	util.AssertEqual(t, 0.0, union.MinLat())
	util.AssertEqual(t, 2.0, union.MaxLon())
	util.AssertTrue(t, union.ContainsBound(box))
	util.AssertTrue(t, union.ContainsBound(disjoint))
	util.AssertFalse(t, box.ContainsBound(union))

	util.AssertTrue(t, MustNewPoint(0.5, 0.5).Equal(box.Center()))
}

func TestBoundOf(t *testing.T) {
	box := BoundOf(MustNewPoint(1, 5), MustNewPoint(-1, 7), MustNewPoint(0, 6))

	util.AssertEqual(t, -1.0, box.MinLat())
	util.AssertEqual(t, 5.0, box.MinLon())
	util.AssertEqual(t, 1.0, box.MaxLat())
	util.AssertEqual(t, 7.0, box.MaxLon())
}

func TestLine_NewLine(t *testing.T) {
	_, err := NewLine(MustNewPoint(0, 0))
	util.AssertTrue(t, common.IsValidationError(err))

	_, err = NewLine(MustNewPoint(0, 0), MustNewPoint(0, 0))
	util.AssertTrue(t, common.IsValidationError(err))

	line, err := NewLine(MustNewPoint(0, 0), MustNewPoint(0, 0), MustNewPoint(0, 1))
	util.AssertNil(t, err)
	util.AssertEqual(t, 3, line.Len())
}

func TestLine_ReverseAndLength(t *testing.T) {
	// Arrange
	line, err := NewLine(MustNewPoint(0, 0), MustNewPoint(0, 1), MustNewPoint(0, 2))
	util.AssertNil(t, err)

	// Act
	reversed := line.Reverse()

	// Assert
	util.AssertTrue(t, MustNewPoint(0, 2).Equal(reversed.Start()))
	util.AssertTrue(t, MustNewPoint(0, 0).Equal(reversed.End()))
	util.AssertTrue(t, MustNewPoint(0, 0).Equal(line.Start()))
	util.AssertTrue(t, line.Equal(reversed.Reverse()))
	util.AssertFalse(t, line.Equal(reversed))

	util.AssertApprox(t, 222.66, line.Length(Planar{}), 0.0000001)
	util.AssertApprox(t, line.Length(GreatCircle{}), reversed.Length(GreatCircle{}), 0.0000001)
	util.AssertLen(t, 3, line.Orb())
}

func TestLine_NearestAndDistanceTo(t *testing.T) {
	// Arrange
	line, err := NewLine(MustNewPoint(0, 0), MustNewPoint(0, 1), MustNewPoint(0, 2))
	util.AssertNil(t, err)
	q := MustNewPoint(1, 1.1)

	// Act
	nearest := line.Nearest(q, Planar{})
	distance := line.DistanceTo(q, Planar{})

	// Assert
	util.AssertTrue(t, MustNewPoint(0, 1).Equal(nearest))
	util.AssertApprox(t, q.DistanceTo(MustNewPoint(0, 1), Planar{}), distance, 0.0000001)
	util.AssertEqual(t, 0.0, line.DistanceTo(MustNewPoint(0, 2), GreatCircle{}))

	tie := MustNewPoint(0, 0.5)
	util.AssertTrue(t, MustNewPoint(0, 0).Equal(line.Nearest(tie, Planar{})))
}

func TestPolygon_NewPolygon_invalid(t *testing.T) {
	// too few points
	_, err := NewPolygon(MustNewPoint(0, 0), MustNewPoint(1, 1))
	util.AssertTrue(t, common.IsValidationError(err))

	// closed ring with too few points
	_, err = NewPolygon(MustNewPoint(0, 0), MustNewPoint(1, 1), MustNewPoint(0, 0))
	util.AssertTrue(t, common.IsValidationError(err))

	// collinear
	_, err = NewPolygon(MustNewPoint(0, 0), MustNewPoint(1, 1), MustNewPoint(2, 2))
	util.AssertTrue(t, common.IsValidationError(err))

	// bow tie
	_, err = NewPolygon(MustNewPoint(0, 0), MustNewPoint(2, 2), MustNewPoint(0, 2), MustNewPoint(2, 0))
	util.AssertTrue(t, common.IsValidationError(err))
	util.AssertErrorContains(t, "intersect", err)

	// spike folding back onto the previous edge
	_, err = NewPolygon(MustNewPoint(0, 0), MustNewPoint(0, 2), MustNewPoint(0, 1), MustNewPoint(2, 1))
	util.AssertTrue(t, common.IsValidationError(err))

	// repeated vertex
	_, err = NewPolygon(MustNewPoint(0, 0), MustNewPoint(0, 2), MustNewPoint(0, 2), MustNewPoint(2, 2))
	util.AssertTrue(t, common.IsValidationError(err))
}

func TestPolygon_NewPolygon_closedRing(t *testing.T) {
	// Act
	polygon, err := NewPolygon(
		MustNewPoint(0, 0),
		MustNewPoint(0, 2),
		MustNewPoint(2, 2),
		MustNewPoint(2, 0),
		MustNewPoint(0, 0),
	)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 4, polygon.Len())
	util.AssertTrue(t, polygon.Equal(square(t)))
	util.AssertLen(t, 5, polygon.Orb()[0])
}

func TestPolygon_Contains(t *testing.T) {
	// Arrange
	polygon := square(t)

	// Act & Assert
	util.AssertTrue(t, polygon.Contains(MustNewPoint(1, 1)))
	util.AssertTrue(t, polygon.Contains(MustNewPoint(0, 1)))
	util.AssertTrue(t, polygon.Contains(MustNewPoint(2, 1)))
	util.AssertTrue(t, polygon.Contains(MustNewPoint(1, 2)))
	util.AssertTrue(t, polygon.Contains(MustNewPoint(0, 0)))
	util.AssertTrue(t, polygon.Contains(MustNewPoint(2, 2)))
	util.AssertFalse(t, polygon.Contains(MustNewPoint(2.0000001, 1)))
	util.AssertFalse(t, polygon.Contains(MustNewPoint(-1, 1)))
	util.AssertFalse(t, polygon.Contains(MustNewPoint(50, 50)))
}

func TestPolygon_Contains_concave(t *testing.T) {
	// Arrange
	// U-shape opening to the north
	polygon, err := NewPolygon(
		MustNewPoint(0, 0),
		MustNewPoint(0, 3),
		MustNewPoint(3, 3),
		MustNewPoint(3, 2),
		MustNewPoint(1, 2),
		MustNewPoint(1, 1),
		MustNewPoint(3, 1),
		MustNewPoint(3, 0),
	)
	util.AssertNil(t, err)

	// Act & Assert
	util.AssertTrue(t, polygon.Contains(MustNewPoint(0.5, 1.5)))
	util.AssertTrue(t, polygon.Contains(MustNewPoint(2, 0.5)))
	util.AssertTrue(t, polygon.Contains(MustNewPoint(2, 1)))
	util.AssertFalse(t, polygon.Contains(MustNewPoint(2, 1.5)))
}

func TestPolygon_IntersectsBound(t *testing.T) {
	// Arrange
	polygon := square(t)
	inside, _ := NewBoundingBox(0.5, 0.5, 1.5, 1.5)
	surrounding, _ := NewBoundingBox(-1, -1, 3, 3)
	crossing, _ := NewBoundingBox(-1, 0.5, 3, 1.5)
	touching, _ := NewBoundingBox(2, 2, 3, 3)
	disjoint, _ := NewBoundingBox(2.5, 2.5, 3, 3)

	// Act & Assert
	util.AssertTrue(t, polygon.IntersectsBound(inside))
	util.AssertTrue(t, polygon.IntersectsBound(surrounding))
	util.AssertTrue(t, polygon.IntersectsBound(crossing))
	util.AssertTrue(t, polygon.IntersectsBound(touching))
	util.AssertFalse(t, polygon.IntersectsBound(disjoint))
}

func TestPolygon_IntersectsBound_triangleCorner(t *testing.T) {
	// Arrange
	triangle, err := NewPolygon(MustNewPoint(0, 0), MustNewPoint(0, 2), MustNewPoint(2, 0))
	util.AssertNil(t, err)
	// Inside the bounding box of the triangle but beyond its hypotenuse
	box, _ := NewBoundingBox(1.5, 1.5, 2, 2)

	// Act & Assert
	util.AssertFalse(t, triangle.IntersectsBound(box))
}

func TestPolygon_CentroidAndArea(t *testing.T) {
	// Arrange
	polygon := square(t)
	degreeSquare, err := NewPolygon(MustNewPoint(0, 0), MustNewPoint(0, 1), MustNewPoint(1, 1), MustNewPoint(1, 0))
	util.AssertNil(t, err)

	// Act
	centroid := polygon.Centroid()

	// Assert
	util.AssertApprox(t, 1.0, centroid.Lat(), 0.0000001)
	util.AssertApprox(t, 1.0, centroid.Lon(), 0.0000001)
	util.AssertApprox(t, 12380.0, degreeSquare.AreaKm2(), 50)
}

func TestPolygon_DistanceTo(t *testing.T) {
	// Arrange
	polygon := square(t)

	// Act & Assert
	util.AssertEqual(t, 0.0, polygon.DistanceTo(MustNewPoint(1, 1), Planar{}))
	util.AssertEqual(t, 0.0, polygon.DistanceTo(MustNewPoint(0, 1), Planar{}))
	util.AssertApprox(t, 111.33, polygon.DistanceTo(MustNewPoint(3, 2), Planar{}), 0.0000001)
}

func TestPolygon_PolygonFromOrb(t *testing.T) {
	// Act
	converted, err := PolygonFromOrb(square(t).Orb())

	// Assert
	util.AssertNil(t, err)
	util.AssertTrue(t, square(t).Equal(converted))
}
