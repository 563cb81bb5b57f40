package geometry

import (
	"geoq/common"
	"github.com/paulmach/orb"
	"math"
)

// Line is an immutable polyline with at least two distinct points.
type Line struct {
	points []Point
	bound  BoundingBox
}

func NewLine(points ...Point) (*Line, error) {
	if len(points) < 2 {
		return nil, common.NewValidationError("points", len(points), "a line needs at least 2 points but got %d", len(points))
	}

	hasDistinctPoints := false
	for _, p := range points[1:] {
		if !p.SameLocation(points[0]) {
			hasDistinctPoints = true
			break
		}
	}
	if !hasDistinctPoints {
		return nil, common.NewValidationError("points", len(points), "a line needs at least 2 distinct points")
	}

	ownPoints := make([]Point, len(points))
	copy(ownPoints, points)

	return &Line{
		points: ownPoints,
		bound:  BoundOf(ownPoints...),
	}, nil
}

func (l *Line) Points() []Point {
	result := make([]Point, len(l.points))
	copy(result, l.points)
	return result
}

func (l *Line) Len() int {
	return len(l.points)
}

func (l *Line) Start() Point {
	return l.points[0]
}

func (l *Line) End() Point {
	return l.points[len(l.points)-1]
}

// Reverse returns a new line with the opposite direction. This line stays untouched.
func (l *Line) Reverse() *Line {
	reversed := make([]Point, len(l.points))
	for i, p := range l.points {
		reversed[len(l.points)-1-i] = p
	}
	return &Line{
		points: reversed,
		bound:  l.bound,
	}
}

// Length sums up the distances between consecutive points in kilometres.
func (l *Line) Length(strategy DistanceStrategy) float64 {
	length := 0.0
	for i := 1; i < len(l.points); i++ {
		length += l.points[i-1].DistanceTo(l.points[i], strategy)
	}
	return length
}

// Nearest returns the vertex of the line closest to the given point. Equal distances resolve to the earlier vertex.
func (l *Line) Nearest(point Point, strategy DistanceStrategy) Point {
	vertex, _ := nearestVertex(l.points, point, strategy)
	return vertex
}

// DistanceTo returns the distance to the nearest vertex of the line.
func (l *Line) DistanceTo(point Point, strategy DistanceStrategy) float64 {
	_, distance := nearestVertex(l.points, point, strategy)
	return distance
}

func nearestVertex(vertices []Point, point Point, strategy DistanceStrategy) (Point, float64) {
	nearest := vertices[0]
	minDistance := math.Inf(1)
	for _, vertex := range vertices {
		distance := point.DistanceTo(vertex, strategy)
		if distance < minDistance {
			nearest = vertex
			minDistance = distance
		}
	}
	return nearest, minDistance
}

func (l *Line) BoundingBox() BoundingBox {
	return l.bound
}

func (l *Line) Equal(other *Line) bool {
	if other == nil || len(l.points) != len(other.points) {
		return false
	}
	for i := range l.points {
		if !l.points[i].Equal(other.points[i]) {
			return false
		}
	}
	return true
}

func (l *Line) Orb() orb.LineString {
	lineString := make(orb.LineString, len(l.points))
	for i, p := range l.points {
		lineString[i] = p.Orb()
	}
	return lineString
}
