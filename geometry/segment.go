package geometry

import "math"

const collinearEpsilon = 1e-12

// orientation returns 1 when the points a, b, c form a counter-clockwise turn, -1 for clockwise and 0 when they are
// collinear. Longitude is treated as x and latitude as y.
func orientation(a Point, b Point, c Point) int {
	cross := (b.lon-a.lon)*(c.lat-a.lat) - (b.lat-a.lat)*(c.lon-a.lon)
	if math.Abs(cross) <= collinearEpsilon {
		return 0
	}
	if cross > 0 {
		return 1
	}
	return -1
}

// onSegment checks whether p lies on the closed segment from a to b.
func onSegment(p Point, a Point, b Point) bool {
	if orientation(a, b, p) != 0 {
		return false
	}
	return p.lon >= math.Min(a.lon, b.lon) && p.lon <= math.Max(a.lon, b.lon) &&
		p.lat >= math.Min(a.lat, b.lat) && p.lat <= math.Max(a.lat, b.lat)
}

// segmentsIntersect checks whether the closed segments a1-a2 and b1-b2 share at least one point.
func segmentsIntersect(a1 Point, a2 Point, b1 Point, b2 Point) bool {
	o1 := orientation(a1, a2, b1)
	o2 := orientation(a1, a2, b2)
	o3 := orientation(b1, b2, a1)
	o4 := orientation(b1, b2, a2)

	if o1 != o2 && o3 != o4 {
		return true
	}

	return (o1 == 0 && onSegment(b1, a1, a2)) ||
		(o2 == 0 && onSegment(b2, a1, a2)) ||
		(o3 == 0 && onSegment(a1, b1, b2)) ||
		(o4 == 0 && onSegment(a2, b1, b2))
}
